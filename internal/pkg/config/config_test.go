package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, LocationRedis, cfg.LocationSource)
	assert.Equal(t, 8, cfg.EventWorkers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "fleet", cfg.MQTT.TopicPrefix)
	assert.Equal(t, domain.DefaultFixPolicy(), cfg.FixPolicy())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                "production",
		"JWT_SECRET":         "s3cret",
		"STORE_DRIVER":       "mongo",
		"LOCATION_SOURCE":    "mqtt",
		"TIMEZONE":           "America/Mexico_City",
		"FIX_TARGET_M":       "4",
		"FIX_CEILING":        "40s",
		"FIX_ALLOW_DEGRADED": "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, LocationMQTT, cfg.LocationSource)
	policy := cfg.FixPolicy()
	assert.Equal(t, 4.0, policy.TargetAccuracyMeters)
	assert.Equal(t, 40*time.Second, policy.Ceiling)
	assert.False(t, policy.AllowDegraded)
}

func TestLoadFrom_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"unknown location source", map[string]string{"LOCATION_SOURCE": "gps"}},
		{"missing secret in production", map[string]string{"ENV": "production"}},
		{"unknown timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"target looser than immediate", map[string]string{"FIX_TARGET_M": "12"}},
		{"refinement beyond ceiling", map[string]string{"FIX_REFINEMENT_TIMEOUT": "30s"}},
		{"malformed duration", map[string]string{"FIX_CEILING": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}
