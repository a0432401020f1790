package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Location source drivers.
const (
	LocationRedis = "redis"
	LocationMQTT  = "mqtt"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	// Timezone is the zone the "today" board window is computed in.
	Timezone string `env:"TIMEZONE,   default=UTC"`

	StoreDriver    string `env:"STORE_DRIVER,    default=memory"`
	LocationSource string `env:"LOCATION_SOURCE, default=redis"`
	EventWorkers   int    `env:"EVENT_WORKERS,   default=8"`

	Mongo MongoConfig
	Redis RedisConfig
	MQTT  MQTTConfig
	Fix   FixConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=dispatch_core"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type MQTTConfig struct {
	Broker      string `env:"MQTT_BROKER,       default=tcp://localhost:1883"`
	ClientID    string `env:"MQTT_CLIENT_ID,    default=dispatchd"`
	TopicPrefix string `env:"MQTT_TOPIC_PREFIX, default=fleet"`
	Username    string `env:"MQTT_USERNAME"`
	Password    string `env:"MQTT_PASSWORD"`
}

// FixConfig mirrors domain.FixPolicy. Defaults are the canonical policy.
type FixConfig struct {
	ImmediateAcceptMeters float64       `env:"FIX_IMMEDIATE_ACCEPT_M, default=8"`
	TargetMeters          float64       `env:"FIX_TARGET_M,           default=5"`
	MaxSamples            int           `env:"FIX_MAX_SAMPLES,        default=6"`
	RefinementTimeout     time.Duration `env:"FIX_REFINEMENT_TIMEOUT, default=20s"`
	Ceiling               time.Duration `env:"FIX_CEILING,            default=25s"`
	TopK                  int           `env:"FIX_TOP_K,              default=3"`
	AllowDegraded         bool          `env:"FIX_ALLOW_DEGRADED,     default=true"`
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.LocationSource {
	case LocationRedis, LocationMQTT:
	default:
		return fmt.Errorf("config: unknown LOCATION_SOURCE %q", c.LocationSource)
	}
	if c.JWTSecret == "" && c.Env != "development" {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.FixPolicy().Validate(); err != nil {
		return fmt.Errorf("config: fix policy: %w", err)
	}
	return nil
}

// FixPolicy builds the refinement policy.
func (c *Config) FixPolicy() domain.FixPolicy {
	return domain.FixPolicy{
		ImmediateAcceptAccuracyMeters: c.Fix.ImmediateAcceptMeters,
		TargetAccuracyMeters:          c.Fix.TargetMeters,
		MaxSamples:                    c.Fix.MaxSamples,
		RefinementTimeout:             c.Fix.RefinementTimeout,
		Ceiling:                       c.Fix.Ceiling,
		TopKForAveraging:              c.Fix.TopK,
		AllowDegraded:                 c.Fix.AllowDegraded,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
