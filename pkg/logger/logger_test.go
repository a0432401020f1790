package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONFields(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "dispatchd", Env: "test"})
	l := Component("dispatch")
	l.Debug().Str("emergency_id", "e1").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "dispatchd", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "dispatch", line["component"])
	assert.Equal(t, "e1", line["emergency_id"])
	assert.Contains(t, line, "time")
	assert.Contains(t, line, "caller")
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "warn", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	l := Get()
	l.Info().Msg("filtered")
	l.Warn().Msg("kept")

	assert.Contains(t, first.String(), "kept")
	assert.NotContains(t, first.String(), "filtered")
	assert.Empty(t, second.String())
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	assert.Panics(t, func() { Get() })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" info ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
		"disabled": zerolog.InfoLevel,
		"fatal":    zerolog.FatalLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}
