package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Int64("order_id", 42).Msg("confirmation sent")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output), "logger output should be valid JSON")

	assert.Equal(t, "confirmation sent", output["message"])
	assert.Equal(t, float64(42), output["order_id"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, ServiceName, output["service"])
	assert.Contains(t, output, "time")
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info().Msg("should not appear")
	assert.Empty(t, buf.String())

	log.Error().Msg("error msg")
	assert.NotEmpty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		" WARN ":  zerolog.WarnLevel,
		"invalid": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_PrettyMode(t *testing.T) {
	// Pretty mode writes to stdout; just ensure it doesn't panic.
	log := New("info", true)
	log.Info().Msg("pretty mode test")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("debug", &buf), "webhook")

	log.Debug().Msg("ignoring event")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "webhook", output["component"])
	assert.Equal(t, ServiceName, output["service"])
}
