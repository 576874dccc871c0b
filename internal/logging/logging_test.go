package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Out: &buf, Level: "info", JSON: true})

	logger.Debug().Msg("hidden")
	logger.Warn().Str("table", "sale").Msg("table does not exist")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "sale", entry["table"])
	assert.Equal(t, "table does not exist", entry["message"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Out: &buf, Level: "debug"})

	logger.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
