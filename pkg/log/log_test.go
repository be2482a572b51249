package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    LogLevel
		wantErr bool
	}{
		{name: "error", level: "error", want: LogLevelError},
		{name: "warn", level: "warn", want: LogLevelWarn},
		{name: "info", level: "info", want: LogLevelInfo},
		{name: "debug", level: "debug", want: LogLevelDebug},
		{name: "trace", level: "trace", want: LogLevelTrace},
		{name: "unknown", level: "loud", want: LogLevelError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_levels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LogLevelInfo)

	logger.Debug("hidden %d", 1)
	logger.Info("shown %d", 2)
	logger.Error("also shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "shown 2", entry["message"])
	assert.Contains(t, entry, "time")

	buf.Reset()
	logger.SetLevel(LogLevelTrace)
	logger.Trace("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LogLevelDebug).With("round", 3)

	logger.Debug("tick")

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 3, entry["round"])
	assert.Equal(t, LogLevelDebug, logger.Level())
}
