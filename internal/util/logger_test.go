package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { App = zerolog.Nop() })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "warn"))

	App.Info().Msg("dropped")
	App.Warn().Str("key", "rabbitmq.bogus").Msg("unknown configuration")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "unknown configuration")
	assert.Contains(t, out, "key=rabbitmq.bogus")
}

func TestInitWriter_EmptyLevelIsInfo(t *testing.T) {
	t.Cleanup(func() { App = zerolog.Nop() })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, ""))
	App.Debug().Msg("hidden")
	App.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitWriter_BadLevel(t *testing.T) {
	err := InitWriter(&bytes.Buffer{}, "loud")
	assert.ErrorContains(t, err, `log level "loud"`)
}
