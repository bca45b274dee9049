package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitWithWriterLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitWithWriter("warn", "json", &buf)

	log := Get()
	log.Info().Msg("hidden")
	log.Warn().Str("key", "142_NYC").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"key":"142_NYC"`)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitWithWriter("verbose", "console", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log := Get()
	log.Info().Msg("summary")
	assert.Contains(t, buf.String(), "summary")
}
