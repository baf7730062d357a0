package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvim-tools/nvrpc/pkg/log"
)

func TestLevelFiltering(t *testing.T) {

	var buf bytes.Buffer
	logger := log.New(log.Config{
		Level:  log.LevelWarn,
		Writer: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestDebugLevelPassesEverything(t *testing.T) {

	var buf bytes.Buffer
	logger := log.New(log.Config{
		Level:  log.LevelDebug,
		Writer: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")

	out := buf.String()
	assert.Contains(t, out, "debug message")
	assert.Contains(t, out, "info message")
}
