package logging

import (
	"os"
	"path/filepath"
	"testing"

	"ecotrace/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := New(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)

	logger.Info("activity logged")
	logger.Debug("dropped below level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "activity logged")
	assert.NotContains(t, string(data), "dropped below level")
}
