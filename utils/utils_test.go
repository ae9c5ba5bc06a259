package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "registry", "debug")
	require.NoError(t, err)
	logger.Info("started")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "registry.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
	assert.Contains(t, string(data), "\"logger\":\"registry\"")
}

func TestNewLoggerRejectsLevel(t *testing.T) {
	_, err := NewLogger("", "registry", "loud")
	assert.Error(t, err)
}
