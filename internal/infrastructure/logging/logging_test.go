package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "engine.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path}

	// Act
	logger, closer, err := New(cfg)
	require.NoError(t, err)
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "job-1").Msg("cutting job completed")
	require.NoError(t, closer.Close())

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job_id":"job-1"`)
	assert.Contains(t, string(data), `"service":"garmentflow"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}
