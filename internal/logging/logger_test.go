package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"bakery/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bakery.log")
	t.Setenv("LOG_FILE", path)

	log, err := logging.NewLogger("bakery", "test", "info")
	require.NoError(t, err)
	log.Info("hello")
	log.Debug("hidden")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"service":"bakery"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestNewLogger_BadLevel(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	_, err := logging.NewLogger("bakery", "test", "loud")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))
}
