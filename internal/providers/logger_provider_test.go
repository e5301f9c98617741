package providers

import (
	"os"
	"path/filepath"
	"reactledger/internal/structures"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggerConfig(dir, level string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: level,
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestGetLogTypeByRequestType(t *testing.T) {
	assert.Equal(t, TypePost, GetLogTypeByRequestType("POST"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("GET"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("DELETE"))
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "scan", TypeScan.String())
	assert.Equal(t, "app", TypeEnum(99).String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir, "info"))
	require.NoError(t, err)

	logger.Infof(TypeApp, "test message %d", 1)
	logger.Warnf(TypeScan, "channel %s skipped", "general")
	logger.Debugf(TypeQuery, "hidden at info level")
	logger.Close()

	for _, name := range []string{"app", "get", "post", "scan", "query"} {
		_, err := os.Stat(filepath.Join(dir, name+".log"))
		assert.NoError(t, err, name)
	}

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "test message 1")

	scan, err := os.ReadFile(filepath.Join(dir, "scan.log"))
	require.NoError(t, err)
	assert.Contains(t, string(scan), "channel general skipped")
	assert.Contains(t, string(scan), `"level":"warn"`)

	query, err := os.ReadFile(filepath.Join(dir, "query.log"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(query), "hidden"))
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	_, err := NewLogProvider(loggerConfig("/nonexistent/directory/path", "info"))
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	_, err := NewLogProvider(loggerConfig(t.TempDir(), "verbose"))
	assert.Error(t, err)
}
