package providers

import (
	"os"
	"path/filepath"
	"reactledger/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			FilePath: "/tmp/reaction_data.json",
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	assert.NoError(t, NewCnfValidator(validConfig()).Validate())
}

func TestConfigValidator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *structures.Config)
	}{
		{"empty host", func(c *structures.Config) { c.WebServer.Host = "" }},
		{"zero port", func(c *structures.Config) { c.WebServer.Port = 0 }},
		{"empty log level", func(c *structures.Config) { c.Logger.Level = "" }},
		{"unknown log level", func(c *structures.Config) { c.Logger.Level = "verbose" }},
		{"empty snapshot path", func(c *structures.Config) { c.Persistence.FilePath = "" }},
		{"negative rate", func(c *structures.Config) { c.Discord.RequestsPerSecond = -1 }},
		{"bad schedule", func(c *structures.Config) { c.Rebuild.Schedule = "every tuesday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, NewCnfValidator(c).Validate())
		})
	}
}

func TestConfigValidator_AcceptsSchedule(t *testing.T) {
	c := validConfig()
	c.Rebuild.Schedule = "0 4 * * *"
	assert.NoError(t, NewCnfValidator(c).Validate())
}

const testConfigYAML = `
webServer:
  host: 127.0.0.1
  port: 8090
persistence:
  filePath: /tmp/reaction_data.json
  compress: true
logger:
  level: debug
  mode: 0644
  dir: /tmp
discord:
  token: file-token
  guildId: "1234"
  requestsPerSecond: 2
rebuild:
  schedule: "30 3 * * *"
cache:
  enabled: true
  size: 8
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_ReadsFileWithDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, path, conf.Path)
	assert.True(t, conf.Debug)
	assert.Equal(t, 8090, conf.WebServer.Port)
	assert.Equal(t, "/tmp/reaction_data.json", conf.Persistence.FilePath)
	assert.True(t, conf.Persistence.Compress)
	assert.True(t, conf.Persistence.ClearOnRebuild)
	assert.Equal(t, "1234", conf.Discord.GuildID)
	assert.Equal(t, 2.0, conf.Discord.RequestsPerSecond)
	assert.Equal(t, 3, conf.Discord.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, conf.Discord.RetryBackoff)
	assert.Equal(t, "30 3 * * *", conf.Rebuild.Schedule)
	assert.Equal(t, 30*time.Second, conf.Cache.TTL)
}

func TestNewConfigProvider_EnvOverrides(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	t.Setenv("RXL_DISCORD_TOKEN", "env-token")
	t.Setenv("RXL_LOG_LEVEL", "warn")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "env-token", conf.Discord.Token)
	assert.Equal(t, "warn", conf.Logger.Level)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "nope.yml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "webServer:\n  host: ''\n  port: 0\n")
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}
