package structures

import "time"

type Server struct {
	Host string `yaml:"host" mapstructure:"host" validate:"required"`
	Port int    `yaml:"port" mapstructure:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath       string `yaml:"filePath" mapstructure:"filePath" validate:"required|unixPath"`
	Compress       bool   `yaml:"compress" mapstructure:"compress"`
	ClearOnRebuild bool   `yaml:"clearOnRebuild" mapstructure:"clearOnRebuild"`
}

type LoggerConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" mapstructure:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" mapstructure:"dir" validate:"required|unixPath"`
}

// DiscordConfig configures the REST client used to scan guild history.
// Token may be empty for query-only runs; a rebuild then fails fast.
type DiscordConfig struct {
	Token             string        `yaml:"token" mapstructure:"token"`
	GuildID           string        `yaml:"guildId" mapstructure:"guildId"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond" mapstructure:"requestsPerSecond"`
	Burst             int           `yaml:"burst" mapstructure:"burst" validate:"uint"`
	MaxRetries        int           `yaml:"maxRetries" mapstructure:"maxRetries" validate:"uint"`
	RetryBackoff      time.Duration `yaml:"retryBackoff" mapstructure:"retryBackoff"`
}

type RebuildConfig struct {
	// Schedule is a standard five-field cron expression. Empty disables
	// scheduled rebuilds.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Size    int           `yaml:"size" mapstructure:"size"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server        `yaml:"webServer" mapstructure:"webServer"`
	Persistence Persistence   `yaml:"persistence" mapstructure:"persistence"`
	Logger      LoggerConfig  `yaml:"logger" mapstructure:"logger"`
	Discord     DiscordConfig `yaml:"discord" mapstructure:"discord"`
	Rebuild     RebuildConfig `yaml:"rebuild" mapstructure:"rebuild"`
	Cache       CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}
