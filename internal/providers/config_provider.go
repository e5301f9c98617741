package providers

import (
	"fmt"
	"path/filepath"
	"reactledger/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "ReactionLedger"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("persistence.clearOnRebuild", true)
	v.SetDefault("discord.requestsPerSecond", 5)
	v.SetDefault("discord.burst", 5)
	v.SetDefault("discord.maxRetries", 3)
	v.SetDefault("discord.retryBackoff", 500*time.Millisecond)
	v.SetDefault("cache.ttl", 30*time.Second)

	_ = v.BindEnv("logger.level", "RXL_LOG_LEVEL")
	_ = v.BindEnv("persistence.filePath", "RXL_PERSISTENCE_FILE")
	_ = v.BindEnv("discord.token", "RXL_DISCORD_TOKEN")
	_ = v.BindEnv("discord.guildId", "RXL_GUILD_ID")
	_ = v.BindEnv("cache.enabled", "RXL_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "RXL_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
