package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset" mapstructure:"dataset"`
	Matcher    MatcherConfig    `yaml:"matcher" mapstructure:"matcher"`
	Trade      TradeConfig      `yaml:"trade" mapstructure:"trade"`
	HighDemand HighDemandConfig `yaml:"high_demand" mapstructure:"high_demand"`
	Bot        BotConfig        `yaml:"bot" mapstructure:"bot"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the value sheet.
type DatasetConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Format      string `yaml:"format" mapstructure:"format"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns TimeoutSecs as a duration.
func (d DatasetConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSecs) * time.Second
}

// MatcherConfig configures fuzzy name matching.
type MatcherConfig struct {
	Threshold int `yaml:"threshold" mapstructure:"threshold"`
}

// TradeConfig sets the FAIR band in percent of the target's value.
type TradeConfig struct {
	FairLow  float64 `yaml:"fair_low" mapstructure:"fair_low"`
	FairHigh float64 `yaml:"fair_high" mapstructure:"fair_high"`
}

// HighDemandConfig sets the highdemand command defaults.
type HighDemandConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Limit     int     `yaml:"limit" mapstructure:"limit"`
}

// BotConfig configures the chat command shell.
type BotConfig struct {
	Token         string `yaml:"token" mapstructure:"token"`
	Prefix        string `yaml:"prefix" mapstructure:"prefix"`
	RatePerMinute int    `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxMessageLen int    `yaml:"max_message_len" mapstructure:"max_message_len"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VALUEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by earlier deployments of the bot.
	if err := v.BindEnv("bot.token", "VALUEBOT_BOT_TOKEN", "DISCORD_TOKEN"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}
	if err := v.BindEnv("dataset.url", "VALUEBOT_DATASET_URL", "SHEET_URL"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("dataset.format", "csv")
	v.SetDefault("dataset.timeout_secs", 15)
	v.SetDefault("dataset.user_agent", "value-bot/1.0")
	v.SetDefault("matcher.threshold", 70)
	v.SetDefault("trade.fair_low", 85.0)
	v.SetDefault("trade.fair_high", 115.0)
	v.SetDefault("high_demand.threshold", 7.0)
	v.SetDefault("high_demand.limit", 20)
	v.SetDefault("bot.prefix", "f!")
	v.SetDefault("bot.rate_per_minute", 0)
	v.SetDefault("bot.max_message_len", 1900)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "lookup" for the
// one-shot and chat commands, or "serve" for the HTTP server.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "lookup", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if strings.TrimSpace(c.Dataset.URL) == "" {
		errs = append(errs, "dataset.url is required")
	}
	switch c.Dataset.Format {
	case "csv", "xlsx", "json":
	default:
		errs = append(errs, "dataset.format must be one of csv, xlsx, json")
	}
	if c.Dataset.TimeoutSecs <= 0 {
		errs = append(errs, "dataset.timeout_secs must be > 0")
	}
	if c.Matcher.Threshold < 1 || c.Matcher.Threshold > 100 {
		errs = append(errs, "matcher.threshold must be between 1 and 100")
	}
	if c.Trade.FairLow < 0 || c.Trade.FairLow > c.Trade.FairHigh {
		errs = append(errs, "trade.fair_low must be >= 0 and <= trade.fair_high")
	}
	if c.HighDemand.Limit <= 0 {
		errs = append(errs, "high_demand.limit must be > 0")
	}
	if c.Bot.Prefix == "" {
		errs = append(errs, "bot.prefix is required")
	}
	if c.Bot.RatePerMinute < 0 {
		errs = append(errs, "bot.rate_per_minute must be >= 0")
	}

	if mode == "serve" && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
