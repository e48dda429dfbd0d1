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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Status   StatusConfig   `yaml:"status" mapstructure:"status"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ScrapeConfig configures fetch politeness and run bounds.
type ScrapeConfig struct {
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	DelaySecs          int      `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxConnections     int      `yaml:"max_connections" mapstructure:"max_connections"`
	MaxItemsPerRun     int      `yaml:"max_items_per_run" mapstructure:"max_items_per_run"`
	UserAgent          string   `yaml:"user_agent" mapstructure:"user_agent"`
	Sources            []string `yaml:"sources" mapstructure:"sources"`
}

// RequestTimeout returns the per-fetch timeout as a duration.
func (c ScrapeConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// Delay returns the inter-request delay as a duration.
func (c ScrapeConfig) Delay() time.Duration {
	return time.Duration(c.DelaySecs) * time.Second
}

// ScheduleConfig configures the recurring scrape loop.
type ScheduleConfig struct {
	IntervalHours int `yaml:"interval_hours" mapstructure:"interval_hours"`
	BackoffHours  int `yaml:"backoff_hours" mapstructure:"backoff_hours"`
}

// Interval returns the inter-cycle sleep as a duration.
func (c ScheduleConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// Backoff returns the post-failure sleep as a duration.
func (c ScheduleConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffHours) * time.Hour
}

// StatusConfig configures the operator status server.
type StatusConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("HACKSEEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("scrape.request_timeout_secs", 30)
	v.SetDefault("scrape.delay_secs", 2)
	v.SetDefault("scrape.max_connections", 10)
	v.SetDefault("scrape.max_items_per_run", 50)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; HackSeekBot/1.0)")
	v.SetDefault("scrape.sources", []string{"devpost", "mlh", "unstop", "hackerearth"})
	v.SetDefault("schedule.interval_hours", 6)
	v.SetDefault("schedule.backoff_hours", 1)
	v.SetDefault("status.port", 8090)
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
