package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Generation GenerationConfig `mapstructure:"generation"`
	Mediation  MediationConfig  `mapstructure:"mediation"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Lock       LockConfig       `mapstructure:"lock"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type GenerationConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type MediationConfig struct {
	VariantCount      int    `mapstructure:"variant_count"`
	PromptsFile       string `mapstructure:"prompts_file"`
	IssueCodeAttempts int    `mapstructure:"issue_code_attempts"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LockConfig struct {
	Backend      string        `mapstructure:"backend"`
	RedisURL     string        `mapstructure:"redis_url"`
	TTL          time.Duration `mapstructure:"ttl"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		case configFile != "" && isMissingFile(err):
			logging.Warn(logCtx, "config file missing, fallback to defaults and env", slog.String("path", configFile))
		default:
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("generation_model", cfg.Generation.Model),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("lock_backend", cfg.Lock.Backend),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Mediation.VariantCount <= 0 {
		return errors.New("mediation.variant_count must be positive")
	}
	if c.Mediation.IssueCodeAttempts <= 0 {
		return errors.New("mediation.issue_code_attempts must be positive")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "none", "sqlite":
	case "redis":
		if strings.TrimSpace(c.Cache.RedisURL) == "" {
			return errors.New("cache.redis_url is required for redis cache")
		}
	default:
		return errors.New("cache.backend must be one of none, sqlite, redis")
	}
	switch strings.ToLower(c.Lock.Backend) {
	case "local":
	case "redis":
		if strings.TrimSpace(c.Lock.RedisURL) == "" {
			return errors.New("lock.redis_url is required for redis lock")
		}
	default:
		return errors.New("lock.backend must be one of local, redis")
	}
	return nil
}

// Default returns the configuration used when no file or env overrides are present.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gentletalk")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".gentletalk/state/talk.sqlite")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.temperature", 0.3)
	v.SetDefault("generation.timeout", 60*time.Second)
	v.SetDefault("mediation.variant_count", 4)
	v.SetDefault("mediation.prompts_file", "")
	v.SetDefault("mediation.issue_code_attempts", 10)
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.redis_url", "")
	v.SetDefault("lock.ttl", 2*time.Minute)
	v.SetDefault("lock.poll_interval", 200*time.Millisecond)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
