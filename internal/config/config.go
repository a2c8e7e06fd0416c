package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Proxy     ProxyConfig     `yaml:"proxy" mapstructure:"proxy"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Filter    FilterConfig    `yaml:"filter" mapstructure:"filter"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ProxyConfig points at a remote classification service.
type ProxyConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ApifyConfig holds Apify scraper settings.
type ApifyConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	ActorID string `yaml:"actor_id" mapstructure:"actor_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FilterConfig tunes the classification run.
type FilterConfig struct {
	Backend         string  `yaml:"backend" mapstructure:"backend"`
	BatchSize       int     `yaml:"batch_size" mapstructure:"batch_size"`
	RequestTimeout  int     `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	BatchIntervalMS int     `yaml:"batch_interval_ms" mapstructure:"batch_interval_ms"`
	RulesPath       string  `yaml:"rules_path" mapstructure:"rules_path"`
	MinConfidence   float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// ServerConfig configures the classification proxy server.
type ServerConfig struct {
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
	v.SetEnvPrefix("LEADFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadfilter.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("apify.base_url", "https://api.apify.com")
	v.SetDefault("apify.actor_id", "compass~crawler-google-places")
	v.SetDefault("filter.backend", "anthropic")
	v.SetDefault("filter.batch_size", 8)
	v.SetDefault("filter.request_timeout_secs", 30)
	v.SetDefault("filter.batch_interval_ms", 500)
	v.SetDefault("filter.min_confidence", 0.7)

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
