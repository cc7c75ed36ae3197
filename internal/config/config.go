package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config bundles the runtime settings for the server. Everything is
// overridable through environment variables; a config file is optional.
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	DB     DatabaseConfig `mapstructure:"database"`
	AI     AIConfig       `mapstructure:"ai"`
	JWT    JWTConfig      `mapstructure:"jwt"`
	Render RenderConfig   `mapstructure:"render"`
	Chat   ChatConfig     `mapstructure:"chat"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// RenderConfig points at the HTML-to-PDF side service. An empty URL disables
// PDF rendering and reports degrade to their HTML form.
type RenderConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	HistoryWindow int `mapstructure:"history_window"`
}

// Load reads an optional config.yaml from the given path and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("jwt.expire_time", 72*time.Hour)
	v.SetDefault("render.timeout", 20*time.Second)
	v.SetDefault("chat.history_window", 6)

	v.SetEnvPrefix("HEALTH_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("ai.api_key", "OPENAI_API_KEY")
	v.BindEnv("ai.model", "OPENAI_MODEL")
	v.BindEnv("ai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("render.url", "PDF_RENDER_URL")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: env vars and defaults carry the config.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return &cfg, nil
}
