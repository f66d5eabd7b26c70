// Package config loads navscope configuration from a YAML file, NAVSCOPE_*
// environment variables and built-in defaults, in that order of precedence
// (environment wins over file).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. NAVSCOPE_LOG_LEVEL.
const EnvPrefix = "NAVSCOPE"

// Config represents the complete navscope configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	App    AppConfig    `mapstructure:"app"`
	Trace  TraceConfig  `mapstructure:"trace"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig controls structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir receives navscope.log when set; otherwise logs go to stderr
	Dir string `mapstructure:"dir"`
}

// AppConfig controls the navigation harness
type AppConfig struct {
	// StartLink is mounted when the app starts ("" mounts nothing)
	StartLink string `mapstructure:"start_link"`
	// HistoryLimit bounds the back stack (at least 1)
	HistoryLimit int `mapstructure:"history_limit"`
}

// TraceConfig controls navigation tracing
type TraceConfig struct {
	// MaxNavigations is how many finished navigations are kept in memory (at least 1)
	MaxNavigations int `mapstructure:"max_navigations"`
	// OTLPEndpoint enables OTLP/HTTP export when set (host:port)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// ServiceName is reported as service.name
	ServiceName string `mapstructure:"service_name"`
}

// ServerConfig controls the HTTP driver
type ServerConfig struct {
	// Port for the driver server (0 picks a free port)
	Port int `mapstructure:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			StartLink:    "4091 Home",
			HistoryLimit: 32,
		},
		Trace: TraceConfig{
			MaxNavigations: 50,
			ServiceName:    "navscope",
		},
		Server: ServerConfig{
			Port: 9876,
		},
	}
}

// setDefaults registers default values with v
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("app.start_link", d.App.StartLink)
	v.SetDefault("app.history_limit", d.App.HistoryLimit)
	v.SetDefault("trace.max_navigations", d.Trace.MaxNavigations)
	v.SetDefault("trace.otlp_endpoint", d.Trace.OTLPEndpoint)
	v.SetDefault("trace.service_name", d.Trace.ServiceName)
	v.SetDefault("server.port", d.Server.Port)
}

// Load reads configuration. When path is empty, navscope.yaml is looked up in
// the working directory and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("navscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
