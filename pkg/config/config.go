package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	AdminPort int    `mapstructure:"admin_port"`
	GatePort  int    `mapstructure:"gate_port"`
}

type EngineConfig struct {
	// Store selects the counter backend: "memory" (default) or "redis".
	Store         string        `mapstructure:"store"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	DefaultWindow time.Duration `mapstructure:"default_window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	AnalyticsTopN int           `mapstructure:"analytics_top_n"`
	// DisableDefaultRules skips the built-in baseline policies.
	DisableDefaultRules bool                     `mapstructure:"disable_default_rules"`
	Rules               []map[string]interface{} `mapstructure:"rules"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var globalConfig Config

func Load(configPath string) error {
	err := loadConfigFile(configPath, "config", &globalConfig)

	// Defaults apply with or without a config file, so a missing file still
	// yields a runnable configuration.
	setDefaultValues()

	if err != nil {
		return fmt.Errorf("could not load config file: %w", err)
	}
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.AdminPort == 0 {
		globalConfig.Server.AdminPort = 8080
	}
	if globalConfig.Server.GatePort == 0 {
		globalConfig.Server.GatePort = 8081
	}
	if globalConfig.Engine.Store == "" {
		globalConfig.Engine.Store = "memory"
	}
	if globalConfig.Engine.DefaultLimit == 0 {
		globalConfig.Engine.DefaultLimit = 100
	}
	if globalConfig.Engine.DefaultWindow == 0 {
		globalConfig.Engine.DefaultWindow = time.Minute
	}
	if globalConfig.Engine.SweepInterval == 0 {
		globalConfig.Engine.SweepInterval = 5 * time.Minute
	}
	if globalConfig.Metrics.Port == 0 {
		globalConfig.Metrics.Port = 9090
	}
}

func GetConfig() *Config {
	return &globalConfig
}
