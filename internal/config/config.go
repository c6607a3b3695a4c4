package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Database struct {
		Driver   string `mapstructure:"driver"` // "sqlite" or "postgres"
		Path     string `mapstructure:"path"`   // sqlite file
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Player struct {
		DefaultFadeType  string `mapstructure:"default_fade_type"`
		BackgroundColour string `mapstructure:"background_colour"`
		PresetsPath      string `mapstructure:"presets_path"`
	} `mapstructure:"player"`
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"auth"`
}

func Load() *Config {
	viper.SetEnvPrefix("STUDIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.log_level")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.path")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("player.default_fade_type")
	viper.BindEnv("player.background_colour")
	viper.BindEnv("player.presets_path")

	viper.BindEnv("auth.jwt_secret")
	viper.BindEnv("auth.admin_password")

	// Defaults
	viper.SetDefault("server.port", ":8081")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.log_level", "error")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./scene-studio.db")
	viper.SetDefault("database.port", "5432")

	viper.SetDefault("player.default_fade_type", "crossfade")
	viper.SetDefault("player.background_colour", "#000000")
	viper.SetDefault("player.presets_path", "./presets.yaml")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Println("⚠️ No STUDIO_AUTH_JWT_SECRET set, using an insecure development secret")
		cfg.Auth.JWTSecret = "dev-secret-scene-studio-change-me"
	}

	return &cfg
}
