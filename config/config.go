package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Game struct {
		AutoResetSeconds int
		MaxRetries       int
	}
	Sweep struct {
		IntervalMinutes int
		MaxIdleMinutes  int
	}
}

var C Config

func Load() {
	viper.SetConfigFile("config/config.yaml")

	viper.SetDefault("game.autoresetseconds", 5)
	viper.SetDefault("game.maxretries", 5)
	viper.SetDefault("sweep.intervalminutes", 10)
	viper.SetDefault("sweep.maxidleminutes", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}
}
