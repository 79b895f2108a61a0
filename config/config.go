// Package config loads server configuration from environment variables and
// an optional .env file. All keys have development-safe defaults; set the
// DISPATCH_ prefix to override (e.g. DISPATCH_PORT=9000).
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the server's runtime configuration.
type Config struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
}

// Load reads configuration: defaults, then .env (if present), then
// environment variables, later sources winning.
func Load() *Config {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("dbPath", "dispatch.db")
	v.SetDefault("allowedOrigins", []string{"http://localhost:5173", "http://localhost:8080"})

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config: loading .env: %v", err)
		}
	}

	v.SetEnvPrefix("DISPATCH")
	v.AutomaticEnv()
	_ = v.BindEnv("port")
	_ = v.BindEnv("dbPath", "DISPATCH_DB_PATH")
	_ = v.BindEnv("allowedOrigins", "DISPATCH_ALLOWED_ORIGINS")

	return &Config{
		Port:           v.GetInt("port"),
		DBPath:         v.GetString("dbPath"),
		AllowedOrigins: v.GetStringSlice("allowedOrigins"),
	}
}
