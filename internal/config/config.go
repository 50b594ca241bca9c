// Package config loads service settings from .env, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds everything cmd/api needs to wire the service.
type Config struct {
	Port            string
	ShutdownTimeout time.Duration

	StoreDriver     string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SeedCatalog     bool

	JWTSecret string

	KafkaBrokers []string

	// AuditInterval enables the periodic cart total audit when > 0.
	AuditInterval time.Duration

	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string

	CORSOrigin string
	StaticDir  string
}

// Load reads the optional .env file, then the process environment.
// Environment variables always win over .env values.
func Load() (Config, error) {
	// 0. --- .env is optional ---
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("STORE_DRIVER", DriverMySQL)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("SEED_CATALOG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/app-logs.log")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("AUDIT_INTERVAL", "0s")
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:            v.GetString("PORT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		DSN:             v.GetString("DB_DSN_PRIMARY"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		SeedCatalog:     v.GetBool("SEED_CATALOG"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		KafkaBrokers:    splitCSV(v.GetString("KAFKA_BROKERS")),
		AuditInterval:   v.GetDuration("AUDIT_INTERVAL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		LogOutput:       v.GetString("LOG_OUTPUT"),
		LogFile:         v.GetString("LOG_FILE"),
		CORSOrigin:      v.GetString("CORS_ORIGIN"),
		StaticDir:       v.GetString("STATIC_DIR"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case DriverMySQL:
		if c.DSN == "" {
			return errors.New("DB_DSN_PRIMARY is required for the mysql store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
