package config

import (
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Rate limit backends
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	MaxInFlight    int
	AllowedOrigins []string
}

// IsProduction reports whether the server runs with production settings
func (s ServerConfig) IsProduction() bool { return s.Env == "production" }

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	SSLMode       string
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Backend         string
	Window          time.Duration
	Max             int
	KeyPrefix       string
	CleanupInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_MAX_IN_FLIGHT", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitMemory)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_KEY_PREFIX", "rate_limit")
	v.SetDefault("RATE_LIMIT_CLEANUP_INTERVAL", "1m")
}

// Loader reads configuration from .env, the process environment and
// .env.local overrides, and can watch the file for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader reading <dir>/.env
func NewLoader(dir string) *Loader {
	// .env.local only adds to the process environment, it never overrides
	// variables that are already set.
	if err := godotenv.Load(dir + "/.env.local"); err == nil {
		log.Printf("Loaded local overrides from %s/.env.local", dir)
	}

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Loader{v: v}
}

// Config builds a Config from the current values
func (l *Loader) Config() *Config {
	v := l.v
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			MaxInFlight:    v.GetInt("SERVER_MAX_IN_FLIGHT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Database:      v.GetString("DB_DATABASE"),
			Schema:        v.GetString("DB_SCHEMA"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Backend:         strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
			Window:          v.GetDuration("RATE_LIMIT_WINDOW"),
			Max:             v.GetInt("RATE_LIMIT_MAX"),
			KeyPrefix:       v.GetString("RATE_LIMIT_KEY_PREFIX"),
			CleanupInterval: v.GetDuration("RATE_LIMIT_CLEANUP_INTERVAL"),
		},
	}
}

// Watch calls onChange with the reloaded configuration every time the config
// file is written. It is a no-op when no config file was found.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.Config())
	})
	l.v.WatchConfig()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
