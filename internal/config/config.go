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
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the process configuration. Values come from, in increasing
// precedence: defaults, an optional erp.yaml, a .env file, and the environment.
type Config struct {
	Environment    string
	ServerPort     string
	AllowedOrigins string
	RequestTimeout time.Duration

	StoreDriver string
	DatabaseURL string

	RedisAddr string
	LockTTL   time.Duration
	LockWait  time.Duration

	LogLevel  string
	LogFormat string

	SeedDemo bool
}

// Load reads the configuration. A missing .env or erp.yaml is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetConfigName("erp")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/erp")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names kept for compatibility with existing deployments.
	_ = v.BindEnv("server.port", "SERVER_PORT", "APP_PORT")
	_ = v.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	_ = v.BindEnv("server.request_timeout", "REQUEST_TIMEOUT")

	v.SetDefault("app.env", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("lock.ttl", "10s")
	v.SetDefault("lock.wait", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("seed.demo", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Environment:    v.GetString("app.env"),
		ServerPort:     v.GetString("server.port"),
		AllowedOrigins: v.GetString("server.allowed_origins"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		DatabaseURL:    v.GetString("database.url"),
		RedisAddr:      v.GetString("redis.addr"),
		LockTTL:        v.GetDuration("lock.ttl"),
		LockWait:       v.GetDuration("lock.wait"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
		SeedDemo:       v.GetBool("seed.demo"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory or postgres)", c.StoreDriver)
	}
	if c.ServerPort == "" {
		return errors.New("SERVER_PORT cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
