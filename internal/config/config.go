// Package config reads runtime settings from the environment, loading a .env
// file first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	StorageDriver string
	StorageDir    string
	SQLitePath    string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	TasksKey string
	ThemeKey string

	ServerPort      string
	RateLimit       int
	RateWindow      time.Duration
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		StorageDriver:    getenv("STORAGE_DRIVER", DriverSQLite),
		StorageDir:       getenv("STORAGE_DIR", "data"),
		SQLitePath:       getenv("SQLITE_PATH", "tasklist.db"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:      getenv("REDIS_PREFIX", "tasklist:"),
		TasksKey:         getenv("TASKS_STORAGE_KEY", "@tasks"),
		ThemeKey:         getenv("THEME_STORAGE_KEY", "@theme"),
		ServerPort:       getenv("SERVER_PORT", "8080"),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
	}
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.RateWindow, err = getDuration("RATE_WINDOW", time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the chosen driver cannot run with.
func (c *Config) Validate() error {
	var missing []string
	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.StorageDir == "" {
			missing = append(missing, "STORAGE_DIR")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case DriverPostgres:
		required := map[string]string{
			"POSTGRES_USER":     c.PostgresUser,
			"POSTGRES_PASSWORD": c.PostgresPassword,
			"POSTGRES_DB":       c.PostgresDB,
			"POSTGRES_HOST":     c.PostgresHost,
			"POSTGRES_PORT":     c.PostgresPort,
		}
		for _, name := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT"} {
			if required[name] == "" {
				missing = append(missing, name)
			}
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("environment variables must be set: %s", strings.Join(missing, ", "))
	}
	if c.TasksKey == "" || c.ThemeKey == "" {
		return errors.New("storage keys must not be empty")
	}
	if c.TasksKey == c.ThemeKey {
		return fmt.Errorf("TASKS_STORAGE_KEY and THEME_STORAGE_KEY must differ, both are %q", c.TasksKey)
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("RATE_LIMIT and RATE_WINDOW must be positive")
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)
}

func getenv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func getInt(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}

func getDuration(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", name, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
