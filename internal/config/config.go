package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	pkglogger "github.com/citysafe/inspection-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Overdue   OverdueConfig   `yaml:"overdue"`
	WorkOrder WorkOrderConfig `yaml:"workorder"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql (default) or postgres
	SSLMode         string `yaml:"sslmode"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN MySQL DSN; parseTime is required for DATE/DATETIME scanning
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// GetPostgresDSN PostgreSQL DSN in URL form, sessions pinned to UTC
func (d DatabaseConfig) GetPostgresDSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&TimeZone=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName, sslmode)
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
	RefreshIn int    `yaml:"refresh_in"` // seconds
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"` // comma separated
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// OverdueConfig controls the background overdue sweep.
// MidnightCron runs an extra sweep right after the date changes; empty disables it.
type OverdueConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MidnightCron  string        `yaml:"midnight_cron"`
	Timezone      string        `yaml:"timezone"`
}

type WorkOrderConfig struct {
	NumberPrefix string `yaml:"number_prefix"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000, Mode: "debug", Env: "local"},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "127.0.0.1",
			Port:            3306,
			User:            "root",
			DBName:          "inspection",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 3600,
		},
		Redis:     RedisConfig{Host: "127.0.0.1", Port: 6379, PoolSize: 20},
		JWT:       JWTConfig{ExpiresIn: 86400, RefreshIn: 7 * 86400},
		RateLimit: RateLimitConfig{RequestsPerMinute: 120},
		Overdue:   OverdueConfig{SweepInterval: 5 * time.Minute, MidnightCron: "0 0 * * *", Timezone: "Asia/Shanghai"},
		WorkOrder: WorkOrderConfig{NumberPrefix: "WO"},
	}
}

// Load reads the YAML file at path over the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		pkglogger.Warn("config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setInt(&cfg.Server.Port, "PORT")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&cfg.Overdue.Timezone, "TZ_LOCATION")

	if v := os.Getenv("OVERDUE_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Overdue.SweepInterval = d
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Overdue.SweepInterval < 0 {
		return errors.New("overdue.sweep_interval must not be negative")
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.WorkOrder.NumberPrefix == "" {
		c.WorkOrder.NumberPrefix = "WO"
	}
	return nil
}

// Location timezone used for calendar dates (today, deadlines, order numbers)
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Overdue.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid overdue.timezone %q: %w", c.Overdue.Timezone, err)
	}
	return loc, nil
}

// IsDevelopment reports whether the server runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// LogResolved logs the effective configuration without secrets
func LogResolved(cfg *Config) {
	pkglogger.Info("config: env=%s port=%d mode=%s", cfg.Server.Env, cfg.Server.Port, cfg.Server.Mode)
	pkglogger.Info("config: db=%s %s@%s:%d/%s redis=%s:%d/%d",
		cfg.Database.Driver, cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName,
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
	pkglogger.Info("config: overdue sweep every %s in %s, number prefix %s",
		cfg.Overdue.SweepInterval, cfg.Overdue.Timezone, cfg.WorkOrder.NumberPrefix)
}
