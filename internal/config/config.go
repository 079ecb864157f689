// Package config loads the store manager configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the server looks for its configuration file.
const DefaultPath = "config/store.yaml"

type Driver string

const (
	DriverFile  Driver = "file"
	DriverRedis Driver = "redis"
	DriverMySQL Driver = "mysql"
)

type StorageConfig struct {
	Driver    Driver `yaml:"driver"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redisAddr"`
	RedisKey  string `yaml:"redisKey"`
	MySQLDSN  string `yaml:"mysqlDSN"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full server configuration.
type Config struct {
	HTTPAddr        string        `yaml:"httpAddr"`
	GRPCAddr        string        `yaml:"grpcAddr"`
	Currency        string        `yaml:"currency"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	Log             LogConfig     `yaml:"log"`
	Storage         StorageConfig `yaml:"storage"`
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":50051",
		Currency:        "USD",
		ShutdownTimeout: 5 * time.Second,
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Driver:    DriverFile,
			Path:      "data.json",
			RedisAddr: "localhost:6379",
			RedisKey:  "store:snapshot",
			MySQLDSN:  "root:root@tcp(localhost:3306)/storemanager?parseTime=true",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadOrDefault behaves like Load but falls back to the defaults when path does
// not exist. The boolean reports whether the file was read.
func LoadOrDefault(path string) (Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, false, err
	}
	cfg, err = finish(Default())
	return cfg, false, err
}

func finish(cfg Config) (Config, error) {
	cfg.applyEnv()
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("STORE_HTTP_ADDR")); v != "" {
		c.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STORE_GRPC_ADDR")); v != "" {
		c.GRPCAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STORE_STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = Driver(v)
	}
	if v := strings.TrimSpace(os.Getenv("STORE_DATA_FILE")); v != "" {
		c.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("MYSQL_DSN")); v != "" {
		c.Storage.MySQLDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("STORE_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) normalise() {
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.GRPCAddr = strings.TrimSpace(c.GRPCAddr)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Storage.Driver = Driver(strings.ToLower(strings.TrimSpace(string(c.Storage.Driver))))
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = Default().ShutdownTimeout
	}
}

// Validate performs semantic validation on the configuration.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("httpAddr must not be empty")
	}
	if c.GRPCAddr == "" {
		return fmt.Errorf("grpcAddr must not be empty")
	}
	if c.Currency == "" {
		return fmt.Errorf("currency must not be empty")
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file driver")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("storage redisAddr is required for the redis driver")
		}
	case DriverMySQL:
		if strings.TrimSpace(c.Storage.MySQLDSN) == "" {
			return fmt.Errorf("storage mysqlDSN is required for the mysql driver")
		}
	default:
		return fmt.Errorf("storage driver must be one of file, redis, mysql, got %q", c.Storage.Driver)
	}
	return nil
}
