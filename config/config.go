package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type DatabaseConfig struct {
	Driver        string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite3"`
	Path          string `yaml:"path" env:"DB_PATH" env-default:"./taskdo.db?_foreign_keys=on"`
	MigrationsDir string `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"./database/migrations"`
}

type CacheConfig struct {
	// Type is "memory" or "redis"
	Type          string        `yaml:"type" env:"CACHE_TYPE" env-default:"memory"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

type AuthConfig struct {
	SecretKey      string        `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	BcryptCost     int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

// Load reads the YAML file at path when given, then applies environment
// overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if err := read(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database section, so schema commands run
// without auth settings.
func LoadDatabase(path string) (DatabaseConfig, error) {
	var cfg struct {
		Database DatabaseConfig `yaml:"database"`
	}
	if err := read(path, &cfg); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

func read(path string, dst interface{}) error {
	if path != "" {
		if err := cleanenv.ReadConfig(path, dst); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	if err := cleanenv.ReadEnv(dst); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("CACHE_TYPE must be memory or redis, got %q", c.Cache.Type)
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	return nil
}
