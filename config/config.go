package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const CONFIG_FILE_PATH = "./config.yaml"

type Config struct {
	Port            int
	BackendURL      string
	BackendTimeout  time.Duration
	QueryStaleAfter time.Duration
	ShutdownTimeout time.Duration

	Store       string
	AutoMigrate bool
	SeedData    bool

	Redis RedisConfig
	DB    DBConfig
	Auth  AuthConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// URL returns the pgx connection string.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

type AuthConfig struct {
	SessionSecret string
	AdminUsername string
	AdminPassword string
	UserUsername  string
	UserPassword  string
}

// Load reads .env (if any), config.yaml (if any) and the environment.
// Environment variables win over the config file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(CONFIG_FILE_PATH); err == nil {
		v.SetConfigFile(CONFIG_FILE_PATH)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file "+CONFIG_FILE_PATH)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("backend_url", "")
	v.SetDefault("backend_timeout", "10s")
	v.SetDefault("query_stale_after", "30s")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("store", StoreRedis)
	v.SetDefault("auto_migrate", false)
	v.SetDefault("seed_data", true)
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "menuitems")
	v.SetDefault("session_secret", "")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "admin")
	v.SetDefault("user_username", "")
	v.SetDefault("user_password", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetInt("port"),
		BackendURL:      strings.TrimRight(v.GetString("backend_url"), "/"),
		BackendTimeout:  v.GetDuration("backend_timeout"),
		QueryStaleAfter: v.GetDuration("query_stale_after"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		Store:           strings.ToLower(v.GetString("store")),
		AutoMigrate:     v.GetBool("auto_migrate"),
		SeedData:        v.GetBool("seed_data"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		DB: DBConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Database: v.GetString("db_name"),
		},
		Auth: AuthConfig{
			SessionSecret: v.GetString("session_secret"),
			AdminUsername: v.GetString("admin_username"),
			AdminPassword: v.GetString("admin_password"),
			UserUsername:  v.GetString("user_username"),
			UserPassword:  v.GetString("user_password"),
		},
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	switch c.Store {
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return errors.Errorf("unknown store %q (want redis, postgres or memory)", c.Store)
	}
	if c.BackendTimeout <= 0 {
		return errors.New("backend timeout must be positive")
	}
	if c.QueryStaleAfter < 0 {
		return errors.New("query stale-after must not be negative")
	}
	return nil
}
