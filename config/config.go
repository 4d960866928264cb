package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Breaker BreakerConfig
	Cache   CacheConfig
	Auth    AuthConfig
	Logging LoggingConfig

	LiveUpdatesEnabled bool
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigin   string
}

type StoreConfig struct {
	Driver                string
	MongoURI              string
	MongoDBName           string
	TasksCollection       string
	UsersCollection       string
	DepartmentsCollection string
	PostgresDSN           string
	QueryTimeout          time.Duration
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

type CacheConfig struct {
	Enabled       bool
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type AuthConfig struct {
	Enabled      bool
	AccessSecret string
}

type LoggingConfig struct {
	File       string
	Level      string
	Stdout     bool
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8005",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigin:   "*",
		},
		Store: StoreConfig{
			Driver:                DriverMongo,
			MongoURI:              "mongodb://localhost:27017",
			MongoDBName:           "maintenance_db",
			TasksCollection:       "tasks",
			UsersCollection:       "users",
			DepartmentsCollection: "departments",
			QueryTimeout:          10 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxFailures: 3,
			OpenTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendRedis,
			RedisAddr: "localhost:6379",
			TTL:       time.Minute,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			File:       "logs/statistics.log",
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		LiveUpdatesEnabled: true,
	}
}

// LoadConfig reads .env when present, applies environment overrides on top of
// DefaultConfig and validates the result.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := DefaultConfig()
	if err := loadFromEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func loadFromEnv(c *Config) error {
	var err error
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if err != nil {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", key, convErr)
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if err != nil {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", key, convErr)
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if err != nil {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			d, convErr := time.ParseDuration(v)
			if convErr != nil {
				err = fmt.Errorf("%s: %w", key, convErr)
				return
			}
			*dst = d
		}
	}

	setString("SERVER_PORT", &c.Server.Port)
	setDuration("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	setDuration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	setString("CORS_ORIGIN", &c.Server.CORSOrigin)

	setString("STORE_DRIVER", &c.Store.Driver)
	setString("MONGO_URI", &c.Store.MongoURI)
	setString("MONGO_DB_NAME", &c.Store.MongoDBName)
	setString("MONGO_TASKS_COLLECTION", &c.Store.TasksCollection)
	setString("MONGO_USERS_COLLECTION", &c.Store.UsersCollection)
	setString("MONGO_DEPARTMENTS_COLLECTION", &c.Store.DepartmentsCollection)
	setString("POSTGRES_DSN", &c.Store.PostgresDSN)
	setDuration("QUERY_TIMEOUT", &c.Store.QueryTimeout)

	maxFailures := int(c.Breaker.MaxFailures)
	setInt("BREAKER_MAX_FAILURES", &maxFailures)
	setDuration("BREAKER_OPEN_TIMEOUT", &c.Breaker.OpenTimeout)

	setBool("CACHE_ENABLED", &c.Cache.Enabled)
	setString("CACHE_BACKEND", &c.Cache.Backend)
	setString("REDIS_ADDR", &c.Cache.RedisAddr)
	setString("REDIS_PASSWORD", &c.Cache.RedisPassword)
	setInt("REDIS_DB", &c.Cache.RedisDB)
	setDuration("CACHE_TTL", &c.Cache.TTL)

	setBool("AUTH_ENABLED", &c.Auth.Enabled)
	setString("JWT_ACCESS_SECRET", &c.Auth.AccessSecret)

	setString("LOG_FILE", &c.Logging.File)
	setString("LOG_LEVEL", &c.Logging.Level)
	setBool("LOG_STDOUT", &c.Logging.Stdout)
	setInt("LOG_MAX_SIZE", &c.Logging.MaxSize)
	setInt("LOG_MAX_BACKUPS", &c.Logging.MaxBackups)
	setInt("LOG_MAX_AGE", &c.Logging.MaxAge)

	setBool("LIVE_UPDATES_ENABLED", &c.LiveUpdatesEnabled)

	if err != nil {
		return fmt.Errorf("invalid environment value: %w", err)
	}
	if maxFailures < 0 {
		return fmt.Errorf("invalid environment value: BREAKER_MAX_FAILURES must not be negative")
	}
	c.Breaker.MaxFailures = uint32(maxFailures)
	return nil
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDBName == "" {
			return fmt.Errorf("mongo store requires MONGO_URI and MONGO_DB_NAME")
		}
		if c.Store.TasksCollection == "" || c.Store.UsersCollection == "" || c.Store.DepartmentsCollection == "" {
			return fmt.Errorf("mongo collection names cannot be empty")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("postgres store requires POSTGRES_DSN")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if c.Store.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}

	if c.Breaker.OpenTimeout <= 0 {
		return fmt.Errorf("breaker open timeout must be positive")
	}

	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case CacheBackendRedis:
			if c.Cache.RedisAddr == "" {
				return fmt.Errorf("redis cache requires REDIS_ADDR")
			}
		case CacheBackendMemory:
		default:
			return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
	}

	if c.Auth.Enabled && c.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required when auth is enabled")
	}

	if c.Logging.MaxSize <= 0 {
		return fmt.Errorf("log max size must be positive")
	}
	return nil
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return ":" + c.Server.Port
}
