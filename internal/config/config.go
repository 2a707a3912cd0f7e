package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// devOrigin is the frontend dev server allowed outside production.
const devOrigin = "http://localhost:5173"

// ErrMissingJWTSecret is returned when JWT_SECRET is unset. Serving with an
// insecure default is never an option, so callers treat this as fatal.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not defined in environment variables")

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Driver string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type CORSConfig struct {
	FrontendURL string
}

type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	Window   time.Duration
	AuthMax  int
	APIMax   int
}

type SecurityConfig struct {
	BcryptCost int
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// AllowedOrigin is the single cross-origin caller permitted for the current environment.
func (c *Config) AllowedOrigin() string {
	if c.IsProduction() {
		return c.CORS.FrontendURL
	}
	return devOrigin
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	// aliases kept for deployments using the older variable names
	_ = v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	_ = v.BindEnv("SERVER_ENVIRONMENT", "SERVER_ENVIRONMENT", "NODE_ENV")
	_ = v.BindEnv("MONGODB_URI", "MONGODB_URI", "MONGO_URI")

	v.SetDefault("SERVER_PORT", "3001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGODB_DATABASE", "todo")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	v.SetDefault("RATE_LIMIT_AUTH_MAX", 5)
	v.SetDefault("RATE_LIMIT_API_MAX", 100)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Postgres: PostgresConfig{
			DSN: v.GetString("POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("JWT_SECRET"),
			TokenTTL: time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
		},
		CORS: CORSConfig{
			FrontendURL: v.GetString("FRONTEND_URL"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_MINUTES")) * time.Minute,
			AuthMax:  v.GetInt("RATE_LIMIT_AUTH_MAX"),
			APIMax:   v.GetInt("RATE_LIMIT_API_MAX"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL_MINUTES must be positive")
	}
	switch c.Store.Driver {
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", StoreMongo)
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.IsProduction() && c.CORS.FrontendURL == "" {
		return fmt.Errorf("FRONTEND_URL is required in production")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Window <= 0 || c.RateLimit.AuthMax <= 0 || c.RateLimit.APIMax <= 0) {
		return fmt.Errorf("rate limit window and maxima must be positive")
	}
	return nil
}
