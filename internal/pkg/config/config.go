package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=5000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	APIPrefix string `env:"API_PREFIX, default=/api"`

	// CORSOrigins is a comma separated allow-list; "*" allows any origin.
	CORSOrigins     []string      `env:"CORS_ORIGINS, default=*"`
	StaticDir       string        `env:"STATIC_DIR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	MovementWorkers int           `env:"MOVEMENT_WORKERS, default=4"`

	Auth    AuthConfig
	Uploads UploadConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"JWT_EXPIRES_IN, default=168h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
	// RateLimit is the sustained number of register/login requests per second
	// allowed from one client IP.
	RateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`
	RateBurst int     `env:"AUTH_RATE_BURST, default=10"`
}

type UploadConfig struct {
	Dir      string `env:"UPLOAD_DIR,       default=uploads"`
	MaxBytes int64  `env:"MAX_UPLOAD_BYTES, default=5242880"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sweetshop"`
}

type RedisConfig struct {
	// Addr empty disables token revocation.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsProduction reports whether ENV is set to production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /, got %q", c.APIPrefix)
	}
	c.APIPrefix = strings.TrimRight(c.APIPrefix, "/")
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
