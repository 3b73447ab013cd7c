package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
}

// AuthConfig holds the token signing settings. The key is read once at
// startup and never reloaded.
type AuthConfig struct {
	TokenKey           string        `env:"TOKEN_KEY, required"`
	TokenIssuer        string        `env:"TOKEN_ISSUER"`
	TokenTTL           time.Duration `env:"TOKEN_TTL, default=24h"`
	MaskUnknownAccount bool          `env:"AUTH_MASK_UNKNOWN_ACCOUNT, default=false"`
	BcryptCost         int           `env:"BCRYPT_COST, default=10"`
	// RateLimit is the sustained login/register rate per client IP, in
	// requests per second. Zero disables throttling.
	RateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`
	RateBurst int     `env:"AUTH_RATE_BURST, default=10"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=financial_organizer"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,       default=0"`
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL, default=10m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
	Buffer  int `env:"AUDIT_BUFFER,  default=256"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
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
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Auth.RateLimit < 0 {
		return errors.New("AUTH_RATE_LIMIT must not be negative")
	}
	return nil
}
