// Package config provides configuration management for the wallet roaster service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/wallet-roaster/internal/types"
)

// DefaultPublicEndpoints is the built-in ordered Solana RPC pool.
var DefaultPublicEndpoints = []string{
	"https://api.mainnet-beta.solana.com",
	"https://rpc.ankr.com/solana",
	"https://solana-api.projectserum.com",
	"https://solana-mainnet.rpc.extrnode.com",
}

// SPLTokenProgramID is the program owning classic SPL token accounts.
const SPLTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Solana    SolanaConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SolanaConfig holds RPC pool and fetch policy configuration
type SolanaConfig struct {
	// PreferredEndpoint is tried before the public pool when set
	PreferredEndpoint string
	PublicEndpoints   []string
	RetryBudget       int
	RetryDelay        time.Duration
	AttemptTimeout    time.Duration
	SignatureLimit    int
	DustThreshold     decimal.Decimal
	WhaleThreshold    decimal.Decimal
	TokenProgramID    string
}

// StoreConfig holds leaderboard blob store configuration
type StoreConfig struct {
	Backend      types.StoreBackend
	Redis        RedisConfig
	Postgres     PostgresConfig
	BucketKey    string
	WinnerKey    string
	RetainedCap  int
	VisibleCap   int
	AtomicSubmit bool
	MaxCASTries  int
	Breaker      BreakerConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL            string
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
	MigrationsPath string
}

// URL returns the postgres:// connection URL used by the migrator
func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Database)
}

// BreakerConfig configures the circuit breaker in front of the blob store
type BreakerConfig struct {
	MaxFailures int
	Timeout     time.Duration
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	dust, err := getEnvAsDecimal("SOLANA_DUST_THRESHOLD", decimal.RequireFromString("0.1"))
	if err != nil {
		return nil, err
	}
	whale, err := getEnvAsDecimal("SOLANA_WHALE_THRESHOLD", decimal.NewFromInt(100))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Solana: SolanaConfig{
			PreferredEndpoint: getEnv("SOLANA_RPC_URL", ""),
			PublicEndpoints:   getEnvAsList("SOLANA_PUBLIC_RPCS", DefaultPublicEndpoints),
			RetryBudget:       getEnvAsInt("SOLANA_RETRY_BUDGET", 2),
			RetryDelay:        getEnvAsDuration("SOLANA_RETRY_DELAY", time.Second),
			AttemptTimeout:    getEnvAsDuration("SOLANA_ATTEMPT_TIMEOUT", 10*time.Second),
			SignatureLimit:    getEnvAsInt("SOLANA_SIGNATURE_LIMIT", 1000),
			DustThreshold:     dust,
			WhaleThreshold:    whale,
			TokenProgramID:    getEnv("SOLANA_TOKEN_PROGRAM_ID", SPLTokenProgramID),
		},
		Store: StoreConfig{
			Backend: types.ParseStoreBackend(getEnv("STORE_BACKEND", "redis")),
			Redis: RedisConfig{
				URL:            getEnv("REDIS_URL", ""),
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "wallet_roaster"),
				User:           getEnv("POSTGRES_USER", "roaster"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
				MigrationsPath: getEnv("POSTGRES_MIGRATIONS_PATH", "migrations/postgres"),
			},
			BucketKey:    getEnv("LEADERBOARD_BUCKET_KEY", "roast:leaderboard"),
			WinnerKey:    getEnv("LEADERBOARD_WINNER_KEY", "roast:last_winner"),
			RetainedCap:  getEnvAsInt("LEADERBOARD_RETAINED_CAP", 50),
			VisibleCap:   getEnvAsInt("LEADERBOARD_VISIBLE_CAP", 10),
			AtomicSubmit: getEnvAsBool("LEADERBOARD_ATOMIC_SUBMIT", false),
			MaxCASTries:  getEnvAsInt("LEADERBOARD_CAS_TRIES", 5),
			Breaker: BreakerConfig{
				MaxFailures: getEnvAsInt("STORE_BREAKER_MAX_FAILURES", 5),
				Timeout:     getEnvAsDuration("STORE_BREAKER_TIMEOUT", 30*time.Second),
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks invariants the fetch and leaderboard policies depend on
func (c *Config) Validate() error {
	if c.Solana.PreferredEndpoint == "" && len(c.Solana.PublicEndpoints) == 0 {
		return fmt.Errorf("at least one Solana RPC endpoint is required")
	}
	if c.Solana.RetryBudget < 0 {
		return fmt.Errorf("SOLANA_RETRY_BUDGET must be >= 0, got %d", c.Solana.RetryBudget)
	}
	if c.Solana.SignatureLimit <= 0 || c.Solana.SignatureLimit > 1000 {
		return fmt.Errorf("SOLANA_SIGNATURE_LIMIT must be in 1..1000, got %d", c.Solana.SignatureLimit)
	}
	if !c.Solana.DustThreshold.LessThan(c.Solana.WhaleThreshold) {
		return fmt.Errorf("dust threshold %s must be below whale threshold %s",
			c.Solana.DustThreshold, c.Solana.WhaleThreshold)
	}
	if c.Store.VisibleCap <= 0 || c.Store.RetainedCap < c.Store.VisibleCap {
		return fmt.Errorf("leaderboard caps invalid: retained=%d visible=%d", c.Store.RetainedCap, c.Store.VisibleCap)
	}
	return nil
}

// Endpoints returns the ordered endpoint list: preferred first, then the public pool
func (c SolanaConfig) Endpoints() []string {
	endpoints := make([]string, 0, len(c.PublicEndpoints)+1)
	if c.PreferredEndpoint != "" {
		endpoints = append(endpoints, c.PreferredEndpoint)
	}
	return append(endpoints, c.PublicEndpoints...)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvAsDecimal parses a decimal amount; a malformed value is a hard error
// because thresholds drive user-visible classification.
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, valueStr, err)
	}
	return value, nil
}
