package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/volari/license-quoter/internal/validator"
)

// Storage backends understood by database.Open
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	AWS      AWSConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Currency CurrencyConfig
	Events   EventsConfig
	Logging  LoggingConfig
}

// AWSConfig holds AWS-specific configuration
type AWSConfig struct {
	Region string
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	Backend        string
	KeyPrefix      string
	RedisURL       string
	RedisSecretID  string // Secrets Manager id holding the redis URL
	DynamoTable    string
	DynamoEndpoint string // For local testing
}

// CatalogConfig points at an optional YAML catalog; empty means built-in
type CatalogConfig struct {
	Path string
}

// CurrencyConfig holds the currency context used when nothing is persisted yet
type CurrencyConfig struct {
	Mode         string
	ExchangeRate float64
}

// EventsConfig holds the optional SQS queue that receives saved-quote events
type EventsConfig struct {
	QueueURL string
	Endpoint string // For local testing
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	rate, err := parseFloat(k.String("QUOTER_EXCHANGE_RATE"), 5.0)
	if err != nil {
		return nil, fmt.Errorf("QUOTER_EXCHANGE_RATE: %w", err)
	}

	cfg := &Config{
		AWS: AWSConfig{
			Region: valueOrDefault(k.String("AWS_REGION"), "us-east-1"),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(valueOrDefault(k.String("QUOTER_STORAGE"), BackendMemory)),
			KeyPrefix:      k.String("QUOTER_KEY_PREFIX"),
			RedisURL:       k.String("REDIS_URL"),
			RedisSecretID:  strings.TrimSpace(k.String("REDIS_SECRET_ID")),
			DynamoTable:    valueOrDefault(k.String("DYNAMODB_TABLE"), "quoter_kv"),
			DynamoEndpoint: k.String("DYNAMODB_ENDPOINT"), // Empty for AWS, set for local
		},
		Catalog: CatalogConfig{
			Path: strings.TrimSpace(k.String("QUOTER_CATALOG")),
		},
		Currency: CurrencyConfig{
			Mode:         strings.ToUpper(valueOrDefault(k.String("QUOTER_CURRENCY"), "USD")),
			ExchangeRate: rate,
		},
		Events: EventsConfig{
			QueueURL: strings.TrimSpace(k.String("QUOTER_EVENTS_QUEUE_URL")),
			Endpoint: k.String("SQS_ENDPOINT"),
		},
		Logging: LoggingConfig{
			Level:  valueOrDefault(k.String("LOG_LEVEL"), "INFO"),
			Format: valueOrDefault(k.String("LOG_FORMAT"), "console"),
		},
	}

	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Storage.RedisURL == "" && cfg.Storage.RedisSecretID == "" {
			return nil, fmt.Errorf("REDIS_URL or REDIS_SECRET_ID is required for the redis backend")
		}
	case BackendDynamoDB:
		if cfg.Storage.DynamoTable == "" {
			return nil, fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	default:
		return nil, fmt.Errorf("QUOTER_STORAGE %q is not supported", cfg.Storage.Backend)
	}

	if !validator.IsSupportedCurrency(cfg.Currency.Mode) {
		return nil, fmt.Errorf("QUOTER_CURRENCY %q is not supported, use one of %v", cfg.Currency.Mode, validator.GetSupportedCurrencies())
	}

	if cfg.Currency.ExchangeRate <= 0 {
		return nil, fmt.Errorf("QUOTER_EXCHANGE_RATE must be greater than 0")
	}

	return cfg, nil
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(values map[string]string) (*Config, error) {
	original := make(map[string]string, len(values))
	for key := range values {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, values[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseFloat(value string, fallback float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
