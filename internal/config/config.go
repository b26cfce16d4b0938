package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Table backends
const (
	TableBackendDynamoDB = "dynamodb"
	TableBackendSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Stage       string
	AWS         AWSConfig
	Table       TableConfig
	Storage     StorageConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

// AWSConfig holds settings shared by every AWS client
type AWSConfig struct {
	Region string
}

// TableConfig holds key-value table configuration
type TableConfig struct {
	Backend          string // "dynamodb" or "sqlite"
	Name             string
	IndexName        string
	DynamoDBEndpoint string
	SQLitePath       string
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Type                string // "s3", "minio" or "mock"
	Bucket              string
	SignedURLExpiration time.Duration
	AttachmentBaseURL   string
	S3Endpoint          string
	S3UsePathStyle      bool
	MinIO               MinIOConfig
}

// MinIOConfig holds S3-compatible endpoint configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// RateLimitConfig holds per-process rate limiting for the local server
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// maxSignedURLExpiration is the longest lifetime S3 accepts for a SigV4 presigned URL
const maxSignedURLExpiration = 7 * 24 * time.Hour

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("STAGE", "dev")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("TABLE_BACKEND", TableBackendDynamoDB)
	viper.SetDefault("TODO_TABLE", "Todos")
	viper.SetDefault("INDEX_NAME", "UserIdIndex")
	viper.SetDefault("SQLITE_PATH", "./data/todos.db")
	viper.SetDefault("STORAGE_TYPE", "s3")
	viper.SetDefault("SIGNED_URL_EXPIRATION", 300)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Stage:       viper.GetString("STAGE"),
		AWS: AWSConfig{
			Region: viper.GetString("AWS_REGION"),
		},
		Table: TableConfig{
			Backend:          viper.GetString("TABLE_BACKEND"),
			Name:             viper.GetString("TODO_TABLE"),
			IndexName:        viper.GetString("INDEX_NAME"),
			DynamoDBEndpoint: viper.GetString("DYNAMODB_ENDPOINT"),
			SQLitePath:       viper.GetString("SQLITE_PATH"),
		},
		Storage: StorageConfig{
			Type:                viper.GetString("STORAGE_TYPE"),
			Bucket:              viper.GetString("IMAGE_BUCKET_NAME"),
			SignedURLExpiration: time.Duration(viper.GetInt("SIGNED_URL_EXPIRATION")) * time.Second,
			AttachmentBaseURL:   viper.GetString("ATTACHMENT_BASE_URL"),
			S3Endpoint:          viper.GetString("S3_ENDPOINT"),
			S3UsePathStyle:      viper.GetBool("S3_USE_PATH_STYLE"),
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

// Validate checks that every setting the storage layer depends on is present
func (c *Config) Validate() error {
	switch c.Table.Backend {
	case TableBackendDynamoDB:
		if c.Table.Name == "" {
			return fmt.Errorf("TODO_TABLE is required")
		}
		if c.Table.IndexName == "" {
			return fmt.Errorf("INDEX_NAME is required")
		}
	case TableBackendSQLite:
		if c.Table.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported table backend: %s", c.Table.Backend)
	}

	switch c.Storage.Type {
	case "s3", "minio", "mock":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.Storage.Type != "mock" && c.Storage.Bucket == "" {
		return fmt.Errorf("IMAGE_BUCKET_NAME is required")
	}

	if c.Storage.Type == "minio" && c.Storage.MinIO.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required for minio storage")
	}

	if c.Storage.SignedURLExpiration <= 0 {
		return fmt.Errorf("SIGNED_URL_EXPIRATION must be positive")
	}
	if c.Storage.SignedURLExpiration > maxSignedURLExpiration {
		return fmt.Errorf("SIGNED_URL_EXPIRATION must not exceed %d seconds", int(maxSignedURLExpiration.Seconds()))
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}

	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
