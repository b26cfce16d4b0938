package config

import (
	"fmt"
	"os"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
}

// GetServerlessConfig returns the serverless configuration of the current process
func GetServerlessConfig() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     isRunningInLambda(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return isRunningInLambda()
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for serverless deployment.
// Lambda functions have no writable persistent disk, so the local sqlite and
// minio stack is replaced with DynamoDB and S3.
func AdaptConfigForServerless(config *Config) *Config {
	if !IsServerlessMode() {
		return config
	}

	config.Table.Backend = TableBackendDynamoDB
	config.Storage.Type = "s3"
	config.Log.Format = "json"

	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}

	return config
}

// GetOptimizedConfig returns validated configuration for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	config = AdaptConfigForServerless(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
