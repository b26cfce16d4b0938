package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"todo-api/internal/adapters/storage"
	"todo-api/internal/config"
	"todo-api/internal/gateway"
	"todo-api/internal/handlers"
	"todo-api/internal/repositories"
	"todo-api/internal/repositories/dynamo"
	"todo-api/internal/repositories/sqlite"
	"todo-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Registry    *prometheus.Registry
	Storage     storage.ObjectStorage
	Gateway     *gateway.Gateway
	TodoService services.TodoService
	TodoHandler *handlers.TodoHandler

	// Internal dependencies
	db *sql.DB
}

// NewContainer creates a new dependency injection container. It is called
// once per process; every client it builds is reused across invocations.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	logger := config.NewLogger(cfg.Log)
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	var awsCfg aws.Config
	if needsAWS(cfg) {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		awsCfg = loaded
	}

	todos, err := c.newTodoRepository(awsCfg)
	if err != nil {
		return nil, err
	}

	objects, err := storage.NewFactory(awsCfg).Create(&storage.StorageConfig{
		Type:          cfg.Storage.Type,
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.AWS.Region,
		Endpoint:      storageEndpoint(cfg.Storage),
		UsePathStyle:  cfg.Storage.S3UsePathStyle,
		PublicBaseURL: cfg.Storage.AttachmentBaseURL,
		AccessKey:     cfg.Storage.MinIO.AccessKey,
		SecretKey:     cfg.Storage.MinIO.SecretKey,
		UseSSL:        cfg.Storage.MinIO.UseSSL,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}
	c.Storage = objects

	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := gateway.NewMetrics(c.Registry)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	c.Gateway = gateway.New(todos, objects, gateway.Config{
		TableName:           cfg.Table.Name,
		IndexName:           cfg.Table.IndexName,
		BucketName:          cfg.Storage.Bucket,
		SignedURLExpiration: cfg.Storage.SignedURLExpiration,
	}, logger, metrics)
	c.TodoService = services.NewTodoService(c.Gateway, logger)
	c.TodoHandler = handlers.NewTodoHandler(c.TodoService, logger)

	logger.WithFields(deploymentFields(cfg)).Info("Container initialized")

	return c, nil
}

func (c *Container) newTodoRepository(awsCfg aws.Config) (repositories.TodoRepository, error) {
	cfg := c.Config.Table

	switch cfg.Backend {
	case config.TableBackendDynamoDB:
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		return dynamo.NewTodoRepository(client, cfg.Name, cfg.IndexName, c.Logger), nil

	case config.TableBackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite table: %w", err)
		}
		c.db = db
		return sqlite.NewTodoRepository(db, c.Logger), nil

	default:
		return nil, fmt.Errorf("unsupported table backend: %s", cfg.Backend)
	}
}

// RouterConfig returns the settings for mounting the handlers on gin
func (c *Container) RouterConfig(version string) *handlers.RouterConfig {
	return &handlers.RouterConfig{
		TodoHandler:       c.TodoHandler,
		Logger:            c.Logger,
		Gatherer:          c.Registry,
		RequestsPerSecond: c.Config.RateLimit.RequestsPerSecond,
		Burst:             c.Config.RateLimit.Burst,
		Version:           version,
	}
}

// Close cleans up all resources
func (c *Container) Close() error {
	var errs []error

	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		c.db = nil
	}

	return errors.Join(errs...)
}

// deploymentFields describes where and how the process runs
func deploymentFields(cfg *config.Config) logrus.Fields {
	fields := logrus.Fields{
		"table_backend":   cfg.Table.Backend,
		"storage_type":    cfg.Storage.Type,
		"stage":           cfg.Stage,
		"deployment_mode": config.GetDeploymentMode(),
	}
	if sc := config.GetServerlessConfig(); sc.IsLambda {
		fields["function_name"] = sc.FunctionName
	}
	return fields
}

func needsAWS(cfg *config.Config) bool {
	return cfg.Table.Backend == config.TableBackendDynamoDB ||
		storage.StorageType(cfg.Storage.Type) == storage.StorageTypeS3
}

func storageEndpoint(cfg config.StorageConfig) string {
	if storage.StorageType(cfg.Type) == storage.StorageTypeMinIO {
		return cfg.MinIO.Endpoint
	}
	return cfg.S3Endpoint
}
