package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"todo-api/internal/config"
	"todo-api/pkg/lambda"
	"todo-api/pkg/server"
)

func main() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}

	awslambda.Start(lambda.Adapt(container.TodoHandler.HandleUpdate, container.Logger))
}
