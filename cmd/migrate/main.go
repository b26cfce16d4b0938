package main

import (
	"database/sql"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"todo-api/internal/repositories/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/todos.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	db, err := sqlite.Connect(absDBPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	migrations := sqlite.NewMigrationManager(db, logger)

	switch *action {
	case "up":
		err = migrations.RunMigrations()
	case "down":
		err = migrations.RollbackMigration()
	case "status":
		err = showMigrationStatus(db, migrations)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(db *sql.DB, migrations *sqlite.MigrationManager) error {
	status, err := migrations.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	var todos int
	if status.Applied {
		if err := db.QueryRow("SELECT COUNT(*) FROM todos").Scan(&todos); err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Todos: %d\n", todos)

	return nil
}
