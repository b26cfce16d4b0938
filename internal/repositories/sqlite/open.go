// Package sqlite stores to-do items in a local SQLite database so the API
// can run without AWS.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"todo-api/internal/repositories"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Open opens the database at path, creating its directory when needed,
// and applies all pending migrations.
func Open(path string, logger *logrus.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = logrus.New()
	}

	db, err := Connect(path, logger)
	if err != nil {
		return nil, err
	}

	if err := NewMigrationManager(db, logger).RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Connect opens the database at path without touching its schema
func Connect(path string, logger *logrus.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = logrus.New()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, repositories.ConnectionError(path, err)
	}

	// SQLite works best with a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, repositories.ConnectionError(path, err)
	}

	logger.WithField("db_path", path).Info("Database connection established")
	return db, nil
}
