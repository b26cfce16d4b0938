package sqlite

import (
	"context"
	"database/sql"
	"time"

	"todo-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// baseRepository provides query execution and logging shared by SQLite repositories
type baseRepository struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

func newBaseRepository(db *sql.DB, table string, logger *logrus.Logger) baseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return baseRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// logQuery logs a query with its execution time
func (r *baseRepository) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *baseRepository) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *baseRepository) executeQueryRow(ctx context.Context, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), nil)

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *baseRepository) executeExec(ctx context.Context, operation, key, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, key, err)
	}

	return result, nil
}

// checkRowsAffected returns a not-found error when a keyed statement matched nothing
func (r *baseRepository) checkRowsAffected(result sql.Result, operation, userID, todoID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError(operation, r.table, repositories.ItemKey(userID, todoID), err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(operation, r.table, userID, todoID)
	}

	return nil
}
