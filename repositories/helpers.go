package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLExecutor lets repository methods run against either the pool or an open
// transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrDivisionNotFound   = errors.New("division not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrPermissionDenied   = errors.New("permission denied by the store")
	ErrStoreUnavailable   = errors.New("store temporarily unavailable")
	ErrBatchTooLarge      = errors.New("batch update exceeds the maximum batch size")
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
