package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

const uniqueViolation = "23505"

// mapError translates driver errors into storage sentinels and adds op context.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, model.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func errNilPool() error {
	return fmt.Errorf("postgres pool is nil")
}
