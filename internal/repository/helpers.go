package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pgForeignKeyViolation is the SQLSTATE raised when a referenced row is removed.
const pgForeignKeyViolation = "23503"

// pgUniqueViolation is the SQLSTATE raised on duplicate keys.
const pgUniqueViolation = "23505"

// ErrInUse reports a delete blocked by rows that still reference the target.
var ErrInUse = errors.New("record is still referenced")

// ErrDuplicate reports an insert rejected by a unique constraint.
var ErrDuplicate = errors.New("record already exists")

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// translate maps constraint violations to repository sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pqErr.Constraint)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		}
	}
	return err
}

// deleteByID is shared by the admin-managed tables. table and column are
// compile-time constants of the callers.
func deleteByID(ctx context.Context, db *sqlx.DB, table, column string, id int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, column)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return affected > 0, nil
}
