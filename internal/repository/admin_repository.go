package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// AdminRepository reads administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs the repository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername loads an admin. sql.ErrNoRows is returned unwrapped.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `SELECT admin_id, username, password FROM admin WHERE username = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}
