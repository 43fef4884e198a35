package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// GroupRepository manages student groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// List returns all groups ordered by name.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, `SELECT group_id, group_name FROM groups ORDER BY group_name`); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Create inserts a group and sets its id.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	const query = `INSERT INTO groups (group_name) VALUES ($1) RETURNING group_id`
	if err := r.db.GetContext(ctx, &group.ID, query, group.Name); err != nil {
		return fmt.Errorf("create group: %w", translate(err))
	}
	return nil
}

// Delete removes a group.
func (r *GroupRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "groups", "group_id", id)
}
