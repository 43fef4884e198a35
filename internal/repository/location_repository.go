package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// LocationRepository manages geofence locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository constructs the repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List returns all locations ordered by name.
func (r *LocationRepository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, `SELECT location_id, name, latitude, longitude FROM locations ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// Create inserts a location and sets its id.
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	const query = `INSERT INTO locations (name, latitude, longitude) VALUES ($1, $2, $3) RETURNING location_id`
	if err := r.db.GetContext(ctx, &location.ID, query, location.Name, location.Latitude, location.Longitude); err != nil {
		return fmt.Errorf("create location: %w", translate(err))
	}
	return nil
}

// Delete removes a location.
func (r *LocationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "locations", "location_id", id)
}
