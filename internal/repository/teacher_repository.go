package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// TeacherRepository manages teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers with their subject name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT t.teacher_id, t.first_name, t.last_name, t.email, t.phone, t.subject_id, sub.name AS subject_name
FROM teachers t LEFT JOIN subjects sub ON sub.subject_id = t.subject_id
ORDER BY t.last_name, t.first_name`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// Count returns the number of teachers.
func (r *TeacherRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers`); err != nil {
		return 0, fmt.Errorf("count teachers: %w", err)
	}
	return count, nil
}

// Create inserts a teacher and sets its id.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (first_name, last_name, email, phone, subject_id)
VALUES ($1, $2, $3, $4, $5) RETURNING teacher_id`
	if err := r.db.GetContext(ctx, &teacher.ID, query,
		teacher.FirstName, teacher.LastName, teacher.Email, teacher.Phone, teacher.SubjectID); err != nil {
		return fmt.Errorf("create teacher: %w", translate(err))
	}
	return nil
}

// Delete removes a teacher.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "teachers", "teacher_id", id)
}
