package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `s.student_id, s.first_name, s.last_name, s.email, s.group_id, g.group_name, s.password`

// FindByEmail loads a student for login. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s LEFT JOIN groups g ON g.group_id = s.group_id WHERE LOWER(s.email) = LOWER($1) LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// Profile loads the profile view of a student. sql.ErrNoRows is returned
// unwrapped.
func (r *StudentRepository) Profile(ctx context.Context, id int64) (*models.StudentProfile, error) {
	const query = `SELECT s.first_name, s.last_name, s.email, g.group_name
FROM students s LEFT JOIN groups g ON g.group_id = s.group_id
WHERE s.student_id = $1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("load student profile: %w", err)
	}
	return &profile, nil
}

// ListByGroup returns the students of a group ordered by id.
func (r *StudentRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s LEFT JOIN groups g ON g.group_id = s.group_id WHERE s.group_id = $1 ORDER BY s.student_id`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list students by group: %w", err)
	}
	return students, nil
}

// List returns every student with the group name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s LEFT JOIN groups g ON g.group_id = s.group_id ORDER BY s.student_id`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// Create inserts a student. PasswordHash must already be hashed.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (first_name, last_name, email, group_id, password)
VALUES ($1, $2, $3, $4, $5) RETURNING student_id`
	if err := r.db.GetContext(ctx, &student.ID, query,
		student.FirstName, student.LastName, student.Email, student.GroupID, student.PasswordHash); err != nil {
		return fmt.Errorf("create student: %w", translate(err))
	}
	return nil
}

// UpdatePassword stores a new password hash. It reports false when the
// student does not exist.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, hash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET password = $1 WHERE student_id = $2`, hash, id)
	if err != nil {
		return false, fmt.Errorf("update student password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update student password: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a student and, by cascade, their attendance.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "students", "student_id", id)
}
