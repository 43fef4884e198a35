package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/geoattend/attendance-api/internal/models"
)

// AttendanceRepository persists attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// GetStatus returns the stored status for the key, or nil when unmarked.
func (r *AttendanceRepository) GetStatus(ctx context.Context, studentID, lessonID int64, date string) (*models.AttendanceStatus, error) {
	const query = `SELECT status FROM attendance WHERE student_id = $1 AND lesson_id = $2 AND attendance_date = $3`
	var status models.AttendanceStatus
	if err := r.db.GetContext(ctx, &status, query, studentID, lessonID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance status: %w", err)
	}
	return &status, nil
}

// Upsert writes the record unless the stored row is already present. The
// boolean is false when an existing present row suppressed the write.
func (r *AttendanceRepository) Upsert(ctx context.Context, record models.AttendanceRecord, date string) (bool, error) {
	const query = `INSERT INTO attendance (student_id, lesson_id, attendance_date, status, latitude, longitude, marked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, lesson_id, attendance_date)
DO UPDATE SET status = EXCLUDED.status, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, marked_at = EXCLUDED.marked_at
WHERE attendance.status <> 'present'
RETURNING status`
	var stored models.AttendanceStatus
	err := r.db.GetContext(ctx, &stored, query,
		record.StudentID, record.LessonID, date, record.Status, record.Latitude, record.Longitude, record.MarkedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("upsert attendance: %w", err)
	}
	return true, nil
}

// ListForLessons loads every mark of the given lessons between from and to
// inclusive in a single query.
func (r *AttendanceRepository) ListForLessons(ctx context.Context, lessonIDs []int64, from, to string) ([]models.AttendanceMark, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT student_id, lesson_id, to_char(attendance_date, 'YYYY-MM-DD') AS attendance_date, status
FROM attendance
WHERE lesson_id = ANY($1) AND attendance_date BETWEEN $2 AND $3`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, pq.Array(lessonIDs), from, to); err != nil {
		return nil, fmt.Errorf("list attendance for lessons: %w", err)
	}
	return marks, nil
}

// History returns a student's marks, newest first.
func (r *AttendanceRepository) History(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error) {
	const query = `SELECT to_char(a.attendance_date, 'YYYY-MM-DD') AS attendance_date, a.status, s.name AS subject,
l.day_of_week, to_char(l.start_time, 'HH24:MI:SS') AS start_time, to_char(l.end_time, 'HH24:MI:SS') AS end_time
FROM attendance a
JOIN lessons l ON a.lesson_id = l.lesson_id
JOIN subjects s ON l.subject_id = s.subject_id
WHERE a.student_id = $1
ORDER BY a.attendance_date DESC, l.start_time DESC`
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance history: %w", err)
	}
	return rows, nil
}

// CountsForStudent returns present and total marks of a student.
func (r *AttendanceRepository) CountsForStudent(ctx context.Context, studentID int64) (models.AttendanceCounts, error) {
	const query = `SELECT COUNT(*) FILTER (WHERE status = 'present') AS present, COUNT(*) AS total
FROM attendance WHERE student_id = $1`
	var counts models.AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, studentID); err != nil {
		return models.AttendanceCounts{}, fmt.Errorf("count student attendance: %w", err)
	}
	return counts, nil
}

// CountPresentOn counts present marks recorded for a date.
func (r *AttendanceRepository) CountPresentOn(ctx context.Context, date string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE attendance_date = $1 AND status = 'present'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, date); err != nil {
		return 0, fmt.Errorf("count present attendance: %w", err)
	}
	return count, nil
}

// ListForDate returns student marks recorded on a date for the admin dashboard.
func (r *AttendanceRepository) ListForDate(ctx context.Context, date string) ([]models.AdminAttendanceItem, error) {
	const query = `SELECT s.first_name || ' ' || s.last_name AS name, s.email AS contact, a.status
FROM attendance a
JOIN students s ON s.student_id = a.student_id
WHERE a.attendance_date = $1
ORDER BY s.last_name, s.first_name`
	var rows []models.AdminAttendanceItem
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list attendance for date: %w", err)
	}
	return rows, nil
}
