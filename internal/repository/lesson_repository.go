package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/geoattend/attendance-api/internal/models"
)

// lessonScheduleColumns selects a lesson with its names and location. Dates
// and times are rendered as text so callers control parsing.
const lessonScheduleColumns = `l.lesson_id, l.subject_id, l.teacher_id, l.group_id, l.location_id, l.day_of_week,
to_char(l.start_time, 'HH24:MI:SS') AS start_time, to_char(l.end_time, 'HH24:MI:SS') AS end_time,
to_char(l.start_date, 'YYYY-MM-DD') AS start_date, to_char(l.end_date, 'YYYY-MM-DD') AS end_date,
sub.name AS subject_name, t.first_name || ' ' || t.last_name AS teacher_name, g.group_name,
loc.name AS location_name, loc.latitude, loc.longitude`

const lessonScheduleJoins = `FROM lessons l
JOIN subjects sub ON sub.subject_id = l.subject_id
JOIN teachers t ON t.teacher_id = l.teacher_id
JOIN groups g ON g.group_id = l.group_id
JOIN locations loc ON loc.location_id = l.location_id`

// LessonRepository reads and writes lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindSchedule loads a lesson with its location. sql.ErrNoRows is returned
// unwrapped when the lesson does not exist.
func (r *LessonRepository) FindSchedule(ctx context.Context, id int64) (*models.LessonSchedule, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE l.lesson_id = $1", lessonScheduleColumns, lessonScheduleJoins)
	var lesson models.LessonSchedule
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// ListByGroup returns a group's lessons ordered by id, optionally limited to
// one subject name.
func (r *LessonRepository) ListByGroup(ctx context.Context, groupID int64, subject string) ([]models.LessonSchedule, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE l.group_id = $1", lessonScheduleColumns, lessonScheduleJoins)
	args := []interface{}{groupID}
	if subject != "" {
		query += " AND sub.name = $2"
		args = append(args, subject)
	}
	query += " ORDER BY l.lesson_id"

	var lessons []models.LessonSchedule
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons by group: %w", err)
	}
	return lessons, nil
}

// List returns every lesson ordered by id.
func (r *LessonRepository) List(ctx context.Context) ([]models.LessonSchedule, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY l.lesson_id", lessonScheduleColumns, lessonScheduleJoins)
	var lessons []models.LessonSchedule
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Timetable returns the group's lessons on the given weekday whose window
// contains date, with the student's status for that date.
func (r *LessonRepository) Timetable(ctx context.Context, groupID, studentID int64, weekday, date string) ([]models.TimetableEntry, error) {
	const query = `SELECT l.lesson_id, sub.name AS subject_name, t.first_name || ' ' || t.last_name AS teacher_name,
loc.name AS location_name, loc.latitude, loc.longitude, l.day_of_week,
to_char(l.start_time, 'HH24:MI:SS') AS start_time, to_char(l.end_time, 'HH24:MI:SS') AS end_time,
to_char(l.start_date, 'YYYY-MM-DD') AS start_date, to_char(l.end_date, 'YYYY-MM-DD') AS end_date, a.status
FROM lessons l
JOIN subjects sub ON sub.subject_id = l.subject_id
JOIN teachers t ON t.teacher_id = l.teacher_id
JOIN locations loc ON loc.location_id = l.location_id
LEFT JOIN attendance a ON a.lesson_id = l.lesson_id AND a.student_id = $2 AND a.attendance_date = $4
WHERE l.group_id = $1 AND LOWER(TRIM(l.day_of_week)) = LOWER($3) AND $4 BETWEEN l.start_date AND l.end_date
ORDER BY l.start_time, l.lesson_id`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, groupID, studentID, weekday, date); err != nil {
		return nil, fmt.Errorf("student timetable: %w", err)
	}
	return entries, nil
}

// CountDistinctSubjects counts subjects taught to a group.
func (r *LessonRepository) CountDistinctSubjects(ctx context.Context, groupID int64) (int, error) {
	const query = `SELECT COUNT(DISTINCT subject_id) FROM lessons WHERE group_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, groupID); err != nil {
		return 0, fmt.Errorf("count group subjects: %w", err)
	}
	return count, nil
}

// SubjectNamesByGroup returns the distinct subject names of a group, sorted.
func (r *LessonRepository) SubjectNamesByGroup(ctx context.Context, groupID int64) ([]string, error) {
	const query = `SELECT DISTINCT sub.name FROM lessons l
JOIN subjects sub ON sub.subject_id = l.subject_id
WHERE l.group_id = $1
ORDER BY sub.name`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, groupID); err != nil {
		return nil, fmt.Errorf("list group subjects: %w", err)
	}
	return names, nil
}

// Count returns the number of lessons.
func (r *LessonRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lessons`); err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	return count, nil
}

// Create inserts a lesson and sets its id.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	const query = `INSERT INTO lessons (subject_id, teacher_id, group_id, location_id, day_of_week, start_time, end_time, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING lesson_id`
	if err := r.db.GetContext(ctx, &lesson.ID, query,
		lesson.SubjectID, lesson.TeacherID, lesson.GroupID, lesson.LocationID, lesson.DayOfWeek,
		lesson.StartTime, lesson.EndTime, lesson.StartDate, lesson.EndDate); err != nil {
		return fmt.Errorf("create lesson: %w", translate(err))
	}
	return nil
}

// Delete removes a lesson. It reports false when nothing was deleted.
func (r *LessonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "lessons", "lesson_id", id)
}
