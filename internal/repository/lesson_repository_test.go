package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattend/attendance-api/internal/models"
)

var lessonScheduleRowColumns = []string{
	"lesson_id", "subject_id", "teacher_id", "group_id", "location_id", "day_of_week",
	"start_time", "end_time", "start_date", "end_date",
	"subject_name", "teacher_name", "group_name", "location_name", "latitude", "longitude",
}

func TestLessonRepositoryFindSchedule(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows(lessonScheduleRowColumns).
		AddRow(3, 1, 2, 5, 9, "Monday", "09:00:00", "10:00:00", "2024-01-01", "2024-01-31", "Math", "Ann Lee", "G-1", "Room 101", 41.3, 69.2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.lesson_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	lesson, err := repo.FindSchedule(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), lesson.GroupID)
	assert.Equal(t, "Math", lesson.SubjectName)
	assert.Equal(t, 41.3, lesson.Point().Lat)

	rec, err := lesson.Recurrence()
	require.NoError(t, err)
	assert.Equal(t, "Monday", rec.DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryFindScheduleMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.lesson_id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindSchedule(context.Background(), 99)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLessonRepositoryListByGroupWithSubject(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows(lessonScheduleRowColumns).
		AddRow(3, 1, 2, 5, 9, "Monday", "09:00:00", "10:00:00", "2024-01-01", "2024-01-31", "Math", "Ann Lee", "G-1", "Room 101", 41.3, 69.2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.group_id = $1 AND sub.name = $2 ORDER BY l.lesson_id")).
		WithArgs(int64(5), "Math").
		WillReturnRows(rows)

	lessons, err := repo.ListByGroup(context.Background(), 5, "Math")
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryTimetable(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows([]string{"lesson_id", "subject_name", "teacher_name", "location_name", "latitude", "longitude",
		"day_of_week", "start_time", "end_time", "start_date", "end_date", "status"}).
		AddRow(3, "Math", "Ann Lee", "Room 101", 41.3, 69.2, "Monday", "09:00:00", "10:00:00", "2024-01-01", "2024-01-31", nil).
		AddRow(4, "Physics", "Bo Kim", "Lab", 41.3, 69.2, "monday ", "11:00:00", "12:00:00", "2024-01-01", "2024-01-31", "present")
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(TRIM(l.day_of_week)) = LOWER($3)")).
		WithArgs(int64(5), int64(7), "Monday", "2024-01-08").
		WillReturnRows(rows)

	entries, err := repo.Timetable(context.Background(), 5, 7, "Monday", "2024-01-08")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Status)
	require.NotNil(t, entries[1].Status)
	assert.Equal(t, models.AttendanceStatusPresent, *entries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO lessons")).
		WithArgs(int64(1), int64(2), int64(5), int64(9), "Monday", "09:00", "10:00", "2024-01-01", "2024-01-31").
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id"}).AddRow(42))

	lesson := &models.Lesson{SubjectID: 1, TeacherID: 2, GroupID: 5, LocationID: 9, DayOfWeek: "Monday",
		StartTime: "09:00", EndTime: "10:00", StartDate: "2024-01-01", EndDate: "2024-01-31"}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.Equal(t, int64(42), lesson.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositorySubjectNames(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT sub.name FROM lessons l")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Math").AddRow("Physics"))

	names, err := repo.SubjectNamesByGroup(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Physics"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}
