package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattend/attendance-api/internal/models"
)

func TestStudentRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "first_name", "last_name", "email", "group_id", "group_name", "password"}).
		AddRow(7, "Ada", "Love", "ada@example.com", 5, "G-1", "$2a$10$hash")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(s.email) = LOWER($1)")).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	student, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.Equal(t, "Ada Love", student.FullName())
	assert.Equal(t, "$2a$10$hash", student.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students s")).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "students_email_key"})

	err := repo.Create(context.Background(), &models.Student{FirstName: "Ada", LastName: "Love", Email: "ada@example.com", GroupID: 5, PasswordHash: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStudentRepositoryUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET password = $1 WHERE student_id = $2")).
		WithArgs("hash", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdatePassword(context.Background(), 7, "hash")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryDeleteInUse(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM groups WHERE group_id = $1")).
		WithArgs(int64(5)).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation, Constraint: "students_group_id_fkey"})

	_, err := repo.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInUse)
}

func TestLocationRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLocationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations (name, latitude, longitude)")).
		WithArgs("Room 101", 41.3, 69.2).
		WillReturnRows(sqlmock.NewRows([]string{"location_id"}).AddRow(9))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM locations WHERE location_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	loc := &models.Location{Name: "Room 101", Latitude: 41.3, Longitude: 69.2}
	require.NoError(t, repo.Create(context.Background(), loc))
	assert.Equal(t, int64(9), loc.ID)

	deleted, err := repo.Delete(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_id", "first_name", "last_name", "email", "phone", "subject_id", "subject_name"}).
		AddRow(2, "Ann", "Lee", "ann@example.com", "+1", 1, "Math").
		AddRow(3, "Bo", "Kim", "bo@example.com", "", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers t LEFT JOIN subjects sub")).WillReturnRows(rows)

	teachers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	require.NotNil(t, teachers[0].SubjectName)
	assert.Equal(t, "Math", *teachers[0].SubjectName)
	assert.Nil(t, teachers[1].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT admin_id, username, password FROM admin WHERE username = $1")).
		WithArgs("root").
		WillReturnRows(sqlmock.NewRows([]string{"admin_id", "username", "password"}).AddRow(1, "root", "hash"))

	admin, err := repo.FindByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "hash", admin.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
