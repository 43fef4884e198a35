package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/internal/repository"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
)

// memStore backs the roster mocks; createErr and deleteErr simulate
// constraint failures.
type memStore[T any] struct {
	items     []T
	createErr error
	deleteErr error
	existing  map[int64]bool
}

func (m *memStore[T]) List(ctx context.Context) ([]T, error) { return m.items, nil }

func (m *memStore[T]) add(item T) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *memStore[T]) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	return m.existing[id], nil
}

type memGroups struct{ memStore[models.Group] }

func (m *memGroups) Create(ctx context.Context, g *models.Group) error {
	g.ID = int64(len(m.items) + 1)
	return m.add(*g)
}

type memStudents struct{ memStore[models.Student] }

func (m *memStudents) Create(ctx context.Context, s *models.Student) error {
	s.ID = int64(len(m.items) + 1)
	return m.add(*s)
}

func (m *memStudents) ListByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.items {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memTeachers struct{ memStore[models.Teacher] }

func (m *memTeachers) Create(ctx context.Context, t *models.Teacher) error { return m.add(*t) }

type memLocations struct{ memStore[models.Location] }

func (m *memLocations) Create(ctx context.Context, l *models.Location) error { return m.add(*l) }

type memSubjects struct{ memStore[models.Subject] }

type rosterFixture struct {
	svc       *RosterService
	groups    *memGroups
	students  *memStudents
	teachers  *memTeachers
	locations *memLocations
	cache     *mockCacheRepo
}

func newRosterFixture() *rosterFixture {
	f := &rosterFixture{
		groups:    &memGroups{},
		students:  &memStudents{},
		teachers:  &memTeachers{},
		locations: &memLocations{},
		cache:     &mockCacheRepo{},
	}
	f.svc = NewRosterService(RosterRepositories{
		Groups:    f.groups,
		Students:  f.students,
		Teachers:  f.teachers,
		Locations: f.locations,
		Subjects:  &memSubjects{},
	}, NewCacheService(f.cache, nil, 0, nil, true), nil, nil)
	return f
}

func TestRosterGroups(t *testing.T) {
	f := newRosterFixture()

	groups, err := f.svc.ListGroups(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, groups)

	group, err := f.svc.CreateGroup(context.Background(), models.CreateGroupRequest{Name: "  10-A "})
	require.NoError(t, err)
	assert.Equal(t, "10-A", group.Name)
	assert.Equal(t, int64(1), group.ID)

	_, err = f.svc.CreateGroup(context.Background(), models.CreateGroupRequest{Name: "   "})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	f.groups.createErr = fmt.Errorf("insert group: %w", repository.ErrDuplicate)
	_, err = f.svc.CreateGroup(context.Background(), models.CreateGroupRequest{Name: "10-A"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRosterCreateStudentHashesPassword(t *testing.T) {
	f := newRosterFixture()

	student, err := f.svc.CreateStudent(context.Background(), models.CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: " ada@example.com ", GroupID: 5, Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", student.Email)
	assert.NotEqual(t, "correct-horse", student.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("correct-horse")))

	_, err = f.svc.CreateStudent(context.Background(), models.CreateStudentRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", GroupID: 5, Password: "short",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	members, err := f.svc.GroupStudents(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = f.svc.GroupStudents(context.Background(), 0)
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestRosterCreateLocation(t *testing.T) {
	f := newRosterFixture()

	location, err := f.svc.CreateLocation(context.Background(), models.CreateLocationRequest{
		Name: "Main building", Latitude: floatPtr(41.31), Longitude: floatPtr(69.24),
	})
	require.NoError(t, err)
	assert.Equal(t, 41.31, location.Latitude)

	_, err = f.svc.CreateLocation(context.Background(), models.CreateLocationRequest{Name: "Nowhere"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	_, err = f.svc.CreateLocation(context.Background(), models.CreateLocationRequest{
		Name: "Off the map", Latitude: floatPtr(120), Longitude: floatPtr(0),
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestRosterCreateTeacher(t *testing.T) {
	f := newRosterFixture()

	subjectID := int64(3)
	teacher, err := f.svc.CreateTeacher(context.Background(), models.CreateTeacherRequest{
		FirstName: "Marie", LastName: "Curie", Email: "marie@example.com", SubjectID: &subjectID,
	})
	require.NoError(t, err)
	assert.Equal(t, &subjectID, teacher.SubjectID)

	_, err = f.svc.CreateTeacher(context.Background(), models.CreateTeacherRequest{FirstName: "Marie"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestRosterDelete(t *testing.T) {
	f := newRosterFixture()
	f.teachers.existing = map[int64]bool{4: true}

	require.NoError(t, f.svc.DeleteTeacher(context.Background(), 4))
	assert.ErrorIs(t, f.svc.DeleteTeacher(context.Background(), 5), appErrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteTeacher(context.Background(), 0), appErrors.ErrInvalidInput)

	f.locations.deleteErr = fmt.Errorf("delete location: %w", repository.ErrInUse)
	assert.ErrorIs(t, f.svc.DeleteLocation(context.Background(), 1), appErrors.ErrConflict)

	f.groups.deleteErr = errors.New("connection reset")
	assert.ErrorIs(t, f.svc.DeleteGroup(context.Background(), 1), appErrors.ErrPersistence)
}

func TestRosterStudentWritesInvalidateReports(t *testing.T) {
	f := newRosterFixture()
	f.cache.store = map[string]interface{}{"report:group:5:from::to::subject:": []models.SessionRow{}}

	_, err := f.svc.CreateStudent(context.Background(), models.CreateStudentRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", GroupID: 5, Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"report:group:5:*"}, f.cache.patterns)
	assert.Empty(t, f.cache.store)

	f.students.existing = map[int64]bool{1: true}
	require.NoError(t, f.svc.DeleteStudent(context.Background(), 1))
	assert.Equal(t, []string{"report:group:5:*", "report:group:*"}, f.cache.patterns)

	assert.ErrorIs(t, f.svc.DeleteStudent(context.Background(), 9), appErrors.ErrNotFound)
	assert.Len(t, f.cache.patterns, 2)
}

func TestRosterStudentWritesRefreshCachedReport(t *testing.T) {
	reports := newReportFixture(true)
	roster := NewRosterService(RosterRepositories{Students: &memStudents{}}, reports.svc.cache, nil, nil)

	rows, hit, err := reports.svc.Build(context.Background(), models.ReportRequest{GroupID: 5, StartDate: "2024-01-08", EndDate: "2024-01-08"})
	require.NoError(t, err)
	require.False(t, hit)
	require.Len(t, rows[0].Session, 2)

	reports.students.students = append(reports.students.students, models.Student{ID: 4, FirstName: "Grace", LastName: "Hopper", GroupID: 5})
	_, err = roster.CreateStudent(context.Background(), models.CreateStudentRequest{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", GroupID: 5, Password: "correct-horse",
	})
	require.NoError(t, err)

	rows, hit, err = reports.svc.Build(context.Background(), models.ReportRequest{GroupID: 5, StartDate: "2024-01-08", EndDate: "2024-01-08"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows[0].Session, 3)
}
