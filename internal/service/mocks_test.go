package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
)

type mockAttendanceRepo struct {
	mu             sync.Mutex
	status         map[string]models.AttendanceStatus
	getErr         error
	upsertErr      error
	presentOnWrite bool
	getCalls       int
	upserts        []models.AttendanceRecord
	history        []models.AttendanceHistoryRow
	marks          []models.AttendanceMark
	listCalls      int
	listArgs       []interface{}
	counts         models.AttendanceCounts
}

func attendanceKey(studentID, lessonID int64, date string) string {
	return fmt.Sprintf("%d:%d:%s", studentID, lessonID, date)
}

func (m *mockAttendanceRepo) GetStatus(ctx context.Context, studentID, lessonID int64, date string) (*models.AttendanceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if v, ok := m.status[attendanceKey(studentID, lessonID, date)]; ok {
		return &v, nil
	}
	return nil, nil
}

// Upsert mirrors the conditional write: a stored present row is never replaced.
func (m *mockAttendanceRepo) Upsert(ctx context.Context, record models.AttendanceRecord, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	if m.status == nil {
		m.status = map[string]models.AttendanceStatus{}
	}
	key := attendanceKey(record.StudentID, record.LessonID, date)
	if m.presentOnWrite {
		m.status[key] = models.AttendanceStatusPresent
	}
	if m.status[key] == models.AttendanceStatusPresent {
		return false, nil
	}
	m.status[key] = record.Status
	m.upserts = append(m.upserts, record)
	return true, nil
}

func (m *mockAttendanceRepo) History(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.history, nil
}

func (m *mockAttendanceRepo) ListForLessons(ctx context.Context, lessonIDs []int64, from, to string) ([]models.AttendanceMark, error) {
	m.listCalls++
	m.listArgs = []interface{}{lessonIDs, from, to}
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.marks, nil
}

func (m *mockAttendanceRepo) CountsForStudent(ctx context.Context, studentID int64) (models.AttendanceCounts, error) {
	return m.counts, m.getErr
}

type mockLessonRepo struct {
	lessons   map[int64]*models.LessonSchedule
	byGroup   []models.LessonSchedule
	timetable []models.TimetableEntry
	subjects  []string
	err       error
	created   []*models.Lesson
	deleted   map[int64]bool
}

func (m *mockLessonRepo) FindSchedule(ctx context.Context, id int64) (*models.LessonSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	lesson, ok := m.lessons[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *lesson
	return &copied, nil
}

func (m *mockLessonRepo) ListByGroup(ctx context.Context, groupID int64, subject string) ([]models.LessonSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.LessonSchedule
	for _, l := range m.byGroup {
		if l.GroupID == groupID && (subject == "" || l.SubjectName == subject) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLessonRepo) SubjectNamesByGroup(ctx context.Context, groupID int64) ([]string, error) {
	return m.subjects, m.err
}

func (m *mockLessonRepo) Timetable(ctx context.Context, groupID, studentID int64, weekday, date string) ([]models.TimetableEntry, error) {
	return m.timetable, m.err
}

func (m *mockLessonRepo) CountDistinctSubjects(ctx context.Context, groupID int64) (int, error) {
	return len(m.subjects), m.err
}

func (m *mockLessonRepo) List(ctx context.Context) ([]models.LessonSchedule, error) {
	return m.byGroup, m.err
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	lesson.ID = int64(len(m.created) + 1)
	m.created = append(m.created, lesson)
	return nil
}

func (m *mockLessonRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.deleted[id], nil
}

type mockStudentRepo struct {
	students []models.Student
	byEmail  map[string]*models.Student
	profile  *models.StudentProfile
	err      error
	updated  map[int64]string
}

func (m *mockStudentRepo) ListByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Student
	for _, s := range m.students {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStudentRepo) UpdatePassword(ctx context.Context, id int64, hash string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, s := range m.byEmail {
		if s.ID == id {
			if m.updated == nil {
				m.updated = map[int64]string{}
			}
			m.updated[id] = hash
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Profile(ctx context.Context, id int64) (*models.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

type mockCacheRepo struct {
	store    map[string]interface{}
	patterns []string
	gets     int
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	v, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	rows, ok := v.([]models.SessionRow)
	target, okDest := dest.(*[]models.SessionRow)
	if !ok || !okDest {
		return fmt.Errorf("unexpected cache types")
	}
	*target = rows
	return nil
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = map[string]interface{}{}
	}
	m.store[key] = value
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	m.patterns = append(m.patterns, pattern)
	n := len(m.store)
	m.store = nil
	return n, nil
}
