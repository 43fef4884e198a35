package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

type counter interface {
	Count(ctx context.Context) (int, error)
}

type dashboardTeacherRepository interface {
	counter
	List(ctx context.Context) ([]models.Teacher, error)
}

type dashboardAttendanceRepository interface {
	CountPresentOn(ctx context.Context, date string) (int, error)
	ListForDate(ctx context.Context, date string) ([]models.AdminAttendanceItem, error)
}

// DashboardService aggregates the admin overview.
type DashboardService struct {
	students   counter
	teachers   dashboardTeacherRepository
	lessons    counter
	attendance dashboardAttendanceRepository
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(students counter, teachers dashboardTeacherRepository, lessons counter, attendance dashboardAttendanceRepository, logger *zap.Logger, loc *time.Location) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		students:   students,
		teachers:   teachers,
		lessons:    lessons,
		attendance: attendance,
		logger:     logger,
		location:   loc,
		now:        time.Now,
	}
}

// Summary returns school-wide totals and the attendance of date (today when
// empty).
func (s *DashboardService) Summary(ctx context.Context, date string) (*models.AdminDashboard, error) {
	day := schedule.Day(s.now().In(s.location))
	if date != "" {
		d, err := schedule.ParseDate(date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "date must be a valid YYYY-MM-DD date")
		}
		day = d
	}
	iso := schedule.FormatDate(day)
	out := &models.AdminDashboard{Date: iso}

	var err error
	if out.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, s.fail("count students", err)
	}
	if out.TotalTeachers, err = s.teachers.Count(ctx); err != nil {
		return nil, s.fail("count teachers", err)
	}
	if out.TotalLessons, err = s.lessons.Count(ctx); err != nil {
		return nil, s.fail("count lessons", err)
	}
	if out.PresentToday, err = s.attendance.CountPresentOn(ctx, iso); err != nil {
		return nil, s.fail("count present", err)
	}

	items, err := s.attendance.ListForDate(ctx, iso)
	if err != nil {
		return nil, s.fail("list attendance", err)
	}
	for i := range items {
		items[i].Status = capitalize(items[i].Status)
		items[i].Today = "Yes"
	}
	if items == nil {
		items = []models.AdminAttendanceItem{}
	}
	out.AttendanceToday = items

	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, s.fail("list teachers", err)
	}
	out.TeacherList = make([]models.AdminTeacherItem, 0, len(teachers))
	for _, t := range teachers {
		subject := "N/A"
		if t.SubjectName != nil && *t.SubjectName != "" {
			subject = *t.SubjectName
		}
		out.TeacherList = append(out.TeacherList, models.AdminTeacherItem{
			Name:    strings.TrimSpace(t.FirstName + " " + t.LastName),
			Subject: subject,
		})
	}
	return out, nil
}

func (s *DashboardService) fail(op string, err error) error {
	s.logger.Error("admin dashboard query failed", zap.String("op", op), zap.Error(err))
	return appErrors.Persistence(err, "")
}

func capitalize(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
