package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

const roomFallback = "Room N/A"

type studentLessonRepository interface {
	Timetable(ctx context.Context, groupID, studentID int64, weekday, date string) ([]models.TimetableEntry, error)
	CountDistinctSubjects(ctx context.Context, groupID int64) (int, error)
}

type studentAttendanceRepository interface {
	CountsForStudent(ctx context.Context, studentID int64) (models.AttendanceCounts, error)
}

type studentProfileRepository interface {
	Profile(ctx context.Context, id int64) (*models.StudentProfile, error)
}

// StudentService serves the student-facing timetable, dashboard and profile.
type StudentService struct {
	lessons    studentLessonRepository
	attendance studentAttendanceRepository
	profiles   studentProfileRepository
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// NewStudentService constructs the student service. Dates default to today
// in loc.
func NewStudentService(lessons studentLessonRepository, attendance studentAttendanceRepository, profiles studentProfileRepository, logger *zap.Logger, loc *time.Location) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &StudentService{
		lessons:    lessons,
		attendance: attendance,
		profiles:   profiles,
		logger:     logger,
		location:   loc,
		now:        time.Now,
	}
}

// Timetable lists the caller's lessons on date, ordered by start time.
func (s *StudentService) Timetable(ctx context.Context, identity *models.Identity, date string) ([]models.TimetableEntry, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.timetable(ctx, identity, day)
}

func (s *StudentService) timetable(ctx context.Context, identity *models.Identity, day time.Time) ([]models.TimetableEntry, error) {
	rows, err := s.lessons.Timetable(ctx, identity.GroupID, identity.SubjectID, day.Weekday().String(), schedule.FormatDate(day))
	if err != nil {
		s.logger.Error("load timetable failed", zap.Int64("group_id", identity.GroupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}

	entries := make([]models.TimetableEntry, 0, len(rows))
	for _, row := range rows {
		lesson := models.Lesson{ID: row.LessonID, DayOfWeek: row.DayOfWeek, StartDate: row.StartDate, EndDate: row.EndDate}
		rec, err := lesson.Recurrence()
		if err != nil {
			s.logger.Warn("skipping lesson with invalid dates", zap.Int64("lesson_id", row.LessonID), zap.Error(err))
			continue
		}
		if schedule.Occurs(rec, day) {
			entries = append(entries, row)
		}
	}
	return entries, nil
}

// Dashboard summarises the caller's attendance and lessons on date.
func (s *StudentService) Dashboard(ctx context.Context, identity *models.Identity, date string) (*models.StudentDashboard, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	counts, err := s.attendance.CountsForStudent(ctx, identity.SubjectID)
	if err != nil {
		s.logger.Error("load attendance counts failed", zap.Int64("student_id", identity.SubjectID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	subjects, err := s.lessons.CountDistinctSubjects(ctx, identity.GroupID)
	if err != nil {
		s.logger.Error("count subjects failed", zap.Int64("group_id", identity.GroupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	lessons, err := s.timetable(ctx, identity, day)
	if err != nil {
		return nil, err
	}

	classes := make([]models.TodayClass, 0, len(lessons))
	for _, l := range lessons {
		room := l.Location
		if room == "" {
			room = roomFallback
		}
		classes = append(classes, models.TodayClass{Time: clockHHMM(l.StartTime), Subject: l.Subject, Room: room})
	}

	return &models.StudentDashboard{
		AttendanceRate:  AttendanceRate(counts),
		SubjectCount:    subjects,
		UpcomingLessons: len(lessons),
		TodayClasses:    classes,
	}, nil
}

// Profile returns the caller's profile.
func (s *StudentService) Profile(ctx context.Context, identity *models.Identity) (*models.StudentProfile, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}
	profile, err := s.profiles.Profile(ctx, identity.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("load profile failed", zap.Int64("student_id", identity.SubjectID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	return profile, nil
}

// AttendanceRate renders present/total as a rounded percentage.
func AttendanceRate(c models.AttendanceCounts) string {
	if c.Total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(c.Present)*100/float64(c.Total))))
}

func (s *StudentService) resolveDate(raw string) (time.Time, error) {
	if raw == "" {
		return schedule.Day(s.now().In(s.location)), nil
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "date must be a valid YYYY-MM-DD date")
	}
	return d, nil
}

// clockHHMM trims seconds from a HH:MM[:SS] time.
func clockHHMM(raw string) string {
	if len(raw) >= 5 {
		return raw[:5]
	}
	return raw
}
