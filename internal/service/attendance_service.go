package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/geo"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

const alreadyPresentMessage = "already marked present"

type attendanceRepository interface {
	GetStatus(ctx context.Context, studentID, lessonID int64, date string) (*models.AttendanceStatus, error)
	Upsert(ctx context.Context, record models.AttendanceRecord, date string) (bool, error)
	History(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error)
}

type attendanceLessonRepository interface {
	FindSchedule(ctx context.Context, id int64) (*models.LessonSchedule, error)
}

// AttendancePolicy tunes geofence and clock evaluation.
type AttendancePolicy struct {
	RadiusMeters float64
	Location     *time.Location
}

// AttendanceService decides and records attendance marks.
type AttendanceService struct {
	repo    attendanceRepository
	lessons attendanceLessonRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	policy  AttendancePolicy
	now     func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, lessons attendanceLessonRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, policy AttendancePolicy) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.RadiusMeters <= 0 {
		policy.RadiusMeters = geo.DefaultRadiusMeters
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &AttendanceService{
		repo:    repo,
		lessons: lessons,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		policy:  policy,
		now:     time.Now,
	}
}

// Mark evaluates a mark attempt and persists it when allowed. Checks run in a
// fixed order and the first failing one decides the error.
func (s *AttendanceService) Mark(ctx context.Context, identity *models.Identity, req models.MarkAttendanceRequest) (*models.MarkResult, error) {
	result, err := s.mark(ctx, identity, req)
	switch {
	case err != nil:
		s.metrics.RecordMark(appErrors.FromError(err).Code)
	case result.Written:
		s.metrics.RecordMark(OutcomeWritten)
	default:
		s.metrics.RecordMark(OutcomeAlreadyPresent)
	}
	return result, err
}

func (s *AttendanceService) mark(ctx context.Context, identity *models.Identity, req models.MarkAttendanceRequest) (*models.MarkResult, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}

	if req.LessonID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "lesson_id must be a positive integer")
	}
	date, err := schedule.ParseDate(req.AttendanceDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "attendance_date must be a valid YYYY-MM-DD date")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "status must be present or absent")
	}

	existing, err := s.repo.GetStatus(ctx, identity.SubjectID, req.LessonID, req.AttendanceDate)
	if err != nil {
		s.logger.Error("load attendance status failed", zap.Int64("lesson_id", req.LessonID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if existing != nil && *existing == models.AttendanceStatusPresent && status != models.AttendanceStatusPresent {
		return alreadyPresent(), nil
	}

	lesson, err := s.lessons.FindSchedule(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		s.logger.Error("load lesson failed", zap.Int64("lesson_id", req.LessonID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}

	if lesson.GroupID != identity.GroupID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "lesson does not belong to your group")
	}

	if err := checkSchedule(lesson, date); err != nil {
		return nil, err
	}

	record := models.AttendanceRecord{
		StudentID:      identity.SubjectID,
		LessonID:       lesson.ID,
		AttendanceDate: date,
		Status:         status,
	}

	if status == models.AttendanceStatusPresent {
		if req.Latitude == nil || req.Longitude == nil {
			return nil, appErrors.ErrMissingLocation
		}
		point := geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}
		if point.Lat < -90 || point.Lat > 90 || point.Lon < -180 || point.Lon > 180 {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "latitude or longitude out of range")
		}
		distance := geo.DistanceMeters(lesson.Point(), point)
		if distance > s.policy.RadiusMeters {
			s.logger.Debug("mark rejected by geofence",
				zap.Int64("lesson_id", lesson.ID),
				zap.Float64("distance_m", distance),
				zap.Float64("radius_m", s.policy.RadiusMeters))
			return nil, appErrors.ErrTooFar
		}
		record.Latitude = req.Latitude
		record.Longitude = req.Longitude
	}

	now := s.now().In(s.policy.Location)
	if err := checkTiming(lesson, status, date, now); err != nil {
		return nil, err
	}
	record.MarkedAt = now.UTC()

	applied, err := s.repo.Upsert(ctx, record, req.AttendanceDate)
	if err != nil {
		s.logger.Error("save attendance failed",
			zap.Int64("student_id", record.StudentID),
			zap.Int64("lesson_id", record.LessonID),
			zap.String("date", req.AttendanceDate),
			zap.Error(err))
		return nil, appErrors.Persistence(err, "failed to save attendance")
	}
	if !applied {
		return alreadyPresent(), nil
	}

	if err := s.cache.Invalidate(ctx, ReportCachePattern(lesson.GroupID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Int64("group_id", lesson.GroupID), zap.Error(err))
	}

	return &models.MarkResult{
		Status:  status,
		Message: "attendance marked as " + string(status),
		Written: true,
	}, nil
}

// Status returns the caller's current status for a lesson occurrence.
func (s *AttendanceService) Status(ctx context.Context, identity *models.Identity, lessonID int64, date string) (*models.AttendanceStatusResponse, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}
	if lessonID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "lesson_id must be a positive integer")
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "date must be a valid YYYY-MM-DD date")
	}

	status, err := s.repo.GetStatus(ctx, identity.SubjectID, lessonID, date)
	if err != nil {
		s.logger.Error("load attendance status failed", zap.Int64("lesson_id", lessonID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	return &models.AttendanceStatusResponse{LessonID: lessonID, Date: date, Status: status}, nil
}

// History lists the caller's attendance, newest first.
func (s *AttendanceService) History(ctx context.Context, identity *models.Identity) ([]models.AttendanceHistoryRow, error) {
	if !identity.IsStudent() {
		return nil, appErrors.ErrInsufficientRole
	}
	rows, err := s.repo.History(ctx, identity.SubjectID)
	if err != nil {
		s.logger.Error("load attendance history failed", zap.Int64("student_id", identity.SubjectID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if rows == nil {
		rows = []models.AttendanceHistoryRow{}
	}
	return rows, nil
}

// checkSchedule rejects dates outside the lesson window or on another weekday.
func checkSchedule(lesson *models.LessonSchedule, date time.Time) error {
	rec, err := lesson.Recurrence()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lesson schedule is invalid")
	}
	if date.Before(rec.StartDate) || date.After(rec.EndDate) {
		return appErrors.Clone(appErrors.ErrOutOfSchedule, "date is outside the lesson period")
	}
	weekday, ok := schedule.ParseWeekday(rec.DayOfWeek)
	if !ok || date.Weekday() != weekday {
		return appErrors.Clone(appErrors.ErrOutOfSchedule, "lesson does not take place on this weekday")
	}
	return nil
}

// checkTiming applies the clock policy. now must already be in the policy
// location; lesson times are read as wall-clock times of that location.
func checkTiming(lesson *models.LessonSchedule, status models.AttendanceStatus, date, now time.Time) error {
	start, err := schedule.ParseClock(lesson.StartTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lesson schedule is invalid")
	}
	end, err := schedule.ParseClock(lesson.EndTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lesson schedule is invalid")
	}

	today := schedule.Day(now)
	clock := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second

	if status == models.AttendanceStatusPresent {
		if !date.Equal(today) || clock < start || clock > end {
			return appErrors.Clone(appErrors.ErrWrongTiming, "attendance can only be marked during the lesson")
		}
		return nil
	}

	if date.After(today) {
		return appErrors.Clone(appErrors.ErrWrongTiming, "absence cannot be marked for a future date")
	}
	if date.Equal(today) && clock <= end {
		return appErrors.Clone(appErrors.ErrWrongTiming, "absence can only be marked after the lesson ends")
	}
	return nil
}

func alreadyPresent() *models.MarkResult {
	return &models.MarkResult{Status: models.AttendanceStatusPresent, Message: alreadyPresentMessage}
}
