package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

type lessonRepository interface {
	List(ctx context.Context) ([]models.LessonSchedule, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// LessonService manages weekly lessons.
type LessonService struct {
	repo      lessonRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs the service and registers the schedule
// validators on validate.
func NewLessonService(repo lessonRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	RegisterScheduleValidators(validate)
	return &LessonService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// RegisterScheduleValidators adds the weekday, isodate and clock tags.
func RegisterScheduleValidators(validate *validator.Validate) {
	validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := schedule.ParseWeekday(fl.Field().String())
		return ok
	})
	validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDate(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})
}

// List returns every lesson with names and location.
func (s *LessonService) List(ctx context.Context) ([]models.LessonSchedule, error) {
	lessons, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "list lessons", err)
	}
	return orEmpty(lessons), nil
}

// Create validates and stores a lesson. The weekday is stored in canonical
// form.
func (s *LessonService) Create(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid lesson payload")
	}
	weekday, _ := schedule.ParseWeekday(req.DayOfWeek)

	start, _ := schedule.ParseDate(req.StartDate)
	end, _ := schedule.ParseDate(req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "start_date must not be after end_date")
	}
	from, _ := schedule.ParseClock(req.StartTime)
	to, _ := schedule.ParseClock(req.EndTime)
	if from >= to {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "start_time must be before end_time")
	}

	lesson := &models.Lesson{
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		GroupID:    req.GroupID,
		LocationID: req.LocationID,
		DayOfWeek:  weekday.String(),
		StartTime:  strings.TrimSpace(req.StartTime),
		EndTime:    strings.TrimSpace(req.EndTime),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, storeError(s.logger, "create lesson", err)
	}
	s.invalidate(ctx, lesson.GroupID)
	return lesson, nil
}

// Delete removes a lesson and its attendance.
func (s *LessonService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidInput, "lesson id must be a positive integer")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(s.logger, "delete lesson", err)
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	if err := s.cache.Invalidate(ctx, "report:group:*"); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (s *LessonService) invalidate(ctx context.Context, groupID int64) {
	if err := s.cache.Invalidate(ctx, ReportCachePattern(groupID)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Int64("group_id", groupID), zap.Error(err))
	}
}
