package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/export"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

type reportStudentRepository interface {
	ListByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
}

type reportLessonRepository interface {
	ListByGroup(ctx context.Context, groupID int64, subject string) ([]models.LessonSchedule, error)
	SubjectNamesByGroup(ctx context.Context, groupID int64) ([]string, error)
}

type reportAttendanceRepository interface {
	ListForLessons(ctx context.Context, lessonIDs []int64, from, to string) ([]models.AttendanceMark, error)
}

// ReportFile is a rendered report export.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService aggregates lesson occurrences and attendance into sessions.
type ReportService struct {
	students   reportStudentRepository
	lessons    reportLessonRepository
	attendance reportAttendanceRepository
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewReportService constructs the service.
func NewReportService(students reportStudentRepository, lessons reportLessonRepository, attendance reportAttendanceRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:   students,
		lessons:    lessons,
		attendance: attendance,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// ReportCachePattern matches every cached report of a group.
func ReportCachePattern(groupID int64) string {
	return fmt.Sprintf("report:group:%d:*", groupID)
}

func reportCacheKey(req models.ReportRequest) string {
	return fmt.Sprintf("report:group:%d:from:%s:to:%s:subject:%s",
		req.GroupID, req.StartDate, req.EndDate, url.QueryEscape(req.Subject))
}

// occurrence is one concrete session of a lesson.
type occurrence struct {
	lessonID int64
	subject  string
	date     time.Time
}

// Build returns one row per lesson occurrence in the filter, lessons in id
// order and dates ascending, with every student of the group. The boolean
// reports a cache hit.
func (s *ReportService) Build(ctx context.Context, req models.ReportRequest) ([]models.SessionRow, bool, error) {
	from, to, err := parseReportRange(req)
	if err != nil {
		return nil, false, err
	}

	// Cache failures are logged by CacheService and fall through to Postgres.
	key := reportCacheKey(req)
	var cached []models.SessionRow
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	start := time.Now()
	rows, err := s.build(ctx, req, from, to)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveReport(time.Since(start), len(rows))

	_ = s.cache.Set(ctx, key, rows, s.cacheTTL) // logged by CacheService
	return rows, false, nil
}

func (s *ReportService) build(ctx context.Context, req models.ReportRequest, from, to *time.Time) ([]models.SessionRow, error) {
	students, err := s.students.ListByGroup(ctx, req.GroupID)
	if err != nil {
		s.logger.Error("load report students failed", zap.Int64("group_id", req.GroupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if len(students) == 0 {
		return []models.SessionRow{}, nil
	}

	lessons, err := s.lessons.ListByGroup(ctx, req.GroupID, req.Subject)
	if err != nil {
		s.logger.Error("load report lessons failed", zap.Int64("group_id", req.GroupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}

	var (
		occurrences []occurrence
		lessonIDs   []int64
		minDate     time.Time
		maxDate     time.Time
	)
	for _, lesson := range lessons {
		rec, err := lesson.Recurrence()
		if err != nil {
			s.logger.Warn("skipping lesson with invalid dates", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		found := false
		for date := range schedule.Expand(rec, from, to) {
			occurrences = append(occurrences, occurrence{lessonID: lesson.ID, subject: lesson.SubjectName, date: date})
			if minDate.IsZero() || date.Before(minDate) {
				minDate = date
			}
			if date.After(maxDate) {
				maxDate = date
			}
			found = true
		}
		if found {
			lessonIDs = append(lessonIDs, lesson.ID)
		}
	}
	if len(occurrences) == 0 {
		return []models.SessionRow{}, nil
	}

	marks, err := s.attendance.ListForLessons(ctx, lessonIDs, schedule.FormatDate(minDate), schedule.FormatDate(maxDate))
	if err != nil {
		s.logger.Error("load report attendance failed", zap.Int64("group_id", req.GroupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}

	type markKey struct {
		lessonID  int64
		date      string
		studentID int64
	}
	index := make(map[markKey]models.AttendanceStatus, len(marks))
	for _, m := range marks {
		index[markKey{m.LessonID, m.AttendanceDate, m.StudentID}] = m.Status
	}

	rows := make([]models.SessionRow, 0, len(occurrences))
	for _, occ := range occurrences {
		date := schedule.FormatDate(occ.date)
		session := make([]models.SessionEntry, 0, len(students))
		for _, st := range students {
			status := models.StatusNotMarked
			if v, ok := index[markKey{occ.lessonID, date, st.ID}]; ok {
				status = string(v)
			}
			session = append(session, models.SessionEntry{StudentID: st.ID, Student: st.FullName(), Status: status})
		}
		rows = append(rows, models.SessionRow{Date: date, Subject: occ.subject, Session: session})
	}
	return rows, nil
}

// Export renders the report as csv, pdf or xlsx with one line per session
// and student.
func (s *ReportService) Export(ctx context.Context, req models.ReportRequest, format string) (*ReportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "format must be csv, pdf or xlsx")
	}
	rows, _, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Attendance report, group %d", req.GroupID),
		Headers: []string{"Date", "Subject", "Student", "Status"},
	}
	for _, row := range rows {
		for _, entry := range row.Session {
			data.Rows = append(data.Rows, []string{row.Date, row.Subject, entry.Student, entry.Status})
		}
	}

	body, err := f.Renderer().Render(data)
	if err != nil {
		s.logger.Error("render report failed", zap.String("format", string(f)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("attendance_group_%d.%s", req.GroupID, f),
		ContentType: f.ContentType(),
		Data:        body,
	}, nil
}

// SubjectsByGroup lists the distinct subject names taught to a group.
func (s *ReportService) SubjectsByGroup(ctx context.Context, groupID int64) ([]string, error) {
	if groupID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "group_id is required")
	}
	names, err := s.lessons.SubjectNamesByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("load group subjects failed", zap.Int64("group_id", groupID), zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func parseReportRange(req models.ReportRequest) (from, to *time.Time, err error) {
	if req.GroupID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "group_id is required")
	}
	if req.StartDate != "" {
		d, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "start_date must be a valid YYYY-MM-DD date")
		}
		from = &d
	}
	if req.EndDate != "" {
		d, err := schedule.ParseDate(req.EndDate)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "end_date must be a valid YYYY-MM-DD date")
		}
		to = &d
	}
	return from, to, nil
}
