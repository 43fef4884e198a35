package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/internal/repository"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
)

type rosterGroupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type rosterStudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type rosterTeacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type rosterLocationRepository interface {
	List(ctx context.Context) ([]models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type rosterSubjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// RosterRepositories groups the stores managed by RosterService.
type RosterRepositories struct {
	Groups    rosterGroupRepository
	Students  rosterStudentRepository
	Teachers  rosterTeacherRepository
	Locations rosterLocationRepository
	Subjects  rosterSubjectRepository
}

// RosterService implements admin management of groups, students, teachers,
// locations and subjects.
type RosterService struct {
	repos     RosterRepositories
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs the service. Student writes invalidate cached
// reports through cache.
func NewRosterService(repos RosterRepositories, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repos: repos, cache: cache, validator: validate, logger: logger}
}

// ListGroups returns every group.
func (s *RosterService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repos.Groups.List(ctx)
	return orEmpty(groups), s.storeErr("list groups", err)
}

// CreateGroup adds a group.
func (s *RosterService) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "group_name is required")
	}
	group := &models.Group{Name: req.Name}
	if err := s.repos.Groups.Create(ctx, group); err != nil {
		return nil, s.storeErr("create group", err)
	}
	return group, nil
}

// DeleteGroup removes a group that has no students or lessons.
func (s *RosterService) DeleteGroup(ctx context.Context, id int64) error {
	return s.delete(ctx, "group", id, s.repos.Groups.Delete)
}

// GroupStudents lists the students of a group.
func (s *RosterService) GroupStudents(ctx context.Context, groupID int64) ([]models.Student, error) {
	if groupID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "group_id is required")
	}
	students, err := s.repos.Students.ListByGroup(ctx, groupID)
	return orEmpty(students), s.storeErr("list group students", err)
}

// ListStudents returns every student with the group name.
func (s *RosterService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.repos.Students.List(ctx)
	return orEmpty(students), s.storeErr("list students", err)
}

// CreateStudent registers a student with a bcrypt-hashed password.
func (s *RosterService) CreateStudent(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid student payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	student := &models.Student{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		GroupID:      req.GroupID,
		PasswordHash: string(hash),
	}
	if err := s.repos.Students.Create(ctx, student); err != nil {
		return nil, s.storeErr("create student", err)
	}
	s.invalidateReports(ctx, ReportCachePattern(student.GroupID))
	return student, nil
}

// DeleteStudent removes a student and their attendance.
func (s *RosterService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.delete(ctx, "student", id, s.repos.Students.Delete); err != nil {
		return err
	}
	// the student's group is gone with the row
	s.invalidateReports(ctx, "report:group:*")
	return nil
}

// ListTeachers returns every teacher.
func (s *RosterService) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repos.Teachers.List(ctx)
	return orEmpty(teachers), s.storeErr("list teachers", err)
}

// CreateTeacher adds a teacher.
func (s *RosterService) CreateTeacher(ctx context.Context, req models.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid teacher payload")
	}
	teacher := &models.Teacher{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		SubjectID: req.SubjectID,
	}
	if err := s.repos.Teachers.Create(ctx, teacher); err != nil {
		return nil, s.storeErr("create teacher", err)
	}
	return teacher, nil
}

// DeleteTeacher removes a teacher without lessons.
func (s *RosterService) DeleteTeacher(ctx context.Context, id int64) error {
	return s.delete(ctx, "teacher", id, s.repos.Teachers.Delete)
}

// ListLocations returns every location.
func (s *RosterService) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := s.repos.Locations.List(ctx)
	return orEmpty(locations), s.storeErr("list locations", err)
}

// CreateLocation adds a geofence centre.
func (s *RosterService) CreateLocation(ctx context.Context, req models.CreateLocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "name, latitude and longitude are required")
	}
	location := &models.Location{Name: strings.TrimSpace(req.Name), Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := s.repos.Locations.Create(ctx, location); err != nil {
		return nil, s.storeErr("create location", err)
	}
	return location, nil
}

// DeleteLocation removes a location without lessons.
func (s *RosterService) DeleteLocation(ctx context.Context, id int64) error {
	return s.delete(ctx, "location", id, s.repos.Locations.Delete)
}

// ListSubjects returns every subject.
func (s *RosterService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repos.Subjects.List(ctx)
	return orEmpty(subjects), s.storeErr("list subjects", err)
}

func (s *RosterService) delete(ctx context.Context, kind string, id int64, del func(context.Context, int64) (bool, error)) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidInput, kind+" id must be a positive integer")
	}
	deleted, err := del(ctx, id)
	if err != nil {
		return s.storeErr("delete "+kind, err)
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
	}
	return nil
}

func (s *RosterService) invalidateReports(ctx context.Context, pattern string) {
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// storeErr maps repository failures to API errors. A nil err stays nil.
func (s *RosterService) storeErr(op string, err error) error {
	return storeError(s.logger, op, err)
}

func storeError(logger *zap.Logger, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record already exists")
	case errors.Is(err, repository.ErrInUse):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record is referenced by other records")
	default:
		logger.Error("roster operation failed", zap.String("op", op), zap.Error(err))
		return appErrors.Persistence(err, "")
	}
}

func invalid(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, message)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
