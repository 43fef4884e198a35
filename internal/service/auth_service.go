package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
)

// MinSigningKeyBytes is the HS256 key length below which secrets are stretched.
const MinSigningKeyBytes = 32

// devSigningSecret is used when no secret is configured.
const devSigningSecret = "attendance-api-development-secret"

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (bool, error)
}

type authAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// AuthConfig defines configuration for token issuance and verification.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	Audience   []string
}

// AuthService issues and verifies access tokens.
type AuthService struct {
	students  authStudentRepository
	admins    authAdminRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	key       []byte
	now       func() time.Time
}

// NewAuthService constructs an AuthService and derives the signing key.
func NewAuthService(students authStudentRepository, admins authAdminRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiration <= 0 {
		config.Expiration = time.Hour
	}
	if config.Secret == "" {
		logger.Warn("JWT_SECRET is empty, using the development signing secret")
	}
	key, stretched := DeriveSigningKey(config.Secret)
	if stretched {
		logger.Warn("JWT secret shorter than minimum key length, stretching with SHA-256",
			zap.Int("min_bytes", MinSigningKeyBytes))
	}
	return &AuthService{
		students:  students,
		admins:    admins,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
		key:       key,
		now:       time.Now,
	}
}

// DeriveSigningKey turns the configured secret into an HS256 key. An empty
// secret falls back to the development secret; secrets shorter than
// MinSigningKeyBytes are replaced by their SHA-256 digest.
func DeriveSigningKey(secret string) ([]byte, bool) {
	if secret == "" {
		secret = devSigningSecret
	}
	if len(secret) >= MinSigningKeyBytes {
		return []byte(secret), false
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], true
}

// Verify validates a bearer credential and returns the identity it carries.
// When expected roles are given the claim role must be one of them.
func (s *AuthService) Verify(token string, expected ...models.Role) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErrors.ErrMissingCredential
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if len(s.config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.config.Audience[0]))
	}

	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidCredential.Code, appErrors.ErrInvalidCredential.Status, appErrors.ErrInvalidCredential.Message)
	}

	role := claims.Data.Role
	if role == "" && claims.Data.StudentID > 0 {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleAdmin {
		return nil, appErrors.ErrMalformedClaim
	}
	if len(expected) > 0 && !containsRole(expected, role) {
		return nil, appErrors.ErrInsufficientRole
	}

	identity := &models.Identity{
		Email:    claims.Data.Email,
		Username: claims.Data.Username,
		Role:     role,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if role == models.RoleStudent {
		if claims.Data.StudentID <= 0 || claims.Data.GroupID <= 0 {
			return nil, appErrors.ErrMalformedClaim
		}
		identity.SubjectID = claims.Data.StudentID
		identity.GroupID = claims.Data.GroupID
	} else if id, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
		identity.SubjectID = id
	}
	return identity, nil
}

// StudentLogin authenticates a student by email and password.
func (s *AuthService) StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "email and password are required")
	}

	student, err := s.students.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(string(models.RoleStudent), false)
			return nil, appErrors.ErrInvalidCredentials
		}
		s.logger.Error("student lookup failed", zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) != nil {
		s.metrics.RecordLogin(string(models.RoleStudent), false)
		return nil, appErrors.ErrInvalidCredentials
	}

	data := models.ClaimData{
		StudentID: student.ID,
		GroupID:   student.GroupID,
		Email:     student.Email,
		Role:      models.RoleStudent,
	}
	resp, err := s.issue(data, strconv.FormatInt(student.ID, 10))
	if err != nil {
		return nil, err
	}
	resp.StudentID = student.ID
	resp.GroupID = student.GroupID
	s.metrics.RecordLogin(string(models.RoleStudent), true)
	return resp, nil
}

// AdminLogin authenticates an administrator.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "username and password are required")
	}

	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(string(models.RoleAdmin), false)
			return nil, appErrors.ErrInvalidCredentials
		}
		s.logger.Error("admin lookup failed", zap.Error(err))
		return nil, appErrors.Persistence(err, "")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		s.metrics.RecordLogin(string(models.RoleAdmin), false)
		return nil, appErrors.ErrInvalidCredentials
	}

	resp, err := s.issue(models.ClaimData{Username: admin.Username, Role: models.RoleAdmin}, strconv.FormatInt(admin.ID, 10))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogin(string(models.RoleAdmin), true)
	return resp, nil
}

// ChangePassword replaces the password of the authenticated student.
func (s *AuthService) ChangePassword(ctx context.Context, identity *models.Identity, req models.ChangePasswordRequest) error {
	if !identity.IsStudent() {
		return appErrors.ErrInsufficientRole
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	updated, err := s.students.UpdatePassword(ctx, identity.SubjectID, string(hash))
	if err != nil {
		s.logger.Error("password update failed", zap.Int64("student_id", identity.SubjectID), zap.Error(err))
		return appErrors.Persistence(err, "")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func (s *AuthService) issue(data models.ClaimData, subject string) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			Audience:  s.config.Audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		Role:      data.Role,
		IssuedAt:  issuedAt,
	}, nil
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
