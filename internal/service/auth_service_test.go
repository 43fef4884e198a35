package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
)

type mockAdminRepo struct {
	admins map[string]*models.Admin
	err    error
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.admins[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

var authNow = time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

type authFixture struct {
	svc      *AuthService
	students *mockStudentRepo
	admins   *mockAdminRepo
	metrics  *MetricsService
}

func newAuthFixture(t *testing.T, cfg AuthConfig) *authFixture {
	t.Helper()
	students := &mockStudentRepo{byEmail: map[string]*models.Student{
		"ada@example.com": {ID: 7, GroupID: 5, Email: "ada@example.com", PasswordHash: mustHash(t, "correct-horse")},
	}}
	admins := &mockAdminRepo{admins: map[string]*models.Admin{
		"root": {ID: 1, Username: "root", PasswordHash: mustHash(t, "admin-pass")},
	}}
	metrics := NewMetricsService()
	svc := NewAuthService(students, admins, nil, zap.NewNop(), metrics, cfg)
	svc.now = func() time.Time { return authNow }
	return &authFixture{svc: svc, students: students, admins: admins, metrics: metrics}
}

func signClaims(t *testing.T, key []byte, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validRegistered() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(authNow),
		ExpiresAt: jwt.NewNumericDate(authNow.Add(time.Hour)),
	}
}

func TestDeriveSigningKey(t *testing.T) {
	long := "0123456789abcdef0123456789abcdef"
	key, stretched := DeriveSigningKey(long)
	assert.False(t, stretched)
	assert.Equal(t, []byte(long), key)

	key, stretched = DeriveSigningKey("short")
	assert.True(t, stretched)
	assert.Len(t, key, MinSigningKeyBytes)
	again, _ := DeriveSigningKey("short")
	assert.Equal(t, key, again)

	key, _ = DeriveSigningKey("")
	assert.Equal(t, []byte(devSigningSecret), key)
}

func TestStudentLoginIssuesVerifiableToken(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "short", Expiration: time.Hour, Issuer: "attendance-api"})

	resp, err := f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.StudentID)
	assert.Equal(t, int64(5), resp.GroupID)
	assert.Equal(t, models.RoleStudent, resp.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	identity, err := f.svc.Verify(resp.Token, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.SubjectID)
	assert.Equal(t, int64(5), identity.GroupID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, authNow.Add(time.Hour), identity.ExpiresAt)
	assert.Equal(t, time.UTC, identity.ExpiresAt.Location())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.logins.WithLabelValues("student", "success")))
}

func TestVerifyReportsExpiryInUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("UTC+5", 5*60*60)
	t.Cleanup(func() { time.Local = local })

	f := newAuthFixture(t, AuthConfig{Secret: "secret"})
	resp, err := f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	identity, err := f.svc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), identity.ExpiresAt)
}

func TestStudentLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})

	_, err := f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.logins.WithLabelValues("student", "failure")))

	f.students.err = errors.New("db down")
	_, err = f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})

	resp, err := f.svc.AdminLogin(context.Background(), models.AdminLoginRequest{Username: "root", Password: "admin-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)

	identity, err := f.svc.Verify(resp.Token, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.SubjectID)
	assert.Equal(t, "root", identity.Username)

	_, err = f.svc.Verify(resp.Token, models.RoleStudent)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientRole)

	_, err = f.svc.AdminLogin(context.Background(), models.AdminLoginRequest{Username: "root", Password: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = f.svc.AdminLogin(context.Background(), models.AdminLoginRequest{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestVerifyRejectsMissingAndInvalidTokens(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})

	_, err := f.svc.Verify("   ")
	assert.ErrorIs(t, err, appErrors.ErrMissingCredential)

	_, err = f.svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)

	otherKey, _ := DeriveSigningKey("another-secret")
	forged := signClaims(t, otherKey, &models.JWTClaims{
		Data:             models.ClaimData{StudentID: 7, GroupID: 5, Role: models.RoleStudent},
		RegisteredClaims: validRegistered(),
	})
	_, err = f.svc.Verify(forged)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{
		Data:             models.ClaimData{StudentID: 7, GroupID: 5, Role: models.RoleStudent},
		RegisteredClaims: validRegistered(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = f.svc.Verify(none)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret", Expiration: time.Hour})

	resp, err := f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return authNow.Add(2 * time.Hour) }
	_, err = f.svc.Verify(resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)

	noExpiry := signClaims(t, f.svc.key, &models.JWTClaims{
		Data: models.ClaimData{StudentID: 7, GroupID: 5, Role: models.RoleStudent},
	})
	_, err = f.svc.Verify(noExpiry)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)
}

func TestVerifyRejectsMalformedClaims(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})

	cases := map[string]models.ClaimData{
		"unknown role":     {StudentID: 7, GroupID: 5, Role: "teacher"},
		"missing role":     {},
		"student no group": {StudentID: 7, Role: models.RoleStudent},
		"student zero id":  {GroupID: 5, Role: models.RoleStudent},
		"negative student": {StudentID: -1, GroupID: 5, Role: models.RoleStudent},
	}
	for name, data := range cases {
		token := signClaims(t, f.svc.key, &models.JWTClaims{Data: data, RegisteredClaims: validRegistered()})
		_, err := f.svc.Verify(token)
		assert.ErrorIs(t, err, appErrors.ErrMalformedClaim, name)
	}
}

func TestVerifyInfersStudentRoleFromLegacyClaims(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})

	token := signClaims(t, f.svc.key, &models.JWTClaims{
		Data:             models.ClaimData{StudentID: 7, GroupID: 5},
		RegisteredClaims: validRegistered(),
	})
	identity, err := f.svc.Verify(token, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, identity.Role)
}

func TestVerifyChecksIssuerAndAudience(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret", Issuer: "attendance-api", Audience: []string{"mobile"}})

	resp, err := f.svc.StudentLogin(context.Background(), models.StudentLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = f.svc.Verify(resp.Token)
	require.NoError(t, err)

	registered := validRegistered()
	registered.Issuer = "someone-else"
	registered.Audience = jwt.ClaimStrings{"mobile"}
	token := signClaims(t, f.svc.key, &models.JWTClaims{
		Data:             models.ClaimData{StudentID: 7, GroupID: 5, Role: models.RoleStudent},
		RegisteredClaims: registered,
	})
	_, err = f.svc.Verify(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredential)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t, AuthConfig{Secret: "secret"})
	identity := &models.Identity{SubjectID: 7, GroupID: 5, Role: models.RoleStudent}

	err := f.svc.ChangePassword(context.Background(), identity, models.ChangePasswordRequest{NewPassword: "short"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	err = f.svc.ChangePassword(context.Background(), identity, models.ChangePasswordRequest{NewPassword: "a-much-longer-secret"})
	require.NoError(t, err)
	require.Contains(t, f.students.updated, int64(7))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.students.updated[7]), []byte("a-much-longer-secret")))

	missing := &models.Identity{SubjectID: 99, GroupID: 5, Role: models.RoleStudent}
	err = f.svc.ChangePassword(context.Background(), missing, models.ChangePasswordRequest{NewPassword: "a-much-longer-secret"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	admin := &models.Identity{SubjectID: 1, Role: models.RoleAdmin}
	err = f.svc.ChangePassword(context.Background(), admin, models.ChangePasswordRequest{NewPassword: "a-much-longer-secret"})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientRole)
}
