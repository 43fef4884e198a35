package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.JWT.AdminAuthRequired)
	assert.Equal(t, 50.0, cfg.Attendance.RadiusMeters)
	assert.Equal(t, time.UTC, cfg.Attendance.Location())
	assert.Equal(t, 5*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, 20, cfg.RateLimit.LoginPerMinute)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ADMIN_AUTH_REQUIRED", "off")
	v.Set("ATTENDANCE_RADIUS_METERS", -3)
	v.Set("JWT_EXPIRATION", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)
	assert.False(t, cfg.JWT.AdminAuthRequired)
	assert.Equal(t, 50.0, cfg.Attendance.RadiusMeters)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestAttendanceLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, AttendanceConfig{Timezone: "Mars/Olympus"}.Location())
}
