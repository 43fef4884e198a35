// Package router assembles the gin engine from handlers and middleware.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/geoattend/attendance-api/internal/handler"
	"github.com/geoattend/attendance-api/internal/middleware"
	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/internal/service"
	"github.com/geoattend/attendance-api/pkg/config"
	"github.com/geoattend/attendance-api/pkg/logger"
	corsmiddleware "github.com/geoattend/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/geoattend/attendance-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Student    *handler.StudentHandler
	Report     *handler.ReportHandler
	Roster     *handler.RosterHandler
	Lesson     *handler.LessonHandler
	Dashboard  *handler.DashboardHandler
	Metrics    *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Verifier middleware.TokenVerifier
	Metrics  *service.MetricsService
	Limiter  *middleware.LoginLimiter
	Logger   *zap.Logger
}

// New builds the engine with global middleware and all routes.
func New(cfg *config.Config, h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth", opts.Limiter.Handler())
	auth.POST("/student/login", h.Auth.StudentLogin)
	auth.POST("/admin/login", h.Auth.AdminLogin)

	student := api.Group("/student", middleware.JWT(opts.Verifier), middleware.RequireRoles(models.RoleStudent))
	student.POST("/attendance", h.Attendance.Mark)
	student.GET("/attendance/status", h.Attendance.Status)
	student.GET("/attendance/history", h.Attendance.History)
	student.GET("/timetable", h.Student.Timetable)
	student.GET("/dashboard", h.Student.Dashboard)
	student.GET("/profile", h.Student.Profile)
	student.POST("/password", h.Auth.ChangePassword)

	admin := api.Group("/admin", middleware.AdminGuard(opts.Verifier, cfg.JWT.AdminAuthRequired))
	admin.GET("/dashboard", h.Dashboard.Admin)

	admin.GET("/reports/attendance", h.Report.Attendance)
	admin.GET("/reports/attendance/export", h.Report.Export)

	admin.GET("/groups", h.Roster.ListGroups)
	admin.POST("/groups", h.Roster.CreateGroup)
	admin.DELETE("/groups/:id", h.Roster.DeleteGroup)
	admin.GET("/groups/:id/students", h.Roster.GroupStudents)
	admin.GET("/groups/:id/subjects", h.Report.Subjects)

	admin.GET("/students", h.Roster.ListStudents)
	admin.POST("/students", h.Roster.CreateStudent)
	admin.DELETE("/students/:id", h.Roster.DeleteStudent)

	admin.GET("/teachers", h.Roster.ListTeachers)
	admin.POST("/teachers", h.Roster.CreateTeacher)
	admin.DELETE("/teachers/:id", h.Roster.DeleteTeacher)

	admin.GET("/locations", h.Roster.ListLocations)
	admin.POST("/locations", h.Roster.CreateLocation)
	admin.DELETE("/locations/:id", h.Roster.DeleteLocation)

	admin.GET("/subjects", h.Roster.ListSubjects)

	admin.GET("/lessons", h.Lesson.List)
	admin.POST("/lessons", h.Lesson.Create)
	admin.DELETE("/lessons/:id", h.Lesson.Delete)

	return r
}
