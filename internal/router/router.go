package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/unisms/university-api/internal/handler"
	"github.com/unisms/university-api/internal/middleware"
	"github.com/unisms/university-api/internal/models"
	"github.com/unisms/university-api/internal/service"
	"github.com/unisms/university-api/pkg/config"
	appErrors "github.com/unisms/university-api/pkg/errors"
	"github.com/unisms/university-api/pkg/logger"
	corsmiddleware "github.com/unisms/university-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unisms/university-api/pkg/middleware/requestid"
	"github.com/unisms/university-api/pkg/response"
)

// Handlers bundles every HTTP handler mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Departments *handler.DepartmentHandler
	Courses     *handler.CourseHandler
	Semesters   *handler.SemesterHandler
	Enrollments *handler.EnrollmentHandler
	Assignments *handler.CourseAssignmentHandler
	Grades      *handler.GradeHandler
	Metrics     *handler.MetricsHandler
}

// New assembles the gin engine with the full route table. Role gates
// are declared here; ownership rules are enforced by the services.
func New(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metricsSvc *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := middleware.JWT(authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	instructorOrAdmin := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	studentOnly := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(cfg.APIPrefix)

	api.POST("/register/student", h.Auth.RegisterStudent)
	api.POST("/register/instructor", authed, adminOnly, h.Auth.RegisterInstructor)
	api.POST("/register/admin", authed, adminOnly, h.Auth.RegisterAdmin)
	api.POST("/login", h.Auth.Login)

	// /users/list must be declared before /users/:id so "list" is not
	// captured as an id.
	api.GET("/users", h.Users.List)
	api.GET("/users/list", authed, adminOnly, h.Users.Roster)
	api.GET("/users/list/export", authed, adminOnly, h.Users.ExportRoster)
	api.GET("/users/:id", authed, h.Users.Get)
	api.PUT("/users/:id", authed, adminOnly, h.Users.Update)
	api.DELETE("/users/:id", authed, adminOnly, h.Users.Delete)

	departments := api.Group("/departments")
	{
		departments.GET("", h.Departments.List)
		departments.GET("/:id", h.Departments.Get)
		departments.POST("", authed, adminOnly, h.Departments.Create)
		departments.PUT("/:id", authed, adminOnly, h.Departments.Update)
		departments.DELETE("/:id", authed, adminOnly, h.Departments.Delete)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.GET("/:id", h.Courses.Get)
		courses.POST("", authed, adminOnly, h.Courses.Create)
		courses.PUT("/:id", authed, adminOnly, h.Courses.Update)
		courses.DELETE("/:id", authed, adminOnly, h.Courses.Delete)
	}

	semesters := api.Group("/semesters")
	{
		semesters.GET("", h.Semesters.List)
		semesters.GET("/:id", h.Semesters.Get)
		semesters.POST("", authed, adminOnly, h.Semesters.Create)
		semesters.PUT("/:id", authed, adminOnly, h.Semesters.Update)
		semesters.DELETE("/:id", authed, adminOnly, h.Semesters.Delete)
	}

	enrollments := api.Group("/enrollments", authed)
	{
		enrollments.POST("", h.Enrollments.Create)
		enrollments.GET("", h.Enrollments.List)
		enrollments.GET("/course/:courseId", instructorOrAdmin, h.Enrollments.ListByCourse)
		enrollments.GET("/:id", h.Enrollments.Get)
		enrollments.PUT("/:id", h.Enrollments.Update)
		enrollments.DELETE("/:id", h.Enrollments.Delete)
	}

	assignments := api.Group("/course-assignments", authed)
	{
		assignments.POST("", adminOnly, h.Assignments.Create)
		assignments.GET("", adminOnly, h.Assignments.List)
		assignments.GET("/my-assignments", instructorOrAdmin, h.Assignments.ListMine)
		assignments.DELETE("/:id", adminOnly, h.Assignments.Delete)
	}

	grades := api.Group("/grades", authed, instructorOrAdmin)
	{
		grades.POST("", h.Grades.Submit)
		grades.GET("/enrollment/:id", h.Grades.GetByEnrollment)
	}

	student := api.Group("/student", authed, studentOnly)
	{
		student.GET("/grades", h.Grades.Report)
		student.GET("/grades/export", h.Grades.ExportTranscript)
	}

	return r
}
