package main

import (
	"fmt"
	"log"

	_ "github.com/unisms/university-api/api/swagger"
	"github.com/unisms/university-api/internal/handler"
	"github.com/unisms/university-api/internal/repository"
	"github.com/unisms/university-api/internal/router"
	"github.com/unisms/university-api/internal/service"
	"github.com/unisms/university-api/pkg/cache"
	"github.com/unisms/university-api/pkg/config"
	"github.com/unisms/university-api/pkg/database"
	"github.com/unisms/university-api/pkg/logger"
)

// @title University Administration API
// @version 1.0.0
// @description Role-based backend for departments, courses, semesters, enrollments and grades
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := service.NewValidator()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)

	authSvc := service.NewAuthService(userRepo, departmentRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "university-api",
	})
	userSvc := service.NewUserService(userRepo, departmentRepo, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, cacheRepo, cfg.Cache.TTL, metricsSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, departmentRepo, semesterRepo, cacheRepo, cfg.Cache.TTL, metricsSvc, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, courseRepo, cacheRepo, cfg.Cache.TTL, metricsSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, assignmentRepo, validate, logr)
	assignmentSvc := service.NewCourseAssignmentService(assignmentRepo, userRepo, courseRepo, validate, logr)
	gradeSvc := service.NewGradeService(enrollmentRepo, assignmentRepo, validate, logr)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Users:       handler.NewUserHandler(userSvc),
		Departments: handler.NewDepartmentHandler(departmentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Semesters:   handler.NewSemesterHandler(semesterSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Assignments: handler.NewCourseAssignmentHandler(assignmentSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, db),
	}

	r := router.New(cfg, logr, authSvc, metricsSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
