package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniplan/timetable-api/api/swagger"
	"github.com/uniplan/timetable-api/internal/handler"
	"github.com/uniplan/timetable-api/internal/middleware"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/internal/repository"
	"github.com/uniplan/timetable-api/internal/service"
	"github.com/uniplan/timetable-api/pkg/cache"
	"github.com/uniplan/timetable-api/pkg/config"
	"github.com/uniplan/timetable-api/pkg/database"
	"github.com/uniplan/timetable-api/pkg/export"
	"github.com/uniplan/timetable-api/pkg/logger"
	corsmiddleware "github.com/uniplan/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplan/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description University timetable service with automatic weekly schedule generation
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	audienceRepo := repository.NewAudienceRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	runRepo := repository.NewGenerationRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, teacherRepo, studentRepo, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	audienceSvc := service.NewAudienceService(audienceRepo, validate, logr)
	templateSvc := service.NewTemplateService(templateRepo, subjectRepo, groupRepo, teacherRepo, validate, logr)
	rosterSvc := service.NewRosterService(teacherRepo, studentRepo, groupRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(lessonRepo, cacheRepo, cfg.Cache, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, cacheRepo, validate, logr)
	generatorSvc := service.NewScheduleGeneratorService(templateRepo, audienceRepo, lessonRepo, runRepo, cacheRepo, metricsSvc, cfg.Generator, logr)
	exportSvc := service.NewExportService(scheduleSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	audienceHandler := handler.NewAudienceHandler(audienceSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, generatorSvc, exportSvc, metricsSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	users := protected.Group("/users")
	{
		users.GET("", adminOnly, userHandler.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
		users.POST("", adminOnly, userHandler.Create)
		users.PUT("/:id", adminOnly, userHandler.Update)
		users.DELETE("/:id", adminOnly, userHandler.Deactivate)
	}

	groups := protected.Group("/groups")
	{
		groups.GET("", groupHandler.List)
		groups.GET("/:id", groupHandler.Get)
		groups.POST("", adminOnly, groupHandler.Create)
		groups.PUT("/:id", adminOnly, groupHandler.Update)
		groups.DELETE("/:id", adminOnly, groupHandler.Delete)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", subjectHandler.List)
		subjects.GET("/:id", subjectHandler.Get)
		subjects.POST("", adminOnly, subjectHandler.Create)
		subjects.PUT("/:id", adminOnly, subjectHandler.Update)
		subjects.DELETE("/:id", adminOnly, subjectHandler.Delete)
	}

	audiences := protected.Group("/audiences")
	{
		audiences.GET("", audienceHandler.List)
		audiences.GET("/:id", audienceHandler.Get)
		audiences.POST("", adminOnly, audienceHandler.Create)
		audiences.PUT("/:id", adminOnly, audienceHandler.Update)
		audiences.DELETE("/:id", adminOnly, audienceHandler.Delete)
	}

	templates := protected.Group("/templates")
	{
		templates.GET("", staff, templateHandler.List)
		templates.GET("/:id", staff, templateHandler.Get)
		templates.POST("", adminOnly, templateHandler.Create)
		templates.PUT("/:id", adminOnly, templateHandler.Update)
		templates.DELETE("/:id", adminOnly, templateHandler.Delete)
	}

	protected.GET("/teachers", rosterHandler.ListTeachers)
	protected.GET("/students", staff, rosterHandler.ListStudents)
	protected.PUT("/students/:id", adminOnly, rosterHandler.ReassignStudent)

	schedule := protected.Group("/schedule")
	{
		schedule.GET("", scheduleHandler.List)
		schedule.POST("/generate", adminOnly, scheduleHandler.Generate)
		schedule.GET("/runs", adminOnly, scheduleHandler.ListRuns)
		schedule.GET("/runs/:id", adminOnly, scheduleHandler.GetRun)
		schedule.GET("/export", scheduleHandler.Export)
	}

	lessons := protected.Group("/lessons")
	{
		lessons.GET("/:id", lessonHandler.Get)
		lessons.POST("", adminOnly, lessonHandler.Create)
		lessons.PUT("/:id", adminOnly, lessonHandler.Update)
		lessons.DELETE("/:id", adminOnly, lessonHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
