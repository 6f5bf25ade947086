package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/codeyatra/query-engine-api/api/swagger"
	"github.com/codeyatra/query-engine-api/internal/handler"
	"github.com/codeyatra/query-engine-api/internal/middleware"
	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	"github.com/codeyatra/query-engine-api/internal/service"
	"github.com/codeyatra/query-engine-api/pkg/cache"
	"github.com/codeyatra/query-engine-api/pkg/config"
	"github.com/codeyatra/query-engine-api/pkg/database"
	"github.com/codeyatra/query-engine-api/pkg/logger"
	corsmiddleware "github.com/codeyatra/query-engine-api/pkg/middleware/cors"
	reqidmiddleware "github.com/codeyatra/query-engine-api/pkg/middleware/requestid"
)

// @title Query Engine API
// @version 1.0.0
// @description Query lifecycle and feedback engine for the student Q&A app
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	queryRepo := repository.NewQueryRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr, cfg.Audit)
	matcher := service.NewSimilarityMatcher(cfg.Intake.SimilarityThreshold)
	moderation := service.NewModerationFilter(cfg.Intake.ExtraBadWords, cfg.Intake.ModerationSpamThreshold, logr)
	relevance := service.NewRelevanceChecker(cfg.Intake.SubjectValidation, cfg.Intake.SubjectThreshold)
	intakeSvc := service.NewIntakeService(courseRepo, queryRepo, matcher, moderation, relevance, auditSvc, metricsSvc, validate, logr, cfg.Intake.SimilarityCandidates)
	querySvc := service.NewQueryService(queryRepo, cacheRepo, metricsSvc, validate, logr, cfg.FAQ)
	ratingSvc := service.NewRatingService(ratingRepo, queryRepo, cacheRepo, metricsSvc, validate, logr, cfg.Ratings)
	notifSvc := service.NewNotificationService(notifRepo, logr, cfg.Notifications)
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	courseSvc := service.NewCourseService(courseRepo, userRepo, cacheRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, cacheRepo, validate, logr)
	exportSvc := service.NewExportService(queryRepo, nil, nil, logr)

	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditSvc.Start(auditCtx)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	queryHandler := handler.NewQueryHandler(intakeSvc, querySvc)
	ratingHandler := handler.NewRatingHandler(ratingSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	adminHandler := handler.NewAdminHandler(userSvc, courseSvc, auditSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, authSvc, authHandler, queryHandler, ratingHandler, notifHandler, courseHandler, adminHandler, exportHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown", "error", err)
	}

	stopAudit()
	auditSvc.Stop()
}

func registerRoutes(
	r *gin.Engine,
	authSvc *service.AuthService,
	auth *handler.AuthHandler,
	queries *handler.QueryHandler,
	ratings *handler.RatingHandler,
	notifications *handler.NotificationHandler,
	courses *handler.CourseHandler,
	admin *handler.AdminHandler,
	exports *handler.ExportHandler,
) {
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/register", auth.Register)

	authed := r.Group("/", middleware.JWT(authSvc))
	{
		authed.GET("auth/me", auth.Me)

		authed.GET("courses", courses.List)
		authed.GET("courses/:id", courses.Get)

		// The mobile client keeps its whole query surface under
		// /queries. Routes with an id directly after /queries would
		// collide with these static segments in gin's tree, so the
		// answer and per-query rating paths put the literal first.
		authed.GET("queries/course/:id/faq", queries.FAQ)
		authed.GET("queries/faq/all", queries.FAQAll)
		authed.GET("queries/notifications", notifications.List)
		authed.PATCH("queries/notifications/:id/read", notifications.MarkRead)
		authed.GET("queries/rating/:id", ratings.QueryRating)
		authed.GET("queries/teacher/:id/rating", ratings.TeacherRating)
	}

	students := r.Group("/", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		students.POST("queries", queries.Submit)
		students.POST("queries/rate", ratings.Rate)
		students.GET("queries/course/:id", queries.MyQueries)
		students.GET("queries/course/:id/answered", queries.MyAnswered)
	}

	teachers := r.Group("/teacher", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	{
		teachers.GET("/courses", courses.Teaching)
		teachers.GET("/queries", queries.TeacherInbox)
		teachers.GET("/queries/pending", queries.TeacherPending)
		teachers.GET("/queries/export", exports.QueryLog)
		teachers.GET("/courses/:id/students", queries.CourseStudents)
		teachers.GET("/courses/:id/students/:studentId/queries", queries.StudentThread)
	}

	teacherAnswer := r.Group("/", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	{
		teacherAnswer.PATCH("queries/answer/:id", queries.Answer)
	}

	admins := r.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admins.GET("/teachers", admin.ListTeachers)
		admins.POST("/teachers", admin.CreateTeacher)
		admins.DELETE("/teachers/:id", admin.DeleteTeacher)
		admins.DELETE("/students/:id", admin.DeleteStudent)
		admins.POST("/courses", admin.CreateCourse)
		admins.DELETE("/courses/:id", admin.DeleteCourse)
		admins.GET("/courses/:id/intake-events", admin.CourseIntakeEvents)
	}
}
