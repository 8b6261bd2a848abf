package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"coursehub/internal/config"
	"coursehub/internal/middleware"
	"coursehub/internal/models"
	"coursehub/internal/notify"
	"coursehub/internal/repository"
	"coursehub/internal/service"
	"coursehub/internal/storage"
	"coursehub/internal/workflow"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	flow        *workflow.Service
	db          *pgxpool.Pool
	cache       *redis.Client
	store       *storage.ObjectStore
	users       *repository.UserRepository
	courses     *repository.CourseRepository
	apps        *repository.ApplicationRepository
	enrollments *repository.EnrollmentRepository
	documents   *repository.DocumentRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	dispatcher := notify.NewStreamDispatcher(cache, cfg.Notify.Stream, log)
	flow := workflow.NewService(userRepo, courseRepo, appRepo, dispatcher, log)
	auth := service.NewAuthService(userRepo, dispatcher, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		flow:        flow,
		db:          db,
		cache:       cache,
		store:       store,
		users:       userRepo,
		courses:     courseRepo,
		apps:        appRepo,
		enrollments: enrollmentRepo,
		documents:   documentRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)

		me := v1.Group("/auth")
		me.Use(middleware.Auth(h.cfg, h.users))
		me.GET("/me", h.Me)
	}

	courses := v1.Group("/courses")
	courses.GET("", h.ListCourses)
	courses.Use(middleware.Auth(h.cfg, h.users))
	{
		courses.POST("", middleware.RequireRoles(models.UserRoleInstructor), middleware.RequireActiveProfile(), h.CreateCourse)
		courses.GET("/mine", middleware.RequireRoles(models.UserRoleInstructor), h.MyCourses)
		courses.POST("/:id/apply", middleware.RequireRoles(models.UserRoleLearner), middleware.RequireActiveProfile(), h.Apply)
	}

	learner := v1.Group("")
	learner.Use(middleware.Auth(h.cfg, h.users), middleware.RequireRoles(models.UserRoleLearner))
	{
		learner.GET("/applications/mine", h.MyApplications)
		learner.POST("/applications/:id/documents", h.UploadDocument)
		learner.GET("/enrollments/mine", h.MyEnrollments)
	}

	payments := v1.Group("/payments")
	payments.Use(middleware.Webhook(h.cfg.Security.PaymentWebhookToken))
	payments.POST("/confirm", h.ConfirmPayment)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users),
		middleware.RequireRoles(models.UserRoleSuperAdmin),
	)
	{
		admin.GET("/instructors/pending", h.PendingInstructors)
		admin.POST("/instructors/:id/status", h.InstructorStatus)
		admin.GET("/courses/pending", h.PendingCourses)
		admin.POST("/courses/:id/status", h.CourseStatus)
		admin.GET("/applications", h.ListApplications)
		admin.POST("/applications/:id/status", h.ApplicationStatus)
		admin.GET("/applications/:id/documents", h.ListDocuments)
		admin.GET("/documents/:id", h.DownloadDocument)
	}
}
