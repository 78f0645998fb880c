package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmaster/internal/activity"
	"taskmaster/internal/auth"
	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/filter"
	"taskmaster/internal/handler"
	"taskmaster/internal/middleware"
	"taskmaster/internal/repository"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Users    *handler.UserHandler
	Projects *handler.ProjectHandler
	Tasks    *handler.TaskHandler
	Comments *handler.CommentHandler
}

func Init(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	if cfg.RunMigrations {
		if err := db.Migrate(cfg); err != nil {
			return nil, fmt.Errorf("❌ %w", err)
		}
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	log.Println("✅ Connected to database")

	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("❌ failed to register validators: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gdb)
	tokenRepo := repository.NewTokenRepository(gdb)
	projectRepo := repository.NewProjectRepository(gdb)
	membershipRepo := repository.NewMembershipRepository(gdb)
	taskRepo := repository.NewTaskRepository(gdb)
	commentRepo := repository.NewCommentRepository(gdb)
	activityRepo := repository.NewActivityRepository(gdb)

	standardPages := filter.Pagination{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	largePages := filter.Pagination{DefaultSize: cfg.ActivityPageSize, MaxSize: cfg.MaxPageSize}

	// Initialize services
	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	recorder := activity.NewRecorder(activityRepo, activity.LogReporter{}, largePages)
	authService := service.NewAuthService(userRepo, tokenRepo, tokens)
	projectService := service.NewProjectService(projectRepo, membershipRepo, userRepo, recorder, standardPages)
	taskService := service.NewTaskService(projectRepo, membershipRepo, taskRepo, recorder, standardPages)
	commentService := service.NewCommentService(projectRepo, membershipRepo, taskRepo, commentRepo, recorder, largePages)

	// Initialize handlers
	handlers := Handlers{
		Users:    handler.NewUserHandler(authService),
		Projects: handler.NewProjectHandler(projectService),
		Tasks:    handler.NewTaskHandler(taskService),
		Comments: handler.NewCommentHandler(commentService),
	}

	return &Server{
		Engine: NewRouter(handlers, tokens),
		DB:     gdb,
		Config: cfg,
	}, nil
}

// NewRouter wires the routes. Everything except registration, login, token
// refresh and the docs requires a bearer access token.
func NewRouter(h Handlers, verifier middleware.TokenVerifier) *gin.Engine {
	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Users.Register)
	api.POST("/auth/login", h.Users.Login)
	api.POST("/auth/token/refresh", h.Users.Refresh)

	// Protected routes - require authentication
	authorized := api.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(verifier))
	{
		authorized.POST("/auth/logout", h.Users.Logout)
		authorized.GET("/auth/user", h.Users.Me)

		// Project routes
		authorized.POST("/projects", h.Projects.Create)
		authorized.GET("/projects", h.Projects.GetAll)
		authorized.GET("/projects/:id", h.Projects.GetByID)
		authorized.PUT("/projects/:id", h.Projects.Update)
		authorized.DELETE("/projects/:id", h.Projects.Delete)
		authorized.GET("/projects/:id/members", h.Projects.Members)
		authorized.POST("/projects/:id/members", h.Projects.AddMember)
		authorized.DELETE("/projects/:id/members/:user_id", h.Projects.RemoveMember)
		authorized.GET("/projects/:id/activity", h.Projects.Activity)

		// Task routes
		authorized.POST("/tasks", h.Tasks.Create)
		authorized.GET("/tasks", h.Tasks.GetAll)
		authorized.GET("/tasks/:id", h.Tasks.GetByID)
		authorized.PUT("/tasks/:id", h.Tasks.Update)
		authorized.DELETE("/tasks/:id", h.Tasks.Delete)
		authorized.POST("/tasks/:id/assign", h.Tasks.AssignUser)
		authorized.DELETE("/tasks/:id/assign", h.Tasks.UnassignUser)
		authorized.POST("/tasks/:id/change_status", h.Tasks.ChangeStatus)

		// Comment routes
		authorized.GET("/tasks/:id/comments", h.Comments.GetAll)
		authorized.POST("/tasks/:id/comments", h.Comments.Create)
		authorized.PUT("/comments/:id", h.Comments.Update)
		authorized.DELETE("/comments/:id", h.Comments.Delete)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("✅ Server exited properly")
}
