package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/recaudoseguro/recaudo-api/docs" // Swagger docs
	"github.com/recaudoseguro/recaudo-api/internal/config"
	"github.com/recaudoseguro/recaudo-api/internal/database"
	"github.com/recaudoseguro/recaudo-api/internal/handlers"
	"github.com/recaudoseguro/recaudo-api/internal/jobs"
	"github.com/recaudoseguro/recaudo-api/internal/middleware"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/services"
	"github.com/recaudoseguro/recaudo-api/internal/storage"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Recaudo Seguro API
// @version 1.0
// @description REST API for microcredit payment routes and credit lifecycle management

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database schema migrated")
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)
	svcs.Job.Start(cfg.DefaultScanHour, cfg.Location)

	h := handlers.NewHandlers(svcs, store)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Providers and admins configure lending terms; collectors may read them
			protected.GET("/providers/:provider_id/settings", h.Settings.Show)
			protected.PUT("/providers/:provider_id/settings", h.Settings.Update)
			protected.POST("/commissions/resolve", h.Settings.ResolveCommission)

			protected.POST("/clients", h.Client.Create)
			protected.GET("/clients/:client_id", h.Client.Show)
			protected.POST("/clients/:client_id/reputation", h.Client.Reputation)

			collectors := protected.Group("/collectors/:collector_id")
			{
				collectors.GET("/clients", h.Client.IndexByCollector)
				collectors.GET("/route", h.Route.Show)
				collectors.GET("/route/export", h.Route.Export)
			}

			protected.GET("/credits", h.Credit.Index)
			protected.POST("/credits", h.Credit.Create)
			credit := protected.Group("/credits/:credit_id")
			{
				credit.GET("", h.Credit.Show)
				credit.GET("/payments", h.Credit.Payments)
				credit.POST("/payments", h.Credit.RegisterPayment)
				credit.POST("/missed_payment", h.Credit.MissedPayment)
				credit.POST("/agreement", h.Credit.Agreement)
				credit.GET("/late_charge", h.Credit.LateCharge)
				credit.GET("/total_debt", h.Credit.TotalDebt)
				credit.GET("/can_renew", h.Credit.CanRenew)
				credit.POST("/renew", h.Credit.Renew)
				credit.POST("/refinance", h.Credit.Refinance)
				credit.PUT("/schedule", h.Credit.Schedule)
				credit.POST("/accept", h.Credit.Accept)
				credit.POST("/default", h.Credit.Default)
				credit.GET("/contract", h.Credit.Contract)
				credit.GET("/history", h.Credit.History)
			}

			// Static route first so "me" is not matched as :user_id
			protected.PATCH("/users/me/change_password", h.User.ChangePassword)
			managers := protected.Group("/users")
			managers.Use(middleware.RequireRole(models.RoleAdmin, models.RoleProvider))
			{
				managers.GET("", h.User.Index)
				managers.POST("", h.User.Create)
				managers.GET("/:user_id", h.User.Show)
				managers.PUT("/:user_id/toggle_status", h.User.ToggleStatus)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
			}

			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/:name/run", h.Job.Run)
			}
		}
	}

	return router
}
