package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	appointmentService "github.com/jwalitptl/clinic-queue-api/internal/appointment"
	catalogService "github.com/jwalitptl/clinic-queue-api/internal/catalog"
	"github.com/jwalitptl/clinic-queue-api/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-queue-api/internal/handler/appointment"
	catalogHandler "github.com/jwalitptl/clinic-queue-api/internal/handler/catalog"
	healthHandler "github.com/jwalitptl/clinic-queue-api/internal/handler/health"
	selectionHandler "github.com/jwalitptl/clinic-queue-api/internal/handler/selection"
	"github.com/jwalitptl/clinic-queue-api/internal/middleware"
	"github.com/jwalitptl/clinic-queue-api/internal/notification"
	queueService "github.com/jwalitptl/clinic-queue-api/internal/queue"
	"github.com/jwalitptl/clinic-queue-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-queue-api/internal/router"
	"github.com/jwalitptl/clinic-queue-api/internal/selection"
	"github.com/jwalitptl/clinic-queue-api/pkg/auth"
	"github.com/jwalitptl/clinic-queue-api/pkg/logger"
	"github.com/jwalitptl/clinic-queue-api/pkg/metrics"
	"github.com/jwalitptl/clinic-queue-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("clinic_queue", "api")

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	catalogRepo := postgres.NewCatalogRepository(db)

	// Notifications go to the front desk inbox; no relay means no mail.
	var notifier appointmentService.Notifier = notification.NopNotifier{}
	if cfg.SMTP.Host != "" {
		notifier = notification.NewEmailNotifier(notification.SMTPConfig{
			Host:           cfg.SMTP.Host,
			Port:           cfg.SMTP.Port,
			Username:       cfg.SMTP.Username,
			Password:       cfg.SMTP.Password,
			From:           cfg.SMTP.From,
			FrontDeskInbox: cfg.SMTP.FrontDeskInbox,
		})
	}

	// Services
	cacheTTL := time.Duration(cfg.Queue.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	catalogSvc := catalogService.NewService(catalogRepo, cacheTTL)
	selectionMgr := selection.NewManager(catalogSvc)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		appointmentService.NewStateMachine(),
		notifier,
		appMetrics,
		appLogger,
	)
	queueSvc := queueService.NewService(appointmentRepo, appMetrics, cfg.Queue.SlotMinutes)

	// Middleware and handlers
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	v := validator.New()

	r := router.NewRouter(
		authMiddleware,
		appointmentHandler.NewHandler(appointmentSvc, queueSvc, v),
		catalogHandler.NewHandler(catalogSvc),
		selectionHandler.NewHandler(selectionMgr),
		healthHandler.NewHandler(db),
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_queue_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
