package main

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medimind/reminder-dispatch/internal/config"
	"github.com/medimind/reminder-dispatch/internal/handler"
	"github.com/medimind/reminder-dispatch/internal/health"
	"github.com/medimind/reminder-dispatch/internal/identity"
	"github.com/medimind/reminder-dispatch/internal/infra/deliveryrecorder"
	"github.com/medimind/reminder-dispatch/internal/infra/push"
	"github.com/medimind/reminder-dispatch/internal/infra/repository"
	"github.com/medimind/reminder-dispatch/internal/infra/taskqueue"
	"github.com/medimind/reminder-dispatch/internal/observability/logging"
	"github.com/medimind/reminder-dispatch/internal/observability/metrics"
	"github.com/medimind/reminder-dispatch/internal/observability/middleware"
	"github.com/medimind/reminder-dispatch/internal/service/delivery"
	"github.com/medimind/reminder-dispatch/internal/service/schedule"
	"github.com/medimind/reminder-dispatch/internal/service/token"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configuration is loaded before observability so the configured log
	// level reaches the handler.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	// Validate configuration
	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	reminderMetrics, err := metrics.NewReminderMetrics()
	if err != nil {
		slog.Error("failed to initialize reminder metrics", slog.String("error", err.Error()))
		return 1
	}

	// Initialize delivery result recorder (InfluxDB for local, BigQuery for gcloud)
	recorderCfg := deliveryrecorder.LoadConfig()
	deliveryRecorder, err := deliveryrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize delivery recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := deliveryRecorder.Close(); err != nil {
			slog.Warn("failed to close delivery recorder", slog.String("error", err.Error()))
		}
	}()

	firestoreClient, err := repository.NewFirestoreClient(
		ctx,
		cfg.Firestore.ProjectID,
		cfg.Firestore.DatabaseID,
		cfg.Firestore.CredentialsFile,
	)
	if err != nil {
		slog.Error("failed to connect firestore",
			slog.String("project", cfg.Firestore.ProjectID),
			slog.String("database", cfg.Firestore.DatabaseID),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		if err := firestoreClient.Close(); err != nil {
			slog.Warn("failed to close firestore client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("firestore connected",
		slog.String("project", cfg.Firestore.ProjectID),
		slog.String("database", cfg.Firestore.DatabaseID),
	)

	reminderRepo := repository.NewReminderRepository(firestoreClient)
	userRepo := repository.NewUserRepository(firestoreClient)

	taskQueueClient, err := taskqueue.NewCloudTasksClient(ctx, taskqueue.CloudTasksConfig{
		ProjectID:       cfg.TaskQueue.ProjectID,
		LocationID:      cfg.TaskQueue.LocationID,
		QueueID:         cfg.TaskQueue.QueueID,
		TargetURL:       cfg.TaskQueue.TargetURL,
		MaxRetries:      cfg.TaskQueue.MaxRetries,
		CredentialsFile: cfg.Firestore.CredentialsFile,
	})
	if err != nil {
		slog.Error("failed to initialize task queue", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := taskQueueClient.Close(); err != nil {
			slog.Warn("failed to close task queue client", slog.String("error", err.Error()))
		}
	}()

	if err := taskQueueClient.VerifyQueue(ctx); err != nil {
		slog.Error("task queue verification failed",
			slog.String("queue", cfg.TaskQueue.QueueID),
			slog.String("error", err.Error()),
		)
		return 1
	}

	slog.Info("task queue initialized",
		slog.String("project", cfg.TaskQueue.ProjectID),
		slog.String("location", cfg.TaskQueue.LocationID),
		slog.String("queue", cfg.TaskQueue.QueueID),
	)

	fcmSender, err := push.NewFCMSender(ctx, push.FCMConfig{
		ProjectID:       cfg.Firestore.ProjectID,
		CredentialsFile: cfg.Firestore.CredentialsFile,
		IconURL:         cfg.Push.IconURL,
		ImageURL:        cfg.Push.ImageURL,
	})
	if err != nil {
		slog.Error("failed to initialize push sender", slog.String("error", err.Error()))
		return 1
	}

	resolver := identity.FromConfig(cfg.Identity)

	scheduleService := schedule.NewService(reminderRepo, taskQueueClient, cfg.TimeLocation, reminderMetrics)
	deliveryService := delivery.NewService(reminderRepo, userRepo, fcmSender, deliveryRecorder, reminderMetrics)
	tokenService := token.NewService(userRepo, reminderMetrics)

	reminderHandler := handler.NewReminderHandler(scheduleService, cfg.TimeLocation)
	callbackHandler := handler.NewCallbackHandler(deliveryService)
	tokenHandler := handler.NewTokenHandler(tokenService)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("reminder-dispatch"),
		TracerName:  "github.com/medimind/reminder-dispatch/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	r.SetHTMLTemplate(template.Must(template.ParseFS(handler.TemplatesFS, "templates/*.html")))

	// Health check endpoints
	healthChecker := health.NewChecker(firestoreClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// The submission page and the Cloud Tasks callback stay outside the
	// identity middleware: the callback authenticates via the task queue,
	// not via a caller token.
	r.GET("/", handler.HandleHome)
	r.POST("/send-reminder", callbackHandler.HandleSendReminder)

	authed := r.Group("/")
	authed.Use(identity.Middleware(resolver))
	{
		authed.POST("/submit", reminderHandler.HandleSubmit)
		authed.POST("/save-token", tokenHandler.HandleSaveToken)
		authed.POST("/cancel-reminder", reminderHandler.HandleCancel)
		authed.GET("/reminders", reminderHandler.HandleList)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("database", cfg.Firestore.DatabaseID),
			slog.String("queue", cfg.TaskQueue.QueueID),
			slog.String("time_location", cfg.TimeLocation.String()),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
