package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/hroffice/absence-backend-go/internal/config"
	appHTTP "github.com/hroffice/absence-backend-go/internal/handler/http"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
	"github.com/hroffice/absence-backend-go/internal/pkg/jwt"
	"github.com/hroffice/absence-backend-go/internal/pkg/sse"
	"github.com/hroffice/absence-backend-go/internal/repository/postgresql"
	absenceService "github.com/hroffice/absence-backend-go/internal/service/absence"
	notificationService "github.com/hroffice/absence-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       logLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "absence-backend"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), int32(cfg.Database.MaxConns), int32(cfg.Database.MinConns))
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	absenceTypeRepo := postgresql.NewAbsenceTypeRepository(db)
	absenceRequestRepo := postgresql.NewAbsenceRequestRepository(db)
	absenceQuotaRepo := postgresql.NewAbsenceQuotaRepository(db)
	approvalStepRepo := postgresql.NewApprovalStepRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	approverResolver := postgresql.NewApproverResolver(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()

	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, logger, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: time.Duration(cfg.Notification.FlushInterval) * time.Millisecond,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notificationSvc.Stop()

	lifecycleSvc := absenceService.NewService(
		txManager,
		absenceTypeRepo,
		absenceRequestRepo,
		absenceQuotaRepo,
		approvalStepRepo,
		holidayRepo,
		employeeRepo,
		approverResolver,
		notificationSvc,
	)

	absenceHandler := appHTTP.NewAbsenceHandler(lifecycleSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)

	router := appHTTP.NewRouter(logger, jwtService, absenceHandler, notificationHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("server starting", "port", cfg.App.Port)
	if err := http.ListenAndServe(port, router); err != nil {
		logger.Error("server error", "error", err)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
