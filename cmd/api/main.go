package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/config"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	appHTTP "github.com/cmlabs-hris/wfh-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/sqlite"
	calendarService "github.com/cmlabs-hris/wfh-backend-go/internal/service/calendar"
	employeeService "github.com/cmlabs-hris/wfh-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/service/file"
	reportService "github.com/cmlabs-hris/wfh-backend-go/internal/service/report"
	wfhService "github.com/cmlabs-hris/wfh-backend-go/internal/service/wfh"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "wfh-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requestRepo, employeeRepo, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize repositories: ", err)
	}
	defer closeDB()

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	case "memory":
		fileStorage = storage.NewMemoryStorage(cfg.Storage.BaseURL)
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	if cfg.Database.EmployeesSeedPath != "" {
		if err := importEmployees(ctx, employeeSvc, cfg.Database.EmployeesSeedPath); err != nil {
			log.Fatal("Failed to import employee directory: ", err)
		}
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	fileService := file.NewFileService(fileStorage)
	wfhSvc := wfhService.NewWfhService(requestRepo, employeeRepo, fileService, time.Now)
	calendarSvc := calendarService.NewCalendarService(requestRepo, time.Now)
	reportSvc := reportService.NewReportService(requestRepo, time.Now)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			FrontendURL: cfg.App.FrontendURL,
			Logger:      logger,
			LogLevel:    cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewWfhHandler(wfhSvc),
		appHTTP.NewCalendarHandler(calendarSvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "db_driver", cfg.Database.Driver, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}

// openRepositories builds the repositories for DB_DRIVER. The returned func
// releases the underlying connection.
func openRepositories(ctx context.Context, cfg *config.Config) (wfh.RequestRepository, employee.EmployeeRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgresql.NewWfhRequestRepository(db), postgresql.NewEmployeeRepository(db), db.Close, nil

	case "sqlite":
		store, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		closeStore := func() {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close sqlite database", "error", err)
			}
		}
		return sqlite.NewWfhRequestRepository(store), sqlite.NewEmployeeRepository(store), closeStore, nil

	case "memory":
		store := memory.NewStore()
		slog.Warn("using in-memory repositories; data is lost on restart")
		return memory.NewWfhRequestRepository(store), memory.NewEmployeeRepository(store), func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Database.Driver)
}

func importEmployees(ctx context.Context, svc employee.EmployeeService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := svc.Import(ctx, f)
	if err != nil {
		return err
	}
	slog.Info("employee directory loaded", "path", path, "count", n)
	return nil
}
