package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/api"
	"github.com/akademi/edutrack/internal/app"
	"github.com/akademi/edutrack/internal/app/maintenance"
	iauth "github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/database"
	"github.com/akademi/edutrack/internal/services"
	"github.com/akademi/edutrack/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edutrack-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{
		Secret: cfg.Auth.JWT.Secret,
		TTL:    cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("initialise token service: %w", err)
	}

	activitySvc, err := services.NewActivityLogService(db)
	if err != nil {
		return fmt.Errorf("initialise activity log service: %w", err)
	}
	perfSvc, err := services.NewPerformanceLogService(db)
	if err != nil {
		return fmt.Errorf("initialise performance log service: %w", err)
	}
	apiLogSvc, err := services.NewApiLogService(db)
	if err != nil {
		return fmt.Errorf("initialise api log service: %w", err)
	}
	errorLogSvc, err := services.NewErrorLogService(db)
	if err != nil {
		return fmt.Errorf("initialise error log service: %w", err)
	}
	frontendLogSvc, err := services.NewFrontendLogService(db)
	if err != nil {
		return fmt.Errorf("initialise frontend log service: %w", err)
	}
	defer func() {
		activitySvc.Flush()
		perfSvc.Flush()
		apiLogSvc.Flush()
		errorLogSvc.Flush()
		frontendLogSvc.Flush()
	}()

	cleaner := maintenance.NewCleaner(activitySvc, perfSvc, apiLogSvc, errorLogSvc, frontendLogSvc,
		maintenance.WithRetentionDays(cfg.Logs.RetentionDays),
		maintenance.WithSchedule(cfg.Logs.CleanupSchedule),
	)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(db, tokens, cfg, api.Services{
		Activity:    activitySvc,
		Performance: perfSvc,
		API:         apiLogSvc,
		Errors:      errorLogSvc,
		Frontend:    frontendLogSvc,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.StoreConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	if email := strings.TrimSpace(cfg.Admin.Email); email != "" && cfg.Admin.Password != "" {
		if err := database.SeedAdminUser(db, email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
