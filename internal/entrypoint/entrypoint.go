// Package entrypoint wires the long-running server: database, task queue,
// crawl scheduler and HTTP API.
package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/audit"
	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawl"
	"github.com/mrlokans/imgmanager/internal/database"
	auditRepo "github.com/mrlokans/imgmanager/internal/database/audit"
	"github.com/mrlokans/imgmanager/internal/database/media"
	"github.com/mrlokans/imgmanager/internal/database/visited"
	http_controllers "github.com/mrlokans/imgmanager/internal/http"
	"github.com/mrlokans/imgmanager/internal/library"
	"github.com/mrlokans/imgmanager/internal/scheduler"
	"github.com/mrlokans/imgmanager/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to listen: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// stop background work before the listener so in-flight crawls can finish
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	slog.Info("server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	slog.Info("starting img-manager", "version", version, "data_dir", cfg.Global.DataDir)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	mediaRepo := media.NewRepository(db.DB)
	visitedRepo := visited.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB))

	crawlService := crawl.NewService(
		cfg.Crawl,
		cfg.Global.DataDir,
		visitedRepo,
		library.NewService(mediaRepo),
		auditService,
	)

	routerCfg := http_controllers.RouterConfig{
		Database:  db,
		Version:   version,
		Media:     mediaRepo,
		Visited:   visitedRepo,
		Runs:      auditService,
		Templates: crawlService,
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				slog.Error("failed to close task client", "error", err)
			}
		}()

		taskClient.Register(
			tasks.NewCrawlTemplateQueue(crawlService),
			tasks.NewPruneHistoryQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Audit.RetentionDays > 0 {
			if _, err := taskClient.EnqueuePrune(cfg.Audit.RetentionDays); err != nil {
				slog.Warn("failed to enqueue history prune", "error", err)
			}
		}

		routerCfg.CrawlQueue = taskClient
		routerCfg.TaskStatus = taskClient
	} else {
		slog.Info("task queue disabled, crawls cannot be enqueued over HTTP")
	}

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	crawlScheduler := scheduler.NewCrawlScheduler(cfg.Schedule, crawlService)
	if err := crawlScheduler.Start(schedCtx); err != nil {
		return err
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		crawlScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}
