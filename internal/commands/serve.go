package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/safeledger/dashboard/internal/api"
	"github.com/safeledger/dashboard/internal/api/handler"
	"github.com/safeledger/dashboard/internal/api/middleware"
	"github.com/safeledger/dashboard/internal/buildinfo"
	"github.com/safeledger/dashboard/internal/core/service"
	mongodb "github.com/safeledger/dashboard/internal/infrastructure/db/mongo"
	redisdb "github.com/safeledger/dashboard/internal/infrastructure/db/redis"
	"github.com/safeledger/dashboard/internal/infrastructure/ledgerapi"
	"github.com/safeledger/dashboard/internal/infrastructure/queue"
	"github.com/safeledger/dashboard/internal/pkg/config"
	"github.com/safeledger/dashboard/pkg/logger"

	_ "github.com/safeledger/dashboard/docs"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, config.Load())
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "safeledger-dashboard",
		Version: buildinfo.Version,
	})

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer mongodb.Disconnect(mongoClient)

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	auditRepo := mongodb.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not created")
	}

	// --- Audit workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Services ---
	backend := ledgerapi.New(ledgerapi.Config{BaseURL: cfg.Ledger.BaseURL, Timeout: cfg.Ledger.Timeout}, logger.Component("ledgerapi"))

	scopeSvc := service.NewScopeService(redisdb.NewScopeRepository(rdb, cfg.Session.TTL), logger.Component("scope"))
	sessionSvc := service.NewSessionService(backend, redisdb.NewSessionRepository(rdb, cfg.Session.TTL), scopeSvc, logger.Component("session"))
	activitySvc := service.NewActivityService(redisdb.NewBannerStore(rdb, cfg.View.BannerTTL), dispatcher, auditRepo, logger.Component("activity"))
	postingSvc := service.NewPostingService(backend, sessionSvc, scopeSvc, activitySvc, cfg.Session.TTL, logger.Component("postings"))
	unsubscribe := scopeSvc.Subscribe(postingSvc.OnScopeChange)
	defer unsubscribe()
	dashboardSvc := service.NewDashboardService(postingSvc, cfg.View.TopAccounts)
	directorySvc := service.NewDirectoryService(backend, backend, sessionSvc, activitySvc, logger.Component("directory"))

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:          log,
		Tokens:       middleware.NewSessionTokens(cfg.Session.Secret, cfg.Session.TTL),
		SecureCookie: cfg.Session.CookieSecure,
		Sessions:     sessionSvc,
		Scope:        scopeSvc,
		Postings:     postingSvc,
		Views:        dashboardSvc,
		Directory:    directorySvc,
		Activity:     activitySvc,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("version", buildinfo.Version).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
