// Package server wires the gateway together: it opens the snapshot backend,
// restores state, builds the router and runs the webhook, the gRPC health
// endpoint and the keep-alive pinger until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/clock"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/keepalive"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/router"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/webhook"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gatekeeper/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	router  *router.Router
	webhook *webhook.Server
	health  *gs.HealthServer
	pinger  *keepalive.Pinger
}

// loader is implemented by every stateful service.
type loader interface {
	Load(ctx context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	level := parseLevel(c.LogLevel)
	logger := logging.NewJSONLogger(level)
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	return newApp(ctx, c, logger, clock.Real())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, clk clock.Clock) (*App, error) {

	codec, err := services.NewCodec(c.SnapshotCodec)
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.New(ctx, c, codec.Ext())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	persister := services.NewPersister(rm.Snapshots(), codec, logger)

	quota := services.NewQuotaTracker(c.MaxDaily, persister, logger)
	ledger := services.NewLockoutLedger(quota, persister, logger)
	codes := services.NewCodeRegistry(c.OneTimeCodeTTL, persister, logger)
	roles := services.NewRoleRegistry(c.AdminBindCode, c.SuperAdminCodes, ledger, persister, logger)

	for _, l := range []loader{quota, ledger, codes, roles} {
		if err := l.Load(ctx); err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("state restore error: %w", err)
		}
	}

	cat, err := catalog.Load(ctx, c.CatalogFile, logger)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	r := router.New(roles, ledger, quota, codes, cat, clk, logger)

	logger.Info(ctx, "state restored",
		"backend", c.StorageBackend, "codec", codec.Name(), "catalog_items", cat.Len())

	return &App{
		config:  c,
		logger:  logger,
		repos:   rm,
		router:  r,
		webhook: webhook.NewServer(c.EndpointAddrHTTP, r, clk, logger),
		health:  gs.NewHealthServer(c.EndpointAddrGRPC, logger),
		pinger:  keepalive.NewPinger(c.KeepAliveURL, c.KeepAliveInterval, logger),
	}, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a shutdown signal arrives or one of the
// servers fails. The snapshot backend is closed on the way out.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.webhook.Run(ctx)
	})
	g.Go(func() error {
		return app.health.Run(ctx)
	})
	g.Go(func() error {
		app.pinger.Run(ctx)
		return nil
	})

	app.health.SetServing(true)

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server failed", "error", err)
	}

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close failed", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
