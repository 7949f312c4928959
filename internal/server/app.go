// Package server wires the API together and runs it: the REST listener, the
// ops listeners, the optional denylist janitor and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/auth"
	"github.com/dmitrijs2005/lifestyle/internal/server/config"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/handlers"
	"github.com/dmitrijs2005/lifestyle/internal/server/httpapi/middleware"
	"github.com/dmitrijs2005/lifestyle/internal/server/janitor"
	"github.com/dmitrijs2005/lifestyle/internal/server/ops"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifestyle/internal/server/revocation"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
	"github.com/dmitrijs2005/lifestyle/internal/server/session"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Seams for tests.
var (
	openDB           = dbx.Open
	newRedisDenylist = revocation.NewRedisDenylist
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     http.Handler
	ops     *ops.Server
	janitor *janitor.Janitor
	closers []func() error
}

// NewApp connects to the database, applies migrations and builds every
// component. Nothing listens until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.Env)

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	app.closers = append(app.closers, db.Close)

	if err := app.build(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context) error {
	c := app.config

	rm, err := repomanager.NewPostgresRepositoryManager(app.db)
	if err != nil {
		return fmt.Errorf("repository manager error: %w", err)
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(app.db, rm).WithPasswordValidation(c.StrictPasswords)
	entryService := services.NewEntryService(app.db, rm, services.S3SettingsFromConfig(c))
	eventService := services.NewEventService(app.db, rm)

	tokens := auth.Settings{
		Secret:     []byte(c.SecretKey),
		AccessTTL:  c.AccessTokenValidityDuration,
		RefreshTTL: c.RefreshTokenValidityDuration,
	}
	verifier := auth.NewVerifier(tokens)

	denylist, err := app.newDenylist(ctx, rm)
	if err != nil {
		return err
	}

	sessions := session.NewController(session.Config{
		CookiePath:     cookiePath(c.BasePath),
		Secure:         c.SecureCookies,
		SameSite:       http.SameSiteLaxMode,
		RefreshTTL:     c.RefreshTokenValidityDuration,
		RevokeOnLogout: c.RevokeOnLogout,
	}, userService, auth.NewIssuer(tokens), verifier, denylist, app.logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("metrics init error: %w", err)
	}

	app.api = httpapi.NewRouter(
		handlers.New(userService, entryService, eventService, sessions),
		verifier,
		httpapi.Options{
			Logger:   app.logger,
			Timeout:  c.RequestTimeout,
			BasePath: c.BasePath,
			Metrics:  metrics,
		},
	)
	app.ops = ops.New(ops.Settings{HTTPAddr: c.OpsAddr, GRPCAddr: c.GRPCHealthAddr}, app.logger, registry)

	return nil
}

// newDenylist returns nil unless revoke-on-logout is enabled. Redis is used
// when configured; otherwise PostgreSQL, swept by the janitor.
func (app *App) newDenylist(ctx context.Context, rm repomanager.RepositoryManager) (revocation.Denylist, error) {
	c := app.config
	if !c.RevokeOnLogout {
		return nil, nil
	}

	if c.RedisURL != "" {
		rd, err := newRedisDenylist(ctx, c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis denylist error: %w", err)
		}
		app.closers = append(app.closers, rd.Close)
		app.logger.Info(ctx, "Refresh token denylist enabled", "store", "redis")
		return rd, nil
	}

	pg := revocation.NewPostgresDenylist(app.db, rm)
	app.janitor = janitor.New(pg, c.JanitorPeriod, app.logger)
	app.logger.Info(ctx, "Refresh token denylist enabled", "store", "postgres")
	return pg, nil
}

// cookiePath scopes the refresh cookie to the API root.
func cookiePath(basePath string) string {
	p := strings.TrimRight(basePath, "/")
	if p == "" {
		return "/"
	}
	return p
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "http shutdown incomplete", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr, "base_path", app.config.BasePath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives or ctx is canceled, then shuts
// everything down and releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ops.RunHTTP(ctx); err != nil {
			app.logger.Error(ctx, "ops http server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ops.RunGRPC(ctx); err != nil {
			app.logger.Error(ctx, "grpc health server failed", "error", err)
			cancelFunc()
		}
	}()

	if app.janitor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.janitor.Run(ctx)
		}()
	}

	app.ops.SetReady(true)

	<-ctx.Done()
	app.ops.SetReady(false)

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
