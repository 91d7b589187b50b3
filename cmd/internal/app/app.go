// Package app wires the accountd runtime: config, logging, storage, the
// session tracker, HTTP routes and graceful shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"accountd/cmd/identity"
	"accountd/cmd/internal/account"
	authapi "accountd/cmd/internal/auth/api"
	"accountd/cmd/internal/auth/session"
	"accountd/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the accountd server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	registry *prometheus.Registry
	accounts *account.Service
	auth     *authapi.Handler

	closeTracker func() error
}

// New constructs a fully wired App from config, logger and hasher settings.
// With no DatabaseURL every store lives in process memory.
func New(ctx context.Context, cfg Config, log Logger, hasher password.Config) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log, closeTracker: func() error { return nil }}

	var (
		store identity.Store
		err   error
	)
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		store = identity.NewMemoryStore()
	} else {
		a.dbPool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.dbEnabled = true
		log.Info("db.enabled.postgres_store", "schema", cfg.DBSchema)

		if err := MigrateDB(ctx, cfg, a.dbPool, log); err != nil {
			a.dbPool.Close()
			return nil, err
		}
		store, err = identity.NewPostgresStore(a.dbPool, identity.WithSchema(cfg.DBSchema))
		if err != nil {
			a.dbPool.Close()
			return nil, err
		}
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		a.closeDB()
		return nil, err
	}
	tracker, backend, closeTracker, err := session.Open(ctx, sessCfg, a.dbPool, session.WithSchema(cfg.DBSchema))
	if err != nil {
		a.closeDB()
		return nil, err
	}
	a.closeTracker = closeTracker
	log.Info("session.backend", "backend", backend)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := account.NewMetrics(a.registry)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	a.accounts, err = account.NewService(store, store, tracker, hasher,
		account.WithLogger(log),
		account.WithMetrics(metrics),
	)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	var opts []authapi.HandlerOption
	if a.dbEnabled {
		opts = append(opts, authapi.WithAuditPool(a.dbPool, cfg.DBSchema))
	}
	authCfg, err := authapi.LoadConfigFromEnv()
	if err != nil {
		a.closeResources()
		return nil, err
	}
	a.auth, err = authapi.NewHandler(log, a.accounts, authCfg, opts...)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	return a, nil
}

// Handler returns the root HTTP handler with request logging applied.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.registry, a.auth)
	return WithRequestLogging(mux, a.log)
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.closeResources()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.closeResources()
		return err
	}

	a.closeResources()
	a.log.Info("server.stopped")
	return nil
}

// Close releases the database pool and tracker resources without serving.
func (a *App) Close() { a.closeResources() }

func (a *App) closeResources() {
	if a.closeTracker != nil {
		if err := a.closeTracker(); err != nil {
			a.log.Error("session.close.fail", "err", err)
		}
		a.closeTracker = nil
	}
	a.closeDB()
}

func (a *App) closeDB() {
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
