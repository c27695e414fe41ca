// Package app wires the authgate server runtime: config, logging, the
// credential store, the account workflow and its HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"authgate/cmd/internal/auth/account"
	authapi "authgate/cmd/internal/auth/api"
	"authgate/cmd/internal/auth/session"
	"authgate/cmd/security/password"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
)

// App is the authgate server runtime.
type App struct {
	cfg Config
	log Logger

	store   *storeHandle
	auth    *authapi.Handler
	metrics *prometheus.Registry
}

// New constructs a fully wired App from cfg. Subsystem settings (session,
// password, auth API) are read from the environment here.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(); err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	issuer, err := session.NewIssuer(sessCfg)
	if err != nil {
		return nil, err
	}
	log.Info("session.issuer", "issuer", sessCfg.Issuer, "ttl", issuer.TTL().String())

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hasher, err := password.NewHasher(pwCfg, password.WithMetrics(reg))
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	accounts, err := account.NewService(ctx, st.store, hasher, issuer,
		account.WithTracer(otel.Tracer("authgate/account")))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	auth, err := authapi.NewHandler(log, accounts, sessCfg, authapi.LoadConfigFromEnv(), authapi.WithMetrics(reg))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		auth:    auth,
		metrics: reg,
	}, nil
}

// Handler returns the root HTTP handler with middleware applied.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.store, a.auth, a.metrics)

	var h http.Handler = mux
	h = WithSecurityHeaders(h)
	h = WithRecovery(h, a.log)
	h = WithRequestLogging(h, a.log)
	h = WithRequestID(h)
	return h
}

// Run starts the HTTP server and blocks until ctx is done or the server fails.
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

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"base_url", runtimeBaseURL(a.cfg.HTTPAddr),
		"store", a.store.kind,
		"metrics", a.cfg.MetricsEnabled,
	)

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
		_ = a.store.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		_ = a.store.Close()
		return err
	}

	if err := a.store.Close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases the store without running the server.
func (a *App) Close() error { return a.store.Close() }

// runtimeBaseURL turns a listen address into a URL usable from the same host.
func runtimeBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
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

