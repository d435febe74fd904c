package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	authcookie "gatekeeper/internal/auth/cookie"
	authhandler "gatekeeper/internal/auth/handler"
	authmetrics "gatekeeper/internal/auth/metrics"
	"gatekeeper/internal/auth/pendingtoken"
	"gatekeeper/internal/auth/provider"
	authservice "gatekeeper/internal/auth/service"
	"gatekeeper/internal/platform/config"
	"gatekeeper/internal/platform/httpserver"
	"gatekeeper/internal/platform/logger"
	"gatekeeper/internal/platform/metrics"
	"gatekeeper/internal/platform/middleware"
	"gatekeeper/pkg/platform/middleware/metadata"
	"gatekeeper/pkg/platform/middleware/requestid"
	"gatekeeper/pkg/platform/middleware/requesttime"
)

const (
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 10 * time.Second
	pendingIssuer   = "gatekeeper"
)

// main wires high-level dependencies, exposes both gateways, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("gatekeeper stopped", "error", err)
		os.Exit(1)
	}
	log.Info("gatekeeper stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	sessions, err := openStore(startCtx, cfg, log)
	cancel()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Warn("failed to close session store", "error", err)
		}
	}()

	auditor, closeAudit, err := newAuditor(cfg.Audit, log)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	defer closeAudit()

	registry := metrics.NewRegistry()
	authMetrics := authmetrics.New(registry)

	idp := provider.NewGoogle(provider.GoogleConfig{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		CallbackURL:  cfg.OAuth.CallbackURL,
	})
	signingKey, err := pendingtoken.DeriveKey([]byte(cfg.Session.Secret))
	if err != nil {
		return err
	}
	signer := pendingtoken.NewSigner(signingKey, pendingIssuer)
	manager := authservice.New(sessions, sessions, idp, signer, authservice.Config{
		AuthorizedEmail: cfg.Session.AuthorizedEmail,
		SessionTTL:      cfg.Session.MaxAge,
		PendingTTL:      cfg.Session.PendingTTL,
		ProviderTimeout: cfg.Provider.Timeout,
	}, authservice.WithLogger(log))

	cookies := authcookie.Policy{
		Domain:      cfg.Session.CookieDomain,
		SessionName: cfg.Session.CookieName,
		PendingName: cfg.Session.PendingName,
		SessionTTL:  cfg.Session.MaxAge,
		PendingTTL:  cfg.Session.PendingTTL,
	}

	public := newRouter(cfg, log)
	authhandler.NewPublic(manager, cookies, cfg.Session.CookieDomain, log, authMetrics, auditor).Register(public)

	private := newRouter(cfg, log)
	authhandler.NewPrivate(manager, sessions, cookies, log, authMetrics).Register(private)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Server.PublicAddr, public), "public", shutdownTimeout, log)
	})
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Server.PrivateAddr, private), "private", shutdownTimeout, log)
	})
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		g.Go(func() error {
			return httpserver.Run(gctx, httpserver.New(cfg.Server.MetricsAddr, mux), "metrics", shutdownTimeout, log)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRouter(cfg config.Config, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(cfg.Server.TrustedProxyHops))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return r
}
