package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"quizdeck/internal/config"
	"quizdeck/internal/customdomains"
	"quizdeck/internal/domains"
	transporthttp "quizdeck/internal/http"
	"quizdeck/internal/identity"
	"quizdeck/internal/metrics"
	"quizdeck/internal/platform/database"
	"quizdeck/internal/platform/logging"
	"quizdeck/internal/platform/migrate"
	"quizdeck/internal/presence"
	"quizdeck/internal/quizzes"
	"quizdeck/internal/session"
)

const sessionCleanupInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	identitySvc := identity.NewService(repos.identities)
	sessionMgr := session.NewManager(repos.sessions, identitySvc, 12*time.Hour, cfg.SessionSecret)
	presenceSvc := presence.NewService(repos.presence, cfg.PresenceStaleness)
	domainSvc := domains.NewService(repos.domains)
	customDomainSvc := customdomains.NewService(repos.customDomains)
	quizSvc := quizzes.NewService(repos.quizzes)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	svcs := transporthttp.Services{
		Sessions:      sessionMgr,
		Presence:      presenceSvc,
		Domains:       domainSvc,
		CustomDomains: customDomainSvc,
		Quizzes:       quizSvc,
	}

	if cfg.GoogleLoginEnabled() {
		google, err := identity.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		if err != nil {
			logger.Error("failed to initialize google oidc client", "error", err)
			os.Exit(1)
		}
		svcs.Google = google
	}

	router := transporthttp.NewRouter(cfg, svcs, registry, recorder, logger)

	go runSessionCleanup(ctx, sessionMgr, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Quizdeck API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// runSessionCleanup purges expired sessions on a fixed interval until the
// context is cancelled.
func runSessionCleanup(ctx context.Context, mgr *session.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := mgr.CleanupExpired(ctx)
			if err != nil {
				logger.Error("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

type repositories struct {
	identities    identity.Repository
	sessions      session.Repository
	presence      presence.Repository
	domains       domains.Repository
	customDomains customdomains.Repository
	quizzes       quizzes.Repository
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		return repositories{
			identities:    identity.NewInMemoryRepository(),
			sessions:      session.NewInMemoryRepository(),
			presence:      presence.NewInMemoryRepository(),
			domains:       domains.NewInMemoryRepository(seedLocalDomains()),
			customDomains: customdomains.NewInMemoryRepository(),
			quizzes:       quizzes.NewInMemoryRepository(),
		}, nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return repositories{}, nil, err
	}

	logger.Info("connected to postgres")
	return repositories{
		identities:    identity.NewPostgresRepository(db),
		sessions:      session.NewPostgresRepository(db),
		presence:      presence.NewPostgresRepository(db),
		domains:       domains.NewPostgresRepository(db),
		customDomains: customdomains.NewPostgresRepository(db),
		quizzes:       quizzes.NewPostgresRepository(db),
	}, cleanup, nil
}
