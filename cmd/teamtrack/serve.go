package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/teamtrack/teamtrack/internal/api"
	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/auth"
	"github.com/teamtrack/teamtrack/internal/config"
	"github.com/teamtrack/teamtrack/internal/crypto"
	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/internal/metrics"
	"github.com/teamtrack/teamtrack/internal/ratelimit"
	"github.com/teamtrack/teamtrack/internal/service"
	"github.com/teamtrack/teamtrack/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TeamTrack API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// app is everything serve and seed share: a pool, the stores and the
// services on top of them.
type app struct {
	pool     *pgxpool.Pool
	stores   *store.Stores
	services *service.Services
	tokens   *auth.TokenManager
}

func newApp(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (*app, error) {
	cipher, err := crypto.NewCipher(cfg.Crypto.PIIKey)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	stores := store.New(pool, cipher)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clock)
	services := service.New(service.Repositories{
		Users:   stores.Users,
		Players: stores.Players,
		Coaches: stores.Coaches,
		Teams:   stores.Teams,
		Games:   stores.Games,
	}, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens)

	return &app{pool: pool, stores: stores, services: services, tokens: tokens}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("server", cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()
	a, err := newApp(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer a.pool.Close()
	log.Info().Msg("connected to database")

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (int32, int32, int32) {
		s := a.pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	})

	auditStore := audit.NewStore(a.pool)
	collector := audit.NewCollector(auditStore, cfg.Audit.BatchSize, cfg.Audit.FlushInterval,
		audit.WithClock(clock),
		audit.WithObserver(m),
		audit.WithLogger(logger.New("audit", cfg.Log.Level)),
	)
	go collector.Start(ctx)

	limiter := ratelimit.New(cfg.RateLimit.Login, cfg.RateLimit.Window, clock)
	go pruneLimiter(ctx, limiter, cfg.RateLimit.Window, clock)

	router := api.NewRouter(api.RouterDeps{
		Services:       a.services,
		Tokens:         a.tokens,
		Metrics:        m,
		Audit:          collector,
		AuditLog:       auditStore,
		LoginLimiter:   limiter,
		TrustProxy:     cfg.Server.TrustProxy,
		DBPool:         a.pool,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger.New("http", cfg.Log.Level),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		collector.Stop()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	collector.Stop()
	return err
}

// pruneLimiter drops idle rate-limit buckets once per window.
func pruneLimiter(ctx context.Context, l *ratelimit.Limiter, window time.Duration, clock clockwork.Clock) {
	ticker := clock.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			l.Prune()
		}
	}
}
