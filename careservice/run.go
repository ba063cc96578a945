// Package careservice wires configuration, storage, the detector and the HTTP
// API into a runnable service.
package careservice

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/advisor"
	"github.com/bloomie/bloomie-care/internal/api"
	"github.com/bloomie/bloomie-care/internal/apicache"
	"github.com/bloomie/bloomie-care/internal/config"
	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/events"
	"github.com/bloomie/bloomie-care/internal/health"
	"github.com/bloomie/bloomie-care/internal/platform/logger"
	"github.com/bloomie/bloomie-care/internal/services"
	"github.com/bloomie/bloomie-care/internal/store"
	"github.com/bloomie/bloomie-care/internal/store/postgres"
	"github.com/bloomie/bloomie-care/internal/store/sqlite"
)

// Run starts the care service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("care-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("advisor_enabled", cfg.AdvisorAPIKey != "").
		Str("advisor_model", cfg.AdvisorModel).
		Msg("Care service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := newServerContext()
	defer stop()

	st, db, err := newStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = db.Close() }()

	det := newDetector(cfg, log)
	bus := events.NewBus(cfg.EventBufferSize)
	go logEvents(ctx, bus, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	router := buildRouter(cfg, log, st, det, bus, svcHealth.IsHealthy)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore opens the configured database and wraps it in a store adapter.
func newStore(cfg *config.Config) (store.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewWithDB(db), db, nil
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewWithDB(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// newDetector builds the detector with the configured advisor, if any. Without
// an API key the deterministic rule engine handles every run.
func newDetector(cfg *config.Config, log zerolog.Logger) *detector.Detector {
	var adv detector.Advisor
	if cfg.AdvisorAPIKey != "" {
		cache := apicache.New(time.Duration(cfg.AdvisorCacheTTLMinutes) * time.Minute)
		adv = advisor.NewOpenAI(advisor.Options{
			BaseURL: cfg.AdvisorBaseURL,
			APIKey:  cfg.AdvisorAPIKey,
			Model:   cfg.AdvisorModel,
			Timeout: time.Duration(cfg.AdvisorTimeoutSeconds) * time.Second,
		}, cache, log)
	}
	return detector.New(adv, thresholdsFromConfig(cfg), log)
}

// thresholdsFromConfig overlays configured detector knobs on the defaults.
func thresholdsFromConfig(cfg *config.Config) detector.Thresholds {
	th := detector.DefaultThresholds()
	if cfg.DetectorWindowDays > 0 {
		th.WindowDays = cfg.DetectorWindowDays
	}
	if cfg.DetectorMinLogs > 0 {
		th.MinLogs = cfg.DetectorMinLogs
	}
	if cfg.DetectorScoreDelta > 0 {
		th.ScoreDelta = cfg.DetectorScoreDelta
	}
	if cfg.DetectorOverdueRatio > 0 {
		th.OverdueRatio = cfg.DetectorOverdueRatio
	}
	if cfg.DetectorWaterUrgentRatio > 0 {
		th.WateringUrgentRatio = cfg.DetectorWaterUrgentRatio
	}
	if cfg.DetectorFeedUrgentRatio > 0 {
		th.FeedingUrgentRatio = cfg.DetectorFeedUrgentRatio
	}
	return th
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(cfg *config.Config, log zerolog.Logger, st store.Store, det *detector.Detector, bus *events.Bus, isHealthy func() bool) http.Handler {
	ackWindow := time.Duration(cfg.AckWindowDays) * 24 * time.Hour
	return api.NewRouter(api.Deps{
		Nurtures:  services.NewNurtureService(st, log),
		Logs:      services.NewLogService(st, log),
		Alerts:    services.NewAlertService(st, det, bus, ackWindow, cfg.DetectorWindowDays, log),
		IsHealthy: isHealthy,
	})
}

// logEvents drains the notification bus. Delivery to external channels (push,
// email) hangs off this subscription.
func logEvents(ctx context.Context, bus *events.Bus, log zerolog.Logger) {
	ch := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			log.Info().
				Str("kind", string(ev.Kind)).
				Str("owner_id", ev.OwnerID).
				Str("nurture_id", ev.NurtureID).
				Int("count", ev.Count).
				Msg("care event")
		}
	}
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is interval*2 with a 60 second floor, giving checkers
// time to complete their first probe cycle.
func startupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := startupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
