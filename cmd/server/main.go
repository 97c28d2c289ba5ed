package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/lurelabs/lure/internal/app"
	"github.com/lurelabs/lure/internal/httpapi"
	"github.com/lurelabs/lure/internal/jobs"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := app.LoadConfigFromEnv()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	// Initialize Sentry for error monitoring
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2, // 20% of requests for performance monitoring
			Environment:      getEnvironment(),
		})
		if err != nil {
			logger.Printf("sentry init failed: %v", err)
		} else {
			logger.Printf("sentry initialized")
			defer sentry.Flush(2 * time.Second)
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		if cfg.SentryDSN != "" {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		logger.Fatalf("init app: %v", err)
	}

	gate := httpapi.NewIntakeGate()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router(gate),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sweeper := jobs.NewSessionSweeperJob(a.Engine(), logger, cfg.SweepInterval, cfg.SessionTTL)
	sweeper.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()

	// Stop accepting honeypot traffic, let in-flight requests finish,
	// then shut the listener down.
	logger.Printf("draining: waiting for %d in-flight requests", gate.InFlight())
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := gate.DrainWait(drainCtx); err != nil {
		logger.Printf("draining: gave up with %d requests still active: %v", gate.InFlight(), err)
	}
	drainCancel()

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = a.Close()
}

func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}
