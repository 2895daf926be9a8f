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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	kychandler "garagehub/internal/kyc/handler"
	kycmetrics "garagehub/internal/kyc/metrics"
	kycservice "garagehub/internal/kyc/service"
	onboardinghandler "garagehub/internal/onboarding/handler"
	onboardingservice "garagehub/internal/onboarding/service"
	"garagehub/internal/platform/config"
	"garagehub/internal/platform/httpserver"
	jwttoken "garagehub/internal/platform/jwt"
	"garagehub/internal/platform/logger"
	"garagehub/internal/platform/metrics"
	httptransport "garagehub/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load(os.Getenv("GARAGEHUB_CONFIG_DIR"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.InfoContext(ctx, "starting garagehub", "config", cfg.Redacted())

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profiles, err := onboardingservice.New(infra.profiles,
		onboardingservice.WithLogger(log),
		onboardingservice.WithAuditPublisher(infra.audit),
	)
	if err != nil {
		return fmt.Errorf("build onboarding service: %w", err)
	}

	records, err := kycservice.New(infra.records, infra.blobs,
		kycservice.WithLogger(log),
		kycservice.WithAuditPublisher(infra.audit),
		kycservice.WithMetrics(kycmetrics.New(registry)),
		kycservice.WithExpertDirectory(profiles),
		kycservice.WithMaxUploadBytes(cfg.UploadMaxBytes),
	)
	if err != nil {
		return fmt.Errorf("build kyc service: %w", err)
	}

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer))
	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        metrics.New(registry),
		Gatherer:       registry,
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   infra.healthChecks,
	},
		onboardinghandler.New(profiles, log, validator),
		kychandler.New(records, log, validator, cfg.UploadMaxBytes),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	if infra.worker != nil {
		g.Go(func() error {
			if err := infra.worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("audit worker: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		log.InfoContext(gctx, "http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
