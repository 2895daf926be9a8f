package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"garagehub/internal/audit"
	"garagehub/internal/kyc/documents"
	kycservice "garagehub/internal/kyc/service"
	kycstore "garagehub/internal/kyc/store"
	onboardingservice "garagehub/internal/onboarding/service"
	onboardingstore "garagehub/internal/onboarding/store"
	"garagehub/internal/platform/config"
	"garagehub/internal/platform/migrations"
	"garagehub/internal/platform/postgres"
	"garagehub/internal/platform/redis"
	httptransport "garagehub/internal/transport/http"
	"garagehub/pkg/platform/circuit"
)

const (
	auditQueueCapacity = 4096
	auditPartitions    = 3
	auditReplication   = 1
)

// infra holds the backing services selected by configuration. Anything left
// unconfigured falls back to an in-memory implementation.
type infra struct {
	records      kycservice.Store
	profiles     onboardingservice.Store
	blobs        kycservice.BlobStore
	audit        *audit.Queue
	worker       *audit.Worker
	healthChecks map[string]httptransport.HealthCheck
	closers      []func()
}

func buildInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{healthChecks: map[string]httptransport.HealthCheck{}}

	if err := in.buildStores(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.buildBlobs(cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.buildAudit(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

func (in *infra) buildStores(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var backend kycstore.Backend
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		backend = kycstore.NewInMemory()
		in.profiles = onboardingstore.NewInMemory()
	} else {
		if cfg.MigrateOnStart {
			if err := migrations.Up(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return err
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		in.healthChecks["postgres"] = dbCheck(db)
		backend = kycstore.NewPostgres(db)
		in.profiles = onboardingstore.NewPostgres(db)
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		in.records = backend
		return nil
	}
	in.closers = append(in.closers, func() { _ = client.Close() })
	in.healthChecks["redis"] = client.Health
	in.records = kycstore.NewCached(backend, client, cfg.Redis.RecordTTL, log)
	log.Info("kyc record cache enabled", "ttl", cfg.Redis.RecordTTL)
	return nil
}

func (in *infra) buildBlobs(cfg *config.Config, log *slog.Logger) error {
	if !cfg.S3.Enabled() {
		log.Warn("S3_BUCKET not set, documents are kept in memory")
		in.blobs = documents.NewMemoryStore("memory://garagehub")
		return nil
	}
	s3, err := documents.NewS3Store(cfg.S3)
	if err != nil {
		return fmt.Errorf("build s3 store: %w", err)
	}
	in.blobs = s3
	return nil
}

func (in *infra) buildAudit(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var sink audit.Sink
	if cfg.Kafka.Enabled() {
		kafka, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return fmt.Errorf("build kafka sink: %w", err)
		}
		in.closers = append(in.closers, kafka.Close)
		if err := kafka.EnsureTopic(ctx, auditPartitions, auditReplication); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
		in.healthChecks["kafka"] = kafka.Ping
		// events are kept in memory while the brokers are unreachable
		sink = audit.NewFallbackSink(kafka, audit.NewMemoryStore(), circuit.New("kafka-audit"), log)
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events are kept in memory", "per_expert_limit", audit.DefaultMemoryLimit)
		sink = audit.NewMemoryStore()
	}

	in.audit = audit.NewQueue(auditQueueCapacity)
	in.worker = audit.NewWorker(sink, in.audit.Inbox(), log)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

func dbCheck(db *sql.DB) httptransport.HealthCheck {
	return db.PingContext
}
