package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stellar-copytrade-lab/internal/blob"
	"stellar-copytrade-lab/internal/blob/local"
	s3blob "stellar-copytrade-lab/internal/blob/s3"
	rediscache "stellar-copytrade-lab/internal/cache/redis"
	"stellar-copytrade-lab/internal/config"
	"stellar-copytrade-lab/internal/discovery"
	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/ingestion"
	"stellar-copytrade-lab/internal/observability"
	"stellar-copytrade-lab/internal/orchestrator"
	"stellar-copytrade-lab/internal/snapshot"
	chstore "stellar-copytrade-lab/internal/storage/clickhouse"
	"stellar-copytrade-lab/internal/storage/memory"
	"stellar-copytrade-lab/internal/storage/migrations"
	"stellar-copytrade-lab/internal/storage/postgres"
)

// app holds state shared by subcommands.
type app struct {
	configPath     string
	logLevel       string
	metricsAddr    string
	metricsPushURL string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	server  *http.Server
	closers []func()
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.metricsAddr != "" {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if a.metricsPushURL != "" {
		cfg.Metrics.PushURL = a.metricsPushURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	if cfg.Metrics.Addr != "" || cfg.Metrics.PushURL != "" {
		a.startMetrics(cmd.Context())
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func (a *app) startMetrics(ctx context.Context) {
	reg := prometheus.NewRegistry()
	a.metrics = observability.NewMetrics(a.cfg.Metrics.Namespace, reg)

	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler(reg))
		a.server = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		a.logger.Info("serving metrics", zap.String("addr", a.cfg.Metrics.Addr))
		a.closers = append(a.closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = a.server.Shutdown(shutdownCtx)
		})
	}

	if url := a.cfg.Metrics.PushURL; url != "" {
		a.closers = append(a.closers, func() {
			pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := observability.Push(pushCtx, url, observability.DefaultJob, reg); err != nil {
				a.logger.Warn("metrics push failed", zap.String("url", url), zap.Error(err))
				return
			}
			a.logger.Info("metrics pushed", zap.String("url", url))
		})
	}
}

// close releases resources and pushes metrics. It runs when a command
// returns, whether or not it failed.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// blobStore returns the configured snapshot store, or nil when disabled.
func (a *app) blobStore(ctx context.Context) (blob.Store, error) {
	switch a.cfg.Snapshot.Backend {
	case "local":
		return local.NewStore(a.cfg.Snapshot.Dir), nil
	case "s3":
		client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       a.cfg.S3.Endpoint,
			Region:         a.cfg.S3.Region,
			Bucket:         a.cfg.S3.Bucket,
			AccessKey:      a.cfg.S3.AccessKey,
			SecretKey:      a.cfg.S3.SecretKey,
			UseSSL:         a.cfg.S3.UseSSL,
			ForcePathStyle: a.cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3blob.NewStore(client, a.cfg.S3.Prefix), nil
	default:
		return nil, nil
	}
}

// orchestrator wires sources and sinks from configuration.
func (a *app) orchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	cfg := a.cfg
	opts := orchestrator.Options{
		Network: orchestrator.NetworkParams{
			Lookback:       cfg.Ledger.Lookback.Duration,
			MinSwaps:       cfg.Ledger.MinSwaps,
			WalletLimit:    cfg.Ledger.WalletLimit,
			LimitPerWallet: cfg.Ledger.LimitPerWallet,
		},
		DomainLookback: cfg.Domain.Lookback.Duration,
		PnL:            cfg.PnL.EstimatorConfig(),
		Workers:        cfg.PnL.Workers,
		NetworkVariant: orchestrator.Variant{
			Filter:       cfg.FilterConfig(domain.RunSourceNetwork),
			Scoring:      cfg.ScoringConfig(domain.RunSourceNetwork),
			SnapshotName: cfg.SnapshotName(domain.RunSourceNetwork),
		},
		DomainVariant: orchestrator.Variant{
			Filter:       cfg.FilterConfig(domain.RunSourceDomain),
			Scoring:      cfg.ScoringConfig(domain.RunSourceDomain),
			SnapshotName: cfg.SnapshotName(domain.RunSourceDomain),
		},
		Ranking: cfg.Ranking.RankerConfig(),
		Metrics: a.metrics,
		Logger:  a.logger,
	}

	if cfg.Ledger.DSN != "" {
		horizon := ingestion.NewHorizonSource(cfg.Ledger.DSN, cfg.Ledger.BatchSize, a.logger)
		opts.Ledger = horizon
		opts.Flows = horizon
	}

	resolverOpts := []discovery.Option{
		discovery.WithScheme(cfg.Domain.Scheme),
		discovery.WithHTTPClient(&http.Client{Timeout: cfg.Domain.HTTPTimeout.Duration}),
	}
	if cfg.Redis.Addr != "" {
		rc, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		resolverOpts = append(resolverOpts, discovery.WithCache(rediscache.NewAssetCache(rc.Underlying(), cfg.Redis.AssetTTL.Duration)))
	}
	opts.Resolver = discovery.NewResolver(a.logger, resolverOpts...)

	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.Storage.RunMigrations {
			if err := migrations.RunPostgres(ctx, pool); err != nil {
				return nil, err
			}
		}
		opts.SummaryStore = postgres.NewSummaryStore(pool)
		opts.CandidateStore = postgres.NewCandidateStore(pool)
	default:
		opts.SummaryStore = memory.NewSummaryStore()
		opts.CandidateStore = memory.NewCandidateStore()
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouse(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		opts.HistoryStore = chstore.NewSummaryStore(conn)
	}

	store, err := a.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts.Publisher = snapshot.NewPublisher(store, a.logger)
	}

	return orchestrator.New(opts), nil
}
