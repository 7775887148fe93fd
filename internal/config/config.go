// Package config loads run configuration from TOML, .env and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/filter"
	"stellar-copytrade-lab/internal/ingestion"
	"stellar-copytrade-lab/internal/pnl"
	"stellar-copytrade-lab/internal/ranking"
	"stellar-copytrade-lab/internal/scoring"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Domain   DomainConfig   `toml:"domain"`
	PnL      PnLConfig      `toml:"pnl"`
	Filter   FilterConfig   `toml:"filter"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Ranking  RankingConfig  `toml:"ranking"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// LedgerConfig describes the Horizon history database.
type LedgerConfig struct {
	DSN            string   `toml:"dsn"`
	Lookback       duration `toml:"lookback"`
	MinSwaps       int      `toml:"min_swaps"`
	WalletLimit    int      `toml:"wallet_limit"`
	LimitPerWallet int      `toml:"limit_per_wallet"`
	BatchSize      int      `toml:"batch_size"`
}

// DomainConfig describes the domain-scoped variant.
type DomainConfig struct {
	Domains     []string `toml:"domains"`
	Lookback    duration `toml:"lookback"`
	Scheme      string   `toml:"scheme"`
	HTTPTimeout duration `toml:"http_timeout"`
}

// PnLConfig holds trade matcher parameters.
type PnLConfig struct {
	FeePerSwap   float64 `toml:"fee_per_swap"`
	SlippageRate float64 `toml:"slippage_rate"`
	Tolerance    float64 `toml:"tolerance"`
	MatchPolicy  string  `toml:"match_policy"`
	Workers      int     `toml:"workers"`
}

// FilterConfig holds candidate filter parameters.
type FilterConfig struct {
	NetChangeThreshold float64  `toml:"net_change_threshold"`
	CommonPairs        []string `toml:"common_pairs"`
	DomainTopK         int      `toml:"domain_top_k"`
	RequireExoticPair  bool     `toml:"require_exotic_pair"`
}

// ScoringConfig holds scorer parameters.
type ScoringConfig struct {
	NetworkWindowDays     float64 `toml:"network_window_days"`
	DomainWindowDays      float64 `toml:"domain_window_days"`
	ProfitabilityWeight   float64 `toml:"profitability_weight"`
	ActivityWeight        float64 `toml:"activity_weight"`
	EfficiencyWeight      float64 `toml:"efficiency_weight"`
	StabilityWeight       float64 `toml:"stability_weight"`
	LowRiskDailyRate      float64 `toml:"low_risk_daily_rate"`
	ModerateRiskDailyRate float64 `toml:"moderate_risk_daily_rate"`
	MaxPairDiversity      int     `toml:"max_pair_diversity"`
}

// RankingConfig holds ranker parameters.
type RankingConfig struct {
	TopN int `toml:"top_n"`
}

// StorageConfig selects persistence backends.
type StorageConfig struct {
	Backend       string `toml:"backend"` // memory | postgres
	PostgresDSN   string `toml:"postgres_dsn"`
	ClickhouseDSN string `toml:"clickhouse_dsn"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig enables the discovery cache when Addr is set.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	AssetTTL duration `toml:"asset_ttl"`
}

// S3Config holds object store settings.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// SnapshotConfig controls candidate snapshot publishing.
type SnapshotConfig struct {
	Backend     string `toml:"backend"` // none | local | s3
	Dir         string `toml:"dir"`
	NetworkName string `toml:"network_name"`
	DomainName  string `toml:"domain_name"`
}

// MetricsConfig controls the Prometheus endpoint and the end-of-run push.
type MetricsConfig struct {
	// Addr serves /metrics while a command runs.
	Addr string `toml:"addr"`
	// PushURL is a Pushgateway base URL; metrics are pushed when a command exits.
	PushURL   string `toml:"push_url"`
	Namespace string `toml:"namespace"`
}

// duration decodes TOML strings like "36h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Ledger: LedgerConfig{
			Lookback:       duration{ingestion.DefaultNetworkLookback},
			MinSwaps:       ingestion.DefaultMinSwaps,
			WalletLimit:    ingestion.DefaultWalletLimit,
			LimitPerWallet: ingestion.DefaultLimitPerWallet,
			BatchSize:      ingestion.DefaultBatchSize,
		},
		Domain: DomainConfig{
			Lookback:    duration{ingestion.DefaultDomainLookback},
			Scheme:      "https",
			HTTPTimeout: duration{10 * time.Second},
		},
		PnL: PnLConfig{
			FeePerSwap:   pnl.DefaultFeePerSwap,
			SlippageRate: pnl.DefaultSlippageRate,
			Tolerance:    pnl.DefaultTolerance,
			MatchPolicy:  string(pnl.MatchFirst),
		},
		Filter: FilterConfig{
			NetChangeThreshold: filter.DefaultNetChangeThreshold,
			CommonPairs:        append([]string(nil), filter.StaticCommonPairs...),
			DomainTopK:         filter.DefaultTopK,
			RequireExoticPair:  true,
		},
		Scoring: ScoringConfig{
			NetworkWindowDays:     scoring.NetworkWindowDays,
			DomainWindowDays:      scoring.DomainWindowDays,
			ProfitabilityWeight:   0.4,
			ActivityWeight:        0.3,
			EfficiencyWeight:      0.2,
			StabilityWeight:       0.1,
			LowRiskDailyRate:      100,
			ModerateRiskDailyRate: 10,
			MaxPairDiversity:      20,
		},
		Ranking: RankingConfig{TopN: ranking.DefaultTopN},
		Storage: StorageConfig{Backend: "memory"},
		Redis:   RedisConfig{AssetTTL: duration{time.Hour}},
		S3:      S3Config{Region: "us-east-1", UseSSL: true},
		Snapshot: SnapshotConfig{
			Backend:     "local",
			Dir:         "snapshots",
			NetworkName: "copy_trade_candidates",
			DomainName:  "domain_copy_trade_candidates",
		},
		Metrics: MetricsConfig{Namespace: "stellar_copytrade"},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Ledger.Lookback.Duration <= 0 {
		errs = append(errs, "ledger: lookback must be positive")
	}
	if c.Ledger.MinSwaps < 0 || c.Ledger.WalletLimit <= 0 || c.Ledger.LimitPerWallet <= 0 || c.Ledger.BatchSize <= 0 {
		errs = append(errs, "ledger: min_swaps must be >= 0 and wallet_limit, limit_per_wallet, batch_size must be positive")
	}
	if c.Domain.Lookback.Duration <= 0 {
		errs = append(errs, "domain: lookback must be positive")
	}
	if c.Domain.Scheme != "http" && c.Domain.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("domain: scheme must be http or https, got %q", c.Domain.Scheme))
	}

	if err := c.PnL.EstimatorConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	for _, src := range []domain.RunSource{domain.RunSourceNetwork, domain.RunSourceDomain} {
		if err := c.FilterConfig(src).Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := c.ScoringConfig(src).Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src, err))
		}
	}
	if err := c.Ranking.RankerConfig().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, "storage: postgres_dsn is required for backend postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage: unknown backend %q (valid: memory, postgres)", c.Storage.Backend))
	}

	switch c.Snapshot.Backend {
	case "", "none":
	case "local":
		if c.Snapshot.Dir == "" {
			errs = append(errs, "snapshot: dir is required for backend local")
		}
	case "s3":
		if c.S3.Bucket == "" || c.S3.Region == "" {
			errs = append(errs, "s3: bucket and region are required for snapshot backend s3")
		}
	default:
		errs = append(errs, fmt.Sprintf("snapshot: unknown backend %q (valid: none, local, s3)", c.Snapshot.Backend))
	}
	if c.Snapshot.NetworkName == "" || c.Snapshot.DomainName == "" {
		errs = append(errs, "snapshot: network_name and domain_name must not be empty")
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// EstimatorConfig converts to the trade matcher configuration.
func (p PnLConfig) EstimatorConfig() pnl.Config {
	return pnl.Config{
		FeePerSwap:   p.FeePerSwap,
		SlippageRate: p.SlippageRate,
		Tolerance:    p.Tolerance,
		Policy:       pnl.MatchPolicy(strings.ToLower(p.MatchPolicy)),
	}
}

// FilterConfig returns the filter configuration for a run source. Domain runs
// derive common pairs from the cohort.
func (c *Config) FilterConfig(src domain.RunSource) filter.Config {
	cfg := filter.Config{
		NetChangeThreshold: c.Filter.NetChangeThreshold,
		CommonPairs:        append([]string(nil), c.Filter.CommonPairs...),
		RequireExoticPair:  c.Filter.RequireExoticPair,
	}
	if src == domain.RunSourceDomain {
		cfg.DynamicTopK = c.Filter.DomainTopK
	}
	return cfg
}

// ScoringConfig returns the scorer configuration for a run source.
func (c *Config) ScoringConfig(src domain.RunSource) scoring.Config {
	window := c.Scoring.NetworkWindowDays
	if src == domain.RunSourceDomain {
		window = c.Scoring.DomainWindowDays
	}
	return scoring.Config{
		WindowDays: window,
		Weights: scoring.Weights{
			Profitability: c.Scoring.ProfitabilityWeight,
			Activity:      c.Scoring.ActivityWeight,
			Efficiency:    c.Scoring.EfficiencyWeight,
			Stability:     c.Scoring.StabilityWeight,
		},
		Risk: scoring.RiskThresholds{
			LowDailyRate:      c.Scoring.LowRiskDailyRate,
			ModerateDailyRate: c.Scoring.ModerateRiskDailyRate,
			MaxPairDiversity:  c.Scoring.MaxPairDiversity,
		},
	}
}

// RankerConfig converts to the ranker configuration.
func (r RankingConfig) RankerConfig() ranking.Config {
	return ranking.Config{TopN: r.TopN}
}

// SnapshotName returns the snapshot document name for a run source.
func (c *Config) SnapshotName(src domain.RunSource) string {
	if src == domain.RunSourceDomain {
		return c.Snapshot.DomainName
	}
	return c.Snapshot.NetworkName
}
