package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COPYTRADE_"

// Load merges the TOML file at path over Defaults, loads .env if present and
// applies COPYTRADE_* overrides. An empty path skips the file. The result is
// not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// ledger
	setStr(&cfg.Ledger.DSN, "COPYTRADE_LEDGER_DSN")
	setDuration(&cfg.Ledger.Lookback, "COPYTRADE_LEDGER_LOOKBACK")
	setInt(&cfg.Ledger.MinSwaps, "COPYTRADE_LEDGER_MIN_SWAPS")
	setInt(&cfg.Ledger.WalletLimit, "COPYTRADE_LEDGER_WALLET_LIMIT")
	setInt(&cfg.Ledger.LimitPerWallet, "COPYTRADE_LEDGER_LIMIT_PER_WALLET")
	setInt(&cfg.Ledger.BatchSize, "COPYTRADE_LEDGER_BATCH_SIZE")

	// domain
	setStringSlice(&cfg.Domain.Domains, "COPYTRADE_DOMAIN_DOMAINS")
	setDuration(&cfg.Domain.Lookback, "COPYTRADE_DOMAIN_LOOKBACK")
	setStr(&cfg.Domain.Scheme, "COPYTRADE_DOMAIN_SCHEME")

	// pnl
	setFloat64(&cfg.PnL.FeePerSwap, "COPYTRADE_PNL_FEE_PER_SWAP")
	setFloat64(&cfg.PnL.SlippageRate, "COPYTRADE_PNL_SLIPPAGE_RATE")
	setFloat64(&cfg.PnL.Tolerance, "COPYTRADE_PNL_TOLERANCE")
	setStr(&cfg.PnL.MatchPolicy, "COPYTRADE_PNL_MATCH_POLICY")
	setInt(&cfg.PnL.Workers, "COPYTRADE_PNL_WORKERS")

	// filter
	setFloat64(&cfg.Filter.NetChangeThreshold, "COPYTRADE_FILTER_NET_CHANGE_THRESHOLD")
	setStringSlice(&cfg.Filter.CommonPairs, "COPYTRADE_FILTER_COMMON_PAIRS")
	setInt(&cfg.Filter.DomainTopK, "COPYTRADE_FILTER_DOMAIN_TOP_K")

	// scoring
	setFloat64(&cfg.Scoring.NetworkWindowDays, "COPYTRADE_SCORING_NETWORK_WINDOW_DAYS")
	setFloat64(&cfg.Scoring.DomainWindowDays, "COPYTRADE_SCORING_DOMAIN_WINDOW_DAYS")

	// ranking
	setInt(&cfg.Ranking.TopN, "COPYTRADE_RANKING_TOP_N")

	// storage
	setStr(&cfg.Storage.Backend, "COPYTRADE_STORAGE_BACKEND")
	setStr(&cfg.Storage.PostgresDSN, "COPYTRADE_STORAGE_POSTGRES_DSN")
	setStr(&cfg.Storage.ClickhouseDSN, "COPYTRADE_STORAGE_CLICKHOUSE_DSN")
	setBool(&cfg.Storage.RunMigrations, "COPYTRADE_STORAGE_RUN_MIGRATIONS")

	// redis
	setStr(&cfg.Redis.Addr, "COPYTRADE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "COPYTRADE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "COPYTRADE_REDIS_DB")

	// s3
	setStr(&cfg.S3.Endpoint, "COPYTRADE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "COPYTRADE_S3_REGION")
	setStr(&cfg.S3.Bucket, "COPYTRADE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "COPYTRADE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "COPYTRADE_S3_SECRET_KEY")

	// snapshot
	setStr(&cfg.Snapshot.Backend, "COPYTRADE_SNAPSHOT_BACKEND")
	setStr(&cfg.Snapshot.Dir, "COPYTRADE_SNAPSHOT_DIR")

	// metrics
	setStr(&cfg.Metrics.Addr, "COPYTRADE_METRICS_ADDR")
	setStr(&cfg.Metrics.PushURL, "COPYTRADE_METRICS_PUSH_URL")

	setStr(&cfg.LogLevel, "COPYTRADE_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
