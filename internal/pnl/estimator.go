package pnl

import (
	"context"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/normalization"
)

// WalletInput is one wallet's unit of estimation work.
type WalletInput struct {
	WalletID          string
	NumSwaps          int     // swap count from the activity ranking stage
	TotalVolumeNative float64 // volume from the activity ranking stage
	Events            []*domain.SwapEvent
}

// Estimator reconstructs realized P&L from a wallet's swap events.
// It performs no I/O and holds no per-wallet state between calls.
type Estimator struct {
	cfg     Config
	workers int
	logger  *zap.Logger
}

// NewEstimator creates an estimator. A nil logger disables logging.
func NewEstimator(cfg Config, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		cfg:     cfg,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger.Named("pnl"),
	}
}

// WithWorkers overrides the worker pool size used by EstimateAll.
func (e *Estimator) WithWorkers(n int) *Estimator {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Estimate replays the wallet's events in (timestamp, sequence) order and
// returns its P&L summary. A wallet with no events yields a zero summary.
func (e *Estimator) Estimate(in WalletInput) *domain.WalletPnLSummary {
	summary := &domain.WalletPnLSummary{
		WalletID:          in.WalletID,
		NumSwaps:          in.NumSwaps,
		TotalVolumeNative: normalization.SanitizeFloat(in.TotalVolumeNative),
		AssetPairs:        []string{},
		PairSwapCounts:    map[string]int{},
	}
	if len(in.Events) == 0 {
		return summary
	}

	events := make([]*domain.SwapEvent, 0, len(in.Events))
	for _, ev := range in.Events {
		if ev != nil {
			events = append(events, ev)
		}
	}
	normalization.SortSwapEvents(events)

	fee := e.cfg.FeePerSwap
	pending := make(pendingLedger)
	var balance float64
	var roundTrips []float64

	recordPair := func(pair string) {
		if _, seen := summary.PairSwapCounts[pair]; !seen {
			summary.AssetPairs = append(summary.AssetPairs, pair)
		}
		summary.PairSwapCounts[pair]++
	}

	for _, ev := range events {
		srcAmount := normalization.SanitizeFloat(ev.SourceAmount)
		dstAmount := normalization.SanitizeFloat(ev.DestAmount)

		switch ev.Direction() {
		case domain.DirectionAcquisition:
			balance -= srcAmount
			pending.push(ev.DestAsset.Key(), domain.PendingTrade{
				ReceivedAmount:   dstAmount,
				PaidNativeAmount: srcAmount,
			})
			recordPair(domain.NativeCode + "/" + ev.DestAsset.Code)

		case domain.DirectionDisposal:
			balance += dstAmount
			recordPair(ev.SourceAsset.Code + "/" + domain.NativeCode)
			if entry, ok := pending.take(ev.SourceAsset.Key(), srcAmount, e.cfg.Tolerance, e.cfg.Policy); ok {
				pnl := (dstAmount-entry.PaidNativeAmount)*(1-e.cfg.SlippageRate) - 2*fee
				roundTrips = append(roundTrips, pnl)
			}
		}

		balance -= fee
	}

	var total float64
	for _, p := range roundTrips {
		total += p
	}

	summary.NumSwapsAnalyzed = len(events)
	summary.NumRoundTrips = len(roundTrips)
	summary.TotalPnLNative = normalization.SanitizeFloat(total)
	if summary.NumRoundTrips > 0 {
		summary.AvgPnLPerRoundTrip = summary.TotalPnLNative / float64(summary.NumRoundTrips)
	}
	summary.NetNativeChange = normalization.SanitizeFloat(balance)

	if isNonFinite(balance) || isNonFinite(total) {
		e.logger.Warn("non-finite totals reset to zero",
			zap.String("wallet", in.WalletID),
			zap.Float64("balance", balance),
			zap.Float64("total_pnl", total),
		)
	}

	e.logger.Debug("wallet estimated",
		zap.String("wallet", in.WalletID),
		zap.Int("events", len(events)),
		zap.Int("round_trips", summary.NumRoundTrips),
		zap.Int("open_positions", pending.open()),
	)
	return summary
}

// EstimateAll estimates every input on a bounded worker pool. Results are
// returned in input order. Cancelling ctx stops scheduling new wallets and
// returns the context error.
func (e *Estimator) EstimateAll(ctx context.Context, inputs []WalletInput) ([]*domain.WalletPnLSummary, error) {
	results := make([]*domain.WalletPnLSummary, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Estimate(inputs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// RoundTripCount sums matched round trips across summaries.
func RoundTripCount(summaries []*domain.WalletPnLSummary) int {
	n := 0
	for _, s := range summaries {
		n += s.NumRoundTrips
	}
	return n
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
