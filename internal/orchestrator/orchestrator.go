// Package orchestrator runs the copy-trading analysis end to end.
// Flow: fetch → normalize → estimate → filter → score → rank → persist/publish
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/filter"
	"stellar-copytrade-lab/internal/ingestion"
	"stellar-copytrade-lab/internal/normalization"
	"stellar-copytrade-lab/internal/observability"
	"stellar-copytrade-lab/internal/pnl"
	"stellar-copytrade-lab/internal/ranking"
	"stellar-copytrade-lab/internal/scoring"
	"stellar-copytrade-lab/internal/storage"
)

// ErrMissingSource is returned when a run needs a source that was not configured.
var ErrMissingSource = errors.New("orchestrator: source not configured")

// AssetResolver resolves home domains to issued assets.
type AssetResolver interface {
	ResolveAll(ctx context.Context, domains []string) ([]domain.IssuedAssetRef, []error)
}

// Publisher writes candidate snapshots.
type Publisher interface {
	Publish(ctx context.Context, name string, set *domain.CandidateSet) (string, string, error)
}

// NetworkParams bounds the network-wide ledger fetch.
type NetworkParams struct {
	Lookback       time.Duration
	MinSwaps       int
	WalletLimit    int
	LimitPerWallet int
}

// DefaultNetworkParams returns the 36h / 5 swaps / 1000 wallets / 200 ops fetch.
func DefaultNetworkParams() NetworkParams {
	return NetworkParams{
		Lookback:       ingestion.DefaultNetworkLookback,
		MinSwaps:       ingestion.DefaultMinSwaps,
		WalletLimit:    ingestion.DefaultWalletLimit,
		LimitPerWallet: ingestion.DefaultLimitPerWallet,
	}
}

// Variant holds the selection parameters of one analysis variant.
type Variant struct {
	Filter       filter.Config
	Scoring      scoring.Config
	SnapshotName string
}

// Orchestrator coordinates one run at a time.
type Orchestrator struct {
	// Sources
	ledger   ingestion.LedgerSource
	flows    ingestion.FlowSource
	resolver AssetResolver

	// Sinks, all optional
	summaryStore   storage.SummaryStore
	historyStore   storage.SummaryStore
	candidateStore storage.CandidateStore
	publisher      Publisher
	metrics        *observability.Metrics

	// Configs
	network        NetworkParams
	domainLookback time.Duration
	estimator      *pnl.Estimator
	networkVariant Variant
	domainVariant  Variant
	ranking        ranking.Config

	logger *zap.Logger
	now    func() time.Time
}

// Options for creating an Orchestrator.
type Options struct {
	// Sources
	Ledger   ingestion.LedgerSource // network runs
	Flows    ingestion.FlowSource   // domain runs
	Resolver AssetResolver          // domain runs

	// Optional sinks
	SummaryStore   storage.SummaryStore
	HistoryStore   storage.SummaryStore // analytics copy of every summary
	CandidateStore storage.CandidateStore
	Publisher      Publisher
	Metrics        *observability.Metrics

	// Configs
	Network        NetworkParams
	DomainLookback time.Duration
	PnL            pnl.Config
	Workers        int
	NetworkVariant Variant
	DomainVariant  Variant
	Ranking        ranking.Config

	Logger *zap.Logger
	Now    func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	est := pnl.NewEstimator(opts.PnL, logger)
	if opts.Workers > 0 {
		est = est.WithWorkers(opts.Workers)
	}
	return &Orchestrator{
		ledger:         opts.Ledger,
		flows:          opts.Flows,
		resolver:       opts.Resolver,
		summaryStore:   opts.SummaryStore,
		historyStore:   opts.HistoryStore,
		candidateStore: opts.CandidateStore,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		network:        opts.Network,
		domainLookback: opts.DomainLookback,
		estimator:      est,
		networkVariant: opts.NetworkVariant,
		domainVariant:  opts.DomainVariant,
		ranking:        opts.Ranking,
		logger:         logger.Named("orchestrator"),
		now:            now,
	}
}

// RunResult contains results from one run.
type RunResult struct {
	RunID              string
	Source             domain.RunSource
	WalletsFetched     int
	RowsRejected       int
	SummariesEstimated int
	CandidatesFiltered int
	Primary            int
	Secondary          int
	Candidates         *domain.CandidateSet
	Errors             []string
}

func (r *RunResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// RunNetwork analyses the most active wallets on the whole network.
// Phases:
//  1. Fetch wallet activity ranking
//  2. Fetch recent operations of ranked wallets
//  3. Normalize rows into swap events
//  4. Estimate P&L per wallet
//  5. Filter, score, rank, persist and publish
func (o *Orchestrator) RunNetwork(ctx context.Context) (res *RunResult, err error) {
	if o.ledger == nil {
		return nil, fmt.Errorf("%w: ledger", ErrMissingSource)
	}
	began := time.Now()
	defer func() { o.recordRun(domain.RunSourceNetwork, began, err) }()
	start := o.now()
	res = o.newResult(domain.RunSourceNetwork)
	log := o.logger.With(zap.String("run_id", res.RunID), zap.String("source", string(res.Source)))
	since := start.Add(-o.network.Lookback)

	// Phase 1: activity ranking
	log.Info("phase 1: fetching wallet activity", zap.Time("since", since))
	phase := time.Now()
	activity, err := o.ledger.FetchWalletActivity(ctx, since, o.network.MinSwaps, o.network.WalletLimit)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (wallet activity) failed: %w", err)
	}
	o.observePhase("activity", phase)

	var wallets []string
	valid := make([]*domain.WalletActivity, 0, len(activity))
	for _, a := range activity {
		if err := normalization.ValidateWalletID(a.WalletID); err != nil {
			res.addError("skip wallet %q: %v", a.WalletID, err)
			continue
		}
		valid = append(valid, a)
		wallets = append(wallets, a.WalletID)
	}
	res.WalletsFetched = len(valid)
	if o.metrics != nil {
		o.metrics.WalletsFetched.WithLabelValues(string(res.Source)).Add(float64(len(valid)))
	}
	log.Info("wallets ranked", zap.Int("wallets", len(valid)))

	// Phase 2: operations
	phase = time.Now()
	var rows []*domain.RawOperation
	if len(wallets) > 0 {
		rows, err = o.ledger.FetchOperations(ctx, wallets, since, o.network.LimitPerWallet)
		if err != nil {
			return nil, fmt.Errorf("phase 2 (operations) failed: %w", err)
		}
	}
	o.observePhase("operations", phase)
	if o.metrics != nil {
		o.metrics.OperationsLoaded.Add(float64(len(rows)))
	}
	log.Info("phase 2: operations loaded", zap.Int("rows", len(rows)))

	// Phase 3: normalization
	phase = time.Now()
	norm := normalization.Normalize(rows)
	res.RowsRejected = len(norm.Rejected)
	for _, rej := range norm.Rejected {
		log.Debug("row rejected", zap.Int64("row_id", rej.RowID), zap.String("reason", rej.Reason))
	}
	if o.metrics != nil {
		o.metrics.RowsNormalized.Add(float64(norm.EventCount()))
		o.metrics.RowsRejected.WithLabelValues("invalid_wallet").Add(float64(len(norm.Rejected)))
	}
	o.observePhase("normalize", phase)
	log.Info("phase 3: rows normalized", zap.Int("events", norm.EventCount()), zap.Int("rejected", res.RowsRejected))

	// Phase 4: estimation
	phase = time.Now()
	inputs := make([]pnl.WalletInput, len(valid))
	for i, a := range valid {
		inputs[i] = pnl.WalletInput{
			WalletID:          a.WalletID,
			NumSwaps:          a.NumSwaps,
			TotalVolumeNative: a.TotalVolumeNative,
			Events:            norm.Events[a.WalletID],
		}
	}
	summaries, err := o.estimator.EstimateAll(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (estimate) failed: %w", err)
	}
	o.observePhase("estimate", phase)
	if o.metrics != nil {
		o.metrics.WalletsEstimated.Add(float64(len(summaries)))
		o.metrics.RoundTripsMatched.Add(float64(pnl.RoundTripCount(summaries)))
	}
	log.Info("phase 4: wallets estimated", zap.Int("summaries", len(summaries)))

	// Phase 5
	if err := o.selectCandidates(ctx, log, res, summaries, o.networkVariant); err != nil {
		return nil, err
	}
	return res, nil
}

// RunDomain analyses wallets trading the live assets of the given home domains.
// Phases:
//  1. Resolve domains to assets (failures are recorded, not fatal)
//  2. Fetch per-asset wallet flows
//  3. Aggregate flows into summaries
//  4. Filter, score, rank, persist and publish
func (o *Orchestrator) RunDomain(ctx context.Context, domains []string) (res *RunResult, err error) {
	if o.resolver == nil || o.flows == nil {
		return nil, fmt.Errorf("%w: resolver and flows", ErrMissingSource)
	}
	began := time.Now()
	defer func() { o.recordRun(domain.RunSourceDomain, began, err) }()
	start := o.now()
	res = o.newResult(domain.RunSourceDomain)
	log := o.logger.With(zap.String("run_id", res.RunID), zap.String("source", string(res.Source)))
	since := start.Add(-o.domainLookback)

	// Phase 1: discovery
	phase := time.Now()
	assets, errs := o.resolver.ResolveAll(ctx, domains)
	for _, e := range errs {
		res.addError("resolve: %v", e)
	}
	if o.metrics != nil {
		o.metrics.DomainErrors.Add(float64(len(errs)))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("phase 1 (resolve) failed: %w", err)
	}
	o.observePhase("resolve", phase)
	log.Info("phase 1: domains resolved", zap.Int("domains", len(domains)), zap.Int("assets", len(assets)))

	// Phase 2: flows
	phase = time.Now()
	var rows []*domain.AssetFlowRow
	for _, asset := range assets {
		assetRows, err := o.flows.FetchAssetFlows(ctx, asset, since)
		if err != nil {
			return nil, fmt.Errorf("phase 2 (flows %s) failed: %w", asset.Code, err)
		}
		rows = append(rows, assetRows...)
	}
	o.observePhase("flows", phase)
	log.Info("phase 2: flows loaded", zap.Int("rows", len(rows)))

	// Phase 3: aggregation
	var flows []*domain.WalletFlow
	for _, f := range ingestion.AggregateFlows(rows) {
		if err := normalization.ValidateWalletID(f.WalletID); err != nil {
			res.RowsRejected++
			res.addError("skip wallet %q: %v", f.WalletID, err)
			continue
		}
		flows = append(flows, f)
	}
	summaries := ingestion.FlowsToSummaries(flows)
	res.WalletsFetched = len(flows)
	if o.metrics != nil {
		o.metrics.WalletsFetched.WithLabelValues(string(res.Source)).Add(float64(len(flows)))
		o.metrics.RowsRejected.WithLabelValues("invalid_wallet").Add(float64(res.RowsRejected))
		o.metrics.WalletsEstimated.Add(float64(len(summaries)))
	}
	log.Info("phase 3: flows aggregated", zap.Int("wallets", len(flows)))

	// Phase 4
	if err := o.selectCandidates(ctx, log, res, summaries, o.domainVariant); err != nil {
		return nil, err
	}
	return res, nil
}

// selectCandidates runs the shared tail of both variants.
func (o *Orchestrator) selectCandidates(ctx context.Context, log *zap.Logger, res *RunResult, summaries []*domain.WalletPnLSummary, v Variant) error {
	res.SummariesEstimated = len(summaries)

	if o.summaryStore != nil {
		if err := o.summaryStore.InsertBulk(ctx, res.RunID, summaries); err != nil {
			res.addError("persist summaries: %v", err)
		}
	}
	if o.historyStore != nil {
		if err := o.historyStore.InsertBulk(ctx, res.RunID, summaries); err != nil {
			res.addError("persist summary history: %v", err)
		}
	}

	phase := time.Now()
	filtered := filter.New(v.Filter).Apply(summaries)
	res.CandidatesFiltered = len(filtered.Passed)
	if o.metrics != nil {
		o.metrics.CandidatesFiltered.WithLabelValues("passed").Add(float64(len(filtered.Passed)))
		o.metrics.CandidatesFiltered.WithLabelValues("rejected").Add(float64(len(filtered.Rejected)))
	}
	log.Info("candidates filtered",
		zap.Int("passed", len(filtered.Passed)),
		zap.Int("rejected", len(filtered.Rejected)),
		zap.Strings("common_pairs", filtered.CommonPairs),
	)

	records := scoring.New(v.Scoring).Score(filtered.Passed)
	set := ranking.New(o.ranking).Rank(records)
	set.RunID = res.RunID
	set.Source = res.Source
	set.GeneratedAt = o.now().UTC()
	o.observePhase("select", phase)

	res.Candidates = set
	res.Primary = len(set.PrimaryCandidates)
	res.Secondary = len(set.SecondaryCandidates)
	if o.metrics != nil {
		o.metrics.CandidatesRanked.WithLabelValues("primary").Add(float64(res.Primary))
		o.metrics.CandidatesRanked.WithLabelValues("secondary").Add(float64(res.Secondary))
	}

	if o.candidateStore != nil {
		if err := o.candidateStore.Insert(ctx, set); err != nil {
			res.addError("persist candidates: %v", err)
		}
	}
	if o.publisher != nil && v.SnapshotName != "" {
		if _, _, err := o.publisher.Publish(ctx, v.SnapshotName, set); err != nil {
			res.addError("publish snapshot: %v", err)
		} else if o.metrics != nil {
			o.metrics.SnapshotsPublished.Inc()
		}
	}

	log.Info("run complete",
		zap.Int("primary", res.Primary),
		zap.Int("secondary", res.Secondary),
		zap.Int("errors", len(res.Errors)),
	)
	return nil
}

func (o *Orchestrator) newResult(src domain.RunSource) *RunResult {
	return &RunResult{RunID: uuid.NewString(), Source: src}
}

func (o *Orchestrator) observePhase(name string, start time.Time) {
	if o.metrics != nil {
		o.metrics.ObservePhase(name, start)
	}
}

func (o *Orchestrator) recordRun(src domain.RunSource, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusFailure
	}
	o.metrics.RecordRun(string(src), status, start)
}
