// Package stub provides in-memory ingestion sources for tests and dry runs.
package stub

import (
	"context"
	"sort"
	"time"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/ingestion"
)

// LedgerSource serves fixed activity and operations.
// Implements ingestion.LedgerSource.
type LedgerSource struct {
	Activity   []*domain.WalletActivity
	Operations []*domain.RawOperation
	Err        error // returned by every fetch when set
}

var _ ingestion.LedgerSource = (*LedgerSource)(nil)

// FetchWalletActivity returns activity rows with at least minSwaps swaps,
// ordered by swap count DESC, truncated to limit. since is ignored.
func (s *LedgerSource) FetchWalletActivity(_ context.Context, _ time.Time, minSwaps, limit int) ([]*domain.WalletActivity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*domain.WalletActivity
	for _, a := range s.Activity {
		if a.NumSwaps >= minSwaps {
			c := *a
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NumSwaps > out[j].NumSwaps })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FetchOperations returns copies of operations for the given wallets created
// at or after since, at most limitPerWallet most recent per wallet.
func (s *LedgerSource) FetchOperations(_ context.Context, wallets []string, since time.Time, limitPerWallet int) ([]*domain.RawOperation, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	want := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		want[w] = struct{}{}
	}

	byWallet := make(map[string][]*domain.RawOperation)
	for _, op := range s.Operations {
		if _, ok := want[op.SourceAccount]; !ok || op.CreatedAt < since.UnixMilli() {
			continue
		}
		c := *op
		byWallet[op.SourceAccount] = append(byWallet[op.SourceAccount], &c)
	}

	var out []*domain.RawOperation
	for _, w := range wallets {
		ops := byWallet[w]
		sort.SliceStable(ops, func(i, j int) bool { return ops[i].CreatedAt > ops[j].CreatedAt })
		if limitPerWallet > 0 && len(ops) > limitPerWallet {
			ops = ops[:limitPerWallet]
		}
		out = append(out, ops...)
	}
	return out, nil
}

// FlowSource serves fixed flow rows keyed by asset code.
// Implements ingestion.FlowSource.
type FlowSource struct {
	Rows map[string][]*domain.AssetFlowRow
	Err  error
}

var _ ingestion.FlowSource = (*FlowSource)(nil)

// FetchAssetFlows returns copies of the rows registered for the asset code.
func (s *FlowSource) FetchAssetFlows(_ context.Context, asset domain.IssuedAssetRef, _ time.Time) ([]*domain.AssetFlowRow, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*domain.AssetFlowRow
	for _, r := range s.Rows[asset.Code] {
		c := *r
		c.Asset = asset
		out = append(out, &c)
	}
	return out, nil
}
