package ingestion

import (
	"context"
	"time"

	"stellar-copytrade-lab/internal/domain"
)

// LedgerSource provides network-wide ledger history.
type LedgerSource interface {
	// FetchWalletActivity returns wallets with at least minSwaps swap
	// operations since the given time, ordered by swap count DESC, at most limit.
	FetchWalletActivity(ctx context.Context, since time.Time, minSwaps, limit int) ([]*domain.WalletActivity, error)

	// FetchOperations returns up to limitPerWallet most recent swap operations
	// per wallet since the given time. Rows may be unordered.
	FetchOperations(ctx context.Context, wallets []string, since time.Time, limitPerWallet int) ([]*domain.RawOperation, error)
}

// FlowSource provides per-asset native flow aggregates.
type FlowSource interface {
	// FetchAssetFlows returns one row per wallet that traded asset since the given time.
	FetchAssetFlows(ctx context.Context, asset domain.IssuedAssetRef, since time.Time) ([]*domain.AssetFlowRow, error)
}

// Default fetch parameters.
const (
	DefaultNetworkLookback = 36 * time.Hour
	DefaultDomainLookback  = 48 * time.Hour
	DefaultMinSwaps        = 5
	DefaultWalletLimit     = 1000
	DefaultLimitPerWallet  = 200
	DefaultBatchSize       = 100

	// ContractInvokeVolume is the flat native volume credited to a contract
	// invocation, whose amounts are not visible in operation details.
	ContractInvokeVolume = 100.0
)
