package normalization

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"stellar-copytrade-lab/internal/domain"
)

// Result holds the output of one normalization batch.
type Result struct {
	// Events maps wallet id to its time-ordered swap events.
	Events map[string][]*domain.SwapEvent
	// Wallets lists wallet ids in first-seen order.
	Wallets []string
	// Rejected holds one entry per row dropped for a bad wallet id.
	Rejected []*ValidationError
}

// EventCount returns the number of accepted events.
func (r *Result) EventCount() int {
	n := 0
	for _, evs := range r.Events {
		n += len(evs)
	}
	return n
}

// Normalize converts raw ledger rows into per-wallet swap event sequences.
// Rows may arrive in any order. A row with an empty or malformed wallet id
// is rejected and recorded; every other missing field is defaulted.
func Normalize(rows []*domain.RawOperation) *Result {
	res := &Result{Events: make(map[string][]*domain.SwapEvent)}

	for _, row := range rows {
		if row == nil {
			continue
		}
		ev, err := NormalizeRow(row)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				res.Rejected = append(res.Rejected, verr)
			}
			continue
		}
		if _, seen := res.Events[ev.WalletID]; !seen {
			res.Wallets = append(res.Wallets, ev.WalletID)
		}
		res.Events[ev.WalletID] = append(res.Events[ev.WalletID], ev)
	}

	for _, evs := range res.Events {
		SortSwapEvents(evs)
	}
	return res
}

// NormalizeRow converts a single raw row into a swap event.
func NormalizeRow(row *domain.RawOperation) (*domain.SwapEvent, error) {
	if err := ValidateWalletID(row.SourceAccount); err != nil {
		return nil, &ValidationError{
			RowID:    row.ID,
			WalletID: row.SourceAccount,
			Reason:   err.Error(),
			Err:      err,
		}
	}

	dest := parseAsset(row.AssetType, row.AssetCode, row.AssetIssuer)
	destAmount := parseAmount(row.Amount)

	var source domain.Asset
	var sourceAmount float64
	if row.SourceAssetType == nil && row.SourceAssetCode == nil && row.Type == domain.OpTypePayment {
		// A plain payment moves one asset; it has no source_asset_* details.
		source = dest
		sourceAmount = destAmount
	} else {
		source = parseAsset(row.SourceAssetType, row.SourceAssetCode, row.SourceAssetIssuer)
		sourceAmount = parseAmount(row.SourceAmount)
	}

	return &domain.SwapEvent{
		WalletID:     row.SourceAccount,
		Timestamp:    row.CreatedAt,
		Sequence:     row.ID,
		Kind:         domain.OperationKindFromType(row.Type),
		SourceAsset:  source,
		SourceAmount: sourceAmount,
		DestAsset:    dest,
		DestAmount:   destAmount,
	}, nil
}

// parseAsset builds an asset from nullable ledger fields. A missing asset
// type is read as native unless a code is present.
func parseAsset(assetType, code, issuer *string) domain.Asset {
	t := deref(assetType)
	c := deref(code)
	if t == domain.LedgerAssetTypeNative || (t == "" && c == "") {
		return domain.NativeAsset()
	}
	return domain.IssuedAsset(c, deref(issuer))
}

// parseAmount parses a decimal amount string. Missing, unparsable and
// non-finite values become 0.
func parseAmount(s *string) float64 {
	if s == nil || *s == "" {
		return 0
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return 0
	}
	return SanitizeFloat(d.InexactFloat64())
}

// SanitizeFloat maps NaN and ±Inf to 0.
func SanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
