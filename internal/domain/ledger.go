package domain

// RawOperation is one ledger row as delivered by the ledger data source.
// Any asset or amount field may be nil.
type RawOperation struct {
	ID                int64   // ledger operation id
	SourceAccount     string  // wallet id
	Type              int     // ledger operation type code
	SourceAssetType   *string // "native" | "credit_alphanum4" | "credit_alphanum12"
	SourceAssetCode   *string
	SourceAssetIssuer *string
	SourceAmount      *string // decimal string
	AssetType         *string
	AssetCode         *string
	AssetIssuer       *string
	Amount            *string // decimal string
	CreatedAt         int64   // Unix timestamp in milliseconds
}

// LedgerAssetTypeNative is the ledger's asset_type value for the native asset.
const LedgerAssetTypeNative = "native"
