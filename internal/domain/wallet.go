package domain

// WalletActivity is a wallet's swap activity over the lookback window,
// produced by the wallet ranking stage.
type WalletActivity struct {
	WalletID          string  `json:"wallet_id"`
	NumSwaps          int     `json:"num_swaps"`
	TotalVolumeNative float64 `json:"total_volume_native"`
}

// AssetFlow is a wallet's native flow against one issued asset.
type AssetFlow struct {
	NumSwaps       int     `json:"num_swaps"`
	NativeInflows  float64 `json:"native_inflows"`
	NativeOutflows float64 `json:"native_outflows"`
}

// AssetFlowRow is one per-wallet row returned for a single discovered asset.
type AssetFlowRow struct {
	WalletID string
	Asset    IssuedAssetRef
	AssetFlow
}

// WalletFlow aggregates a wallet's native flows across the assets of a domain.
type WalletFlow struct {
	WalletID       string               `json:"wallet_id"`
	NumSwaps       int                  `json:"num_swaps"`
	NativeInflows  float64              `json:"native_inflows"`
	NativeOutflows float64              `json:"native_outflows"`
	AssetsTraded   map[string]AssetFlow `json:"assets_traded"` // keyed by asset code
	AssetOrder     []string             `json:"-"`             // asset codes in first-seen order
}

// NetNativeFlow returns inflows minus outflows.
func (f *WalletFlow) NetNativeFlow() float64 {
	return f.NativeInflows - f.NativeOutflows
}
