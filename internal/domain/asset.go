package domain

// NativeCode is the display code of the chain's base asset.
const NativeCode = "XLM"

// UnknownAssetCode replaces a missing asset code on an issued asset.
// It is kept as a distinct asset rather than dropped.
const UnknownAssetCode = "UNKNOWN"

// AssetKind distinguishes the native asset from issued (credit) assets.
type AssetKind string

const (
	AssetKindNative AssetKind = "native"
	AssetKindIssued AssetKind = "issued"
)

// Asset identifies one side of a swap.
type Asset struct {
	Kind   AssetKind `json:"kind"`
	Code   string    `json:"code"`
	Issuer string    `json:"issuer,omitempty"`
}

// NativeAsset returns the native asset.
func NativeAsset() Asset {
	return Asset{Kind: AssetKindNative, Code: NativeCode}
}

// IssuedAsset returns an issued asset. An empty code becomes UnknownAssetCode.
func IssuedAsset(code, issuer string) Asset {
	if code == "" {
		code = UnknownAssetCode
	}
	return Asset{Kind: AssetKindIssued, Code: code, Issuer: issuer}
}

// IsNative reports whether a is the native asset.
func (a Asset) IsNative() bool {
	return a.Kind == AssetKindNative
}

// Key returns the identity used for trade matching.
func (a Asset) Key() AssetKey {
	if a.IsNative() {
		return AssetKey(NativeCode)
	}
	return AssetKey(a.Code + ":" + a.Issuer)
}

// AssetKey is the matching identity of an asset: the native code for the
// native asset, "code:issuer" otherwise.
type AssetKey string

// IssuedAssetRef is an (asset_code, asset_issuer) pair produced by domain
// asset discovery.
type IssuedAssetRef struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer"`
}

// Asset converts the reference to an issued Asset.
func (r IssuedAssetRef) Asset() Asset {
	return IssuedAsset(r.Code, r.Issuer)
}
