package domain

// OperationKind is the ledger operation that produced a swap event.
type OperationKind string

const (
	OperationPayment        OperationKind = "payment"
	OperationPathPayment    OperationKind = "path_payment"
	OperationContractInvoke OperationKind = "contract_invoke"
)

// Ledger operation type codes.
const (
	OpTypePayment        = 2
	OpTypePathPayment    = 13
	OpTypeContractInvoke = 24
)

// OperationKindFromType maps a ledger operation type code to its kind.
// Unknown codes map to OperationPayment.
func OperationKindFromType(opType int) OperationKind {
	switch opType {
	case OpTypePathPayment:
		return OperationPathPayment
	case OpTypeContractInvoke:
		return OperationContractInvoke
	default:
		return OperationPayment
	}
}

// SwapEvent is one normalized ledger operation for a wallet.
// Immutable once produced by the normalizer.
type SwapEvent struct {
	WalletID     string        // source account
	Timestamp    int64         // Unix timestamp in milliseconds
	Sequence     int64         // ledger operation id, tie-breaker for equal timestamps
	Kind         OperationKind // payment | path_payment | contract_invoke
	SourceAsset  Asset         // asset spent
	SourceAmount float64       // amount spent (0 when absent)
	DestAsset    Asset         // asset received
	DestAmount   float64       // amount received (0 when absent)
}

// SwapDirection classifies an event relative to the native asset.
type SwapDirection int

const (
	// DirectionOther covers native-to-native and issued-to-issued events.
	DirectionOther SwapDirection = iota
	// DirectionAcquisition spends native to acquire an issued asset.
	DirectionAcquisition
	// DirectionDisposal spends an issued asset to receive native.
	DirectionDisposal
)

// Direction returns the matching classification of the event.
func (e *SwapEvent) Direction() SwapDirection {
	switch {
	case e.SourceAsset.IsNative() && !e.DestAsset.IsNative():
		return DirectionAcquisition
	case !e.SourceAsset.IsNative() && e.DestAsset.IsNative():
		return DirectionDisposal
	default:
		return DirectionOther
	}
}
