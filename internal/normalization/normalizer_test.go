package normalization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
)

const (
	walletA = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"
	walletB = "GBMGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMZTGMU3C"
	issuer  = "GAAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQDZ7H"
)

func ptr(s string) *string { return &s }

func buyRow(id int64, wallet string, ts int64, spend, receive string) *domain.RawOperation {
	return &domain.RawOperation{
		ID:              id,
		SourceAccount:   wallet,
		Type:            domain.OpTypePathPayment,
		SourceAssetType: ptr("native"),
		SourceAmount:    ptr(spend),
		AssetType:       ptr("credit_alphanum4"),
		AssetCode:       ptr("USDC"),
		AssetIssuer:     ptr(issuer),
		Amount:          ptr(receive),
		CreatedAt:       ts,
	}
}

func TestNormalize_SortsByTimestampThenSequence(t *testing.T) {
	rows := []*domain.RawOperation{
		buyRow(30, walletA, 2000, "1", "1"),
		buyRow(20, walletA, 1000, "2", "2"),
		buyRow(10, walletA, 1000, "3", "3"),
	}

	res := Normalize(rows)

	require.Len(t, res.Events[walletA], 3)
	evs := res.Events[walletA]
	assert.Equal(t, int64(10), evs[0].Sequence)
	assert.Equal(t, int64(20), evs[1].Sequence)
	assert.Equal(t, int64(30), evs[2].Sequence)
	assert.Empty(t, res.Rejected)
}

func TestNormalize_TieOrderIgnoresAmounts(t *testing.T) {
	rows := []*domain.RawOperation{
		buyRow(2, walletA, 1000, "1", "1"),
		buyRow(1, walletA, 1000, "999", "999"),
	}

	evs := Normalize(rows).Events[walletA]

	require.Len(t, evs, 2)
	assert.Equal(t, 999.0, evs[0].SourceAmount)
	assert.Equal(t, 1.0, evs[1].SourceAmount)
}

func TestNormalize_RejectsBadWalletAndContinues(t *testing.T) {
	rows := []*domain.RawOperation{
		buyRow(1, "", 1000, "1", "1"),
		buyRow(2, "not-a-wallet", 1000, "1", "1"),
		buyRow(3, walletB, 1000, "1", "1"),
	}

	res := Normalize(rows)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, int64(1), res.Rejected[0].RowID)
	assert.True(t, errors.Is(res.Rejected[0], ErrInvalidWallet))
	assert.Equal(t, "not-a-wallet", res.Rejected[1].WalletID)
	assert.Equal(t, []string{walletB}, res.Wallets)
	assert.Equal(t, 1, res.EventCount())
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	rows := []*domain.RawOperation{{
		ID:              7,
		SourceAccount:   walletA,
		Type:            domain.OpTypePathPayment,
		SourceAssetType: ptr("credit_alphanum12"),
		SourceAmount:    ptr("NaN"),
		AssetType:       ptr("native"),
		CreatedAt:       5,
	}}

	evs := Normalize(rows).Events[walletA]

	require.Len(t, evs, 1)
	ev := evs[0]
	assert.Equal(t, domain.OperationPathPayment, ev.Kind)
	assert.Equal(t, domain.AssetKindIssued, ev.SourceAsset.Kind)
	assert.Equal(t, domain.UnknownAssetCode, ev.SourceAsset.Code)
	assert.Equal(t, 0.0, ev.SourceAmount)
	assert.Equal(t, domain.NativeAsset(), ev.DestAsset)
	assert.Equal(t, 0.0, ev.DestAmount)
}

func TestNormalize_PlainPaymentMirrorsAsset(t *testing.T) {
	rows := []*domain.RawOperation{{
		ID:            1,
		SourceAccount: walletA,
		Type:          domain.OpTypePayment,
		AssetType:     ptr("credit_alphanum4"),
		AssetCode:     ptr("AQUA"),
		AssetIssuer:   ptr(issuer),
		Amount:        ptr("12.5"),
	}}

	ev := Normalize(rows).Events[walletA][0]

	assert.Equal(t, ev.DestAsset, ev.SourceAsset)
	assert.Equal(t, 12.5, ev.SourceAmount)
	assert.Equal(t, domain.DirectionOther, ev.Direction())
}

func TestNormalizeRow_DirectionAndKeys(t *testing.T) {
	ev, err := NormalizeRow(buyRow(1, walletA, 1, "100.0000000", "50.0000000"))
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionAcquisition, ev.Direction())
	assert.Equal(t, domain.AssetKey("XLM"), ev.SourceAsset.Key())
	assert.Equal(t, domain.AssetKey("USDC:"+issuer), ev.DestAsset.Key())
	assert.Equal(t, 100.0, ev.SourceAmount)
	assert.Equal(t, 50.0, ev.DestAmount)
}

func TestSortSwapEvents(t *testing.T) {
	evs := []*domain.SwapEvent{
		{Timestamp: 3, Sequence: 1},
		{Timestamp: 1, Sequence: 9},
		{Timestamp: 1, Sequence: 2},
	}

	SortSwapEvents(evs)

	assert.Equal(t, int64(2), evs[0].Sequence)
	assert.Equal(t, int64(9), evs[1].Sequence)
	assert.Equal(t, int64(3), evs[2].Timestamp)
}
