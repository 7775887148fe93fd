package normalization

import (
	"errors"
	"fmt"
)

// ErrInvalidWallet is returned when a wallet identifier is empty or malformed.
var ErrInvalidWallet = errors.New("invalid wallet id")

// ValidationError describes a raw ledger row rejected by the normalizer.
type ValidationError struct {
	RowID    int64
	WalletID string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d (wallet %q): %s", e.RowID, e.WalletID, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
