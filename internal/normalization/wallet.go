package normalization

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/stellar/go/strkey"
)

const (
	walletIDLength    = 56
	accountPayloadLen = 32
)

// ValidateWalletID checks that id is an account strkey whose payload
// decodes to an ed25519 curve point.
func ValidateWalletID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidWallet)
	}
	if len(id) != walletIDLength || id[0] != 'G' {
		return fmt.Errorf("%w: %q is not a 56-character account key", ErrInvalidWallet, id)
	}

	key, err := strkey.Decode(strkey.VersionByteAccountID, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	if len(key) != accountPayloadLen {
		return fmt.Errorf("%w: payload length %d", ErrInvalidWallet, len(key))
	}

	if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
		return fmt.Errorf("%w: public key is not a curve point", ErrInvalidWallet)
	}
	return nil
}
