package adapter

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/wallet-roaster/internal/errors"
)

// PublicKeyLength is the decoded size of a Solana account address
const PublicKeyLength = 32

// ValidateAddress checks that address is base58 for a 32-byte public key
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) != address || address == "" {
		return errors.NewInvalidIdentifierError(address, fmt.Errorf("empty or padded address"))
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return errors.NewInvalidIdentifierError(address, err)
	}
	if len(decoded) != PublicKeyLength {
		return errors.NewInvalidIdentifierError(address,
			fmt.Errorf("decoded to %d bytes, want %d", len(decoded), PublicKeyLength))
	}
	return nil
}
