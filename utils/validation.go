package utils

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/solpay/x402-go/types"
)

// ValidateWalletAddress checks that address is a well-formed base58 Solana
// public key.
func ValidateWalletAddress(address string) error {
	if address == "" {
		return fmt.Errorf("wallet address cannot be empty")
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid Solana wallet address: %w", err)
	}
	return nil
}

// ValidateTransactionSignature checks that sig is a well-formed base58
// Solana transaction signature.
func ValidateTransactionSignature(sig string) error {
	if sig == "" {
		return fmt.Errorf("transaction signature cannot be empty")
	}
	if _, err := solana.SignatureFromBase58(sig); err != nil {
		return fmt.Errorf("invalid Solana transaction signature: %w", err)
	}
	return nil
}

// ValidateAmount checks that an amount is positive and returns it.
func ValidateAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be negative")
	}
	if amount.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be zero")
	}
	return amount, nil
}

// ValidateDigestHex checks that s looks like a lowercase SHA-256 hex digest.
func ValidateDigestHex(s string) error {
	if len(s) != 64 {
		return fmt.Errorf("digest must be 64 hex characters, got %d", len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("digest must be lowercase hex")
		}
	}
	return nil
}

// ValidateNetwork checks that network names a supported Solana cluster.
func ValidateNetwork(network string) error {
	return types.Network(network).Validate()
}
