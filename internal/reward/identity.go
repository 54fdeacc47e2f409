package reward

import (
	"fmt"
	"regexp"
	"strings"

	"quiz-royale/internal/domain"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddress validates a wallet address and lower-cases it for use as a ledger key.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !addressPattern.MatchString(address) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	return strings.ToLower(address), nil
}

// CheckNetwork compares the chain id reported by the wallet with the expected one.
// Chain ids compare as hex quantities, so "0xAA36A7" matches "0xaa36a7".
func CheckNetwork(chainID, expected string) error {
	if expected == "" {
		return nil
	}
	if !strings.EqualFold(strings.TrimSpace(chainID), expected) {
		return fmt.Errorf("%w: got %q, want %q", domain.ErrWrongNetwork, chainID, expected)
	}
	return nil
}
