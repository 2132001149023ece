package domain

import (
	"encoding/hex"
	"strings"
)

// MinPasswordLength is the shortest password accepted to protect a wallet or
// a backup. Configured lengths can only raise it.
const MinPasswordLength = 6

// WalletOrigin tells how the keys of a wallet have been obtained.
type WalletOrigin int

const (
	// WalletOriginHD is for wallets derived from a seed phrase.
	WalletOriginHD WalletOrigin = iota
	// WalletOriginPrivateKey is for wallets imported from a raw private key and
	// protected by a password.
	WalletOriginPrivateKey
	// WalletOriginWatch is for watch-only addresses.
	WalletOriginWatch
)

func (o WalletOrigin) String() string {
	switch o {
	case WalletOriginHD:
		return "hd"
	case WalletOriginPrivateKey:
		return "private-key"
	case WalletOriginWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// Wallet identifies an account by its address and origin.
type Wallet struct {
	Address string
	Origin  WalletOrigin
}

// IsHD returns whether the wallet is derived from a seed phrase.
func (w Wallet) IsHD() bool {
	return w.Origin == WalletOriginHD
}

// IsWatch returns whether the wallet is watch-only.
func (w Wallet) IsWatch() bool {
	return w.Origin == WalletOriginWatch
}

// ValidateAddress makes sure the given string is a 0x prefixed hex encoded
// 20 bytes account address.
func ValidateAddress(address string) error {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return ErrInvalidAddress
	}
	if _, err := hex.DecodeString(address[2:]); err != nil {
		return ErrInvalidAddress
	}
	return nil
}
