package keymanager

import (
	"errors"

	"github.com/tdex-network/tdex-backup/internal/core/domain"
)

var (
	// ErrPasswordTooShort ...
	ErrPasswordTooShort = errors.New("password is too short")
	// ErrInvalidPassword ...
	ErrInvalidPassword = domain.ErrInvalidPassword
	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = errors.New("private key must be a 32 bytes hex string")
	// ErrPresenceLockUnavailable ...
	ErrPresenceLockUnavailable = errors.New("user presence lock is not available")
	// ErrSeedMismatch is returned if the decrypted mnemonic does not derive
	// the address it's stored for.
	ErrSeedMismatch = errors.New("stored seed does not match account address")
	// ErrNotHDWallet ...
	ErrNotHDWallet = errors.New("account is not derived from a seed phrase")
	// ErrNotPrivateKeyWallet ...
	ErrNotPrivateKeyWallet = errors.New("account has no imported private key")
)
