package domain

import "context"

// EncryptedSeed holds the encrypted mnemonic of an HD wallet.
type EncryptedSeed struct {
	Address        string
	EncryptedWords string
	CreatedAt      int64
}

// SeedRepository is the abstraction for any kind of database intended to
// persist the encrypted mnemonics of HD wallets.
type SeedRepository interface {
	// AddSeed stores the seed, failing if one exists for the same address.
	AddSeed(ctx context.Context, seed EncryptedSeed) error
	// GetSeed returns the seed of the given address or ErrSeedNotFound.
	GetSeed(ctx context.Context, address string) (*EncryptedSeed, error)
}
