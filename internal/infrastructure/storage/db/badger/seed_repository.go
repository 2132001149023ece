package dbbadger

import (
	"context"
	"strings"

	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type seedRepositoryImpl struct {
	store *badgerhold.Store
}

func NewSeedRepositoryImpl(store *badgerhold.Store) domain.SeedRepository {
	return &seedRepositoryImpl{store}
}

func (r *seedRepositoryImpl) AddSeed(
	_ context.Context, seed domain.EncryptedSeed,
) error {
	if err := r.store.Insert(seedKey(seed.Address), seed); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExists
		}
		return err
	}
	return nil
}

func (r *seedRepositoryImpl) GetSeed(
	_ context.Context, address string,
) (*domain.EncryptedSeed, error) {
	var seed domain.EncryptedSeed
	if err := r.store.Get(seedKey(address), &seed); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrSeedNotFound
		}
		return nil, err
	}
	return &seed, nil
}

func seedKey(address string) string {
	return strings.ToLower(address)
}
