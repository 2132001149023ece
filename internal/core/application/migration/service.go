package migration

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

// Service copies the address record kept by previous versions of the wallet
// into the current repository.
type Service struct {
	legacyRepo  domain.LegacyAddressRecordRepository
	repoManager ports.RepoManager
}

func NewService(
	legacyRepo domain.LegacyAddressRecordRepository, repoManager ports.RepoManager,
) (*Service, error) {
	if legacyRepo == nil {
		return nil, fmt.Errorf("missing legacy address record repository")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{legacyRepo, repoManager}, nil
}

// Migrate overwrites the four address lists of the current record with those
// of the legacy one, and returns the resulting record. Running it twice
// yields the same state.
func (s *Service) Migrate(ctx context.Context) (*domain.AddressRecord, error) {
	start := time.Now()
	log.Info("migrating address record...")

	source, err := s.legacyRepo.GetAddressRecord(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy address record: %w", err)
	}
	source.Normalize()

	var migrated *domain.AddressRecord
	if err := s.repoManager.AddressRecordRepository().UpdateAddressRecord(
		ctx,
		func(destination *domain.AddressRecord) (*domain.AddressRecord, error) {
			record := domain.MigrateAddressRecord(*source, *destination)
			migrated = &record
			return migrated, nil
		},
	); err != nil {
		return nil, fmt.Errorf("failed to update address record: %w", err)
	}

	log.WithFields(log.Fields{
		"watch":       len(migrated.WatchAddresses),
		"private_key": len(migrated.AddressesWithPrivateKeys),
		"seed":        len(migrated.AddressesWithSeed),
		"protected":   len(migrated.AddressesProtectedByPresenceCheck),
	}).Infof("address record migrated in %fs", time.Since(start).Seconds())

	return migrated, nil
}
