package ports

import "github.com/tdex-network/tdex-backup/internal/core/domain"

// RepoManager interface defines the methods for address records, backups and
// seeds.
type RepoManager interface {
	AddressRecordRepository() domain.AddressRecordRepository
	BackupRepository() domain.BackupRepository
	SeedRepository() domain.SeedRepository
	Close()
}
