package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type repoManager struct {
	addressStore *badgerhold.Store
	backupStore  *badgerhold.Store
	seedStore    *badgerhold.Store

	addressRepository domain.AddressRecordRepository
	backupRepository  domain.BackupRepository
	seedRepository    domain.SeedRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk
// under the given base dir, one dedicated directory for address records,
// backups and seeds. If baseDbDir is empty, the stores are kept in memory.
// The logger is optional.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var addressDir, backupDir, seedDir string
	if len(baseDbDir) > 0 {
		addressDir = filepath.Join(baseDbDir, "addresses")
		backupDir = filepath.Join(baseDbDir, "backups")
		seedDir = filepath.Join(baseDbDir, "seeds")
	}

	addressDb, err := createDb(addressDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening address db: %w", err)
	}

	backupDb, err := createDb(backupDir, logger)
	if err != nil {
		addressDb.Close()
		return nil, fmt.Errorf("opening backup db: %w", err)
	}

	seedDb, err := createDb(seedDir, logger)
	if err != nil {
		addressDb.Close()
		backupDb.Close()
		return nil, fmt.Errorf("opening seed db: %w", err)
	}

	return &repoManager{
		addressStore:      addressDb,
		backupStore:       backupDb,
		seedStore:         seedDb,
		addressRepository: NewAddressRecordRepositoryImpl(addressDb),
		backupRepository:  NewBackupRepositoryImpl(backupDb),
		seedRepository:    NewSeedRepositoryImpl(seedDb),
	}, nil
}

func (r *repoManager) AddressRecordRepository() domain.AddressRecordRepository {
	return r.addressRepository
}

func (r *repoManager) BackupRepository() domain.BackupRepository {
	return r.backupRepository
}

func (r *repoManager) SeedRepository() domain.SeedRepository {
	return r.seedRepository
}

func (r *repoManager) Close() {
	r.addressStore.Close()
	r.backupStore.Close()
	r.seedStore.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
