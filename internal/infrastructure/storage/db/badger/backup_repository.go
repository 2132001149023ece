package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type backupRepositoryImpl struct {
	store *badgerhold.Store
}

func NewBackupRepositoryImpl(store *badgerhold.Store) domain.BackupRepository {
	return &backupRepositoryImpl{store}
}

func (r *backupRepositoryImpl) AddBackup(
	_ context.Context, record domain.BackupRecord,
) error {
	if err := r.store.Insert(record.Id, record); err != nil {
		if err == badgerhold.ErrKeyExists {
			return ErrBackupAlreadyExists
		}
		return err
	}
	return nil
}

func (r *backupRepositoryImpl) ListBackups(
	_ context.Context,
) ([]domain.BackupRecord, error) {
	query := (&badgerhold.Query{}).SortBy("CompletedAt")
	return r.findBackups(query)
}

func (r *backupRepositoryImpl) ListBackupsForAddress(
	_ context.Context, address string,
) ([]domain.BackupRecord, error) {
	query := badgerhold.Where("Address").Eq(address).SortBy("CompletedAt")
	return r.findBackups(query)
}

func (r *backupRepositoryImpl) LastBackup(
	_ context.Context, address string,
) (*domain.BackupRecord, error) {
	query := badgerhold.Where("Address").Eq(address).
		SortBy("CompletedAt").Reverse().Limit(1)
	records, err := r.findBackups(query)
	if err != nil {
		return nil, err
	}
	if len(records) <= 0 {
		return nil, domain.ErrBackupNotFound
	}
	return &records[0], nil
}

func (r *backupRepositoryImpl) findBackups(
	query *badgerhold.Query,
) ([]domain.BackupRecord, error) {
	var records []domain.BackupRecord
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.BackupRecord{}
	}
	return records, nil
}
