package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const addressRecordKey = "addressRecord"

type addressRecordRepositoryImpl struct {
	store *badgerhold.Store
}

func NewAddressRecordRepositoryImpl(
	store *badgerhold.Store,
) domain.AddressRecordRepository {
	return &addressRecordRepositoryImpl{store}
}

func (r *addressRecordRepositoryImpl) GetAddressRecord(
	_ context.Context,
) (*domain.AddressRecord, error) {
	var record *domain.AddressRecord
	err := r.store.Badger().View(func(tx *badger.Txn) error {
		var err error
		record, err = r.getRecord(tx)
		return err
	})
	return record, err
}

func (r *addressRecordRepositoryImpl) UpdateAddressRecord(
	_ context.Context,
	updateFn func(r *domain.AddressRecord) (*domain.AddressRecord, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		record, err := r.getRecord(tx)
		if err != nil {
			return err
		}

		updatedRecord, err := updateFn(record)
		if err != nil {
			return err
		}
		updatedRecord.Normalize()

		return r.store.TxUpsert(tx, addressRecordKey, *updatedRecord)
	})
}

func (r *addressRecordRepositoryImpl) getRecord(
	tx *badger.Txn,
) (*domain.AddressRecord, error) {
	var record domain.AddressRecord
	if err := r.store.TxGet(tx, addressRecordKey, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.NewAddressRecord(), nil
		}
		return nil, err
	}
	record.Normalize()
	return &record, nil
}
