package migration_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
)

type mockLegacyRepository struct {
	mock.Mock
}

func (m *mockLegacyRepository) GetAddressRecord(
	ctx context.Context,
) (*domain.AddressRecord, error) {
	args := m.Called(ctx)

	var res *domain.AddressRecord
	if a := args.Get(0); a != nil {
		res = a.(*domain.AddressRecord)
	}
	return res, args.Error(1)
}

type mockRepoManager struct {
	mock.Mock
}

func (m *mockRepoManager) AddressRecordRepository() domain.AddressRecordRepository {
	args := m.Called()
	return args.Get(0).(domain.AddressRecordRepository)
}

func (m *mockRepoManager) BackupRepository() domain.BackupRepository {
	args := m.Called()
	return args.Get(0).(domain.BackupRepository)
}

func (m *mockRepoManager) SeedRepository() domain.SeedRepository {
	args := m.Called()
	return args.Get(0).(domain.SeedRepository)
}

func (m *mockRepoManager) Close() {}

type memAddressRecordRepository struct {
	record *domain.AddressRecord
}

func (r *memAddressRecordRepository) GetAddressRecord(
	_ context.Context,
) (*domain.AddressRecord, error) {
	return r.record, nil
}

func (r *memAddressRecordRepository) UpdateAddressRecord(
	_ context.Context,
	updateFn func(r *domain.AddressRecord) (*domain.AddressRecord, error),
) error {
	updated, err := updateFn(r.record)
	if err != nil {
		return err
	}
	r.record = updated
	return nil
}
