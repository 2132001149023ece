package domain

import "context"

// AddressRecordRepository is the abstraction for any kind of database
// intended to persist the AddressRecord of the wallet.
type AddressRecordRepository interface {
	// GetAddressRecord returns the stored record, or an empty one if not
	// found.
	GetAddressRecord(ctx context.Context) (*AddressRecord, error)
	// UpdateAddressRecord allows to commit multiple changes to the record in
	// a transactional way.
	UpdateAddressRecord(
		ctx context.Context,
		updateFn func(r *AddressRecord) (*AddressRecord, error),
	) error
}

// LegacyAddressRecordRepository gives read access to the record kept by
// previous versions of the wallet.
type LegacyAddressRecordRepository interface {
	GetAddressRecord(ctx context.Context) (*AddressRecord, error)
}
