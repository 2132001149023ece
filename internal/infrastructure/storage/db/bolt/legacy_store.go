package dbbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tdex-network/tdex-backup/internal/core/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	// DefaultDBTimeout is the time waited to acquire the file lock of the db.
	DefaultDBTimeout = 5 * time.Second
)

var (
	// AddressesBucketName is the name of the bucket holding the address lists
	// of the legacy wallet.
	AddressesBucketName = []byte("addresses")

	watchAddressesKey      = []byte("watchAddresses")
	privateKeyAddressesKey = []byte("addressesWithPrivateKeys")
	seedAddressesKey       = []byte("addressesWithSeed")
	protectedAddressesKey  = []byte("addressesProtectedByPresenceCheck")

	// ErrBucketNotFound specifies that there is no addresses bucket, which
	// can happen only if the store has been corrupted.
	ErrBucketNotFound = fmt.Errorf("addresses bucket not found")
	// ErrStoreNotFound is returned when opening a read-only store that
	// doesn't exist.
	ErrStoreNotFound = fmt.Errorf("legacy store not found")
)

// LegacyStore gives access to the address lists kept by previous versions of
// the wallet in a bolt db, one JSON encoded list per key.
type LegacyStore struct {
	db *bolt.DB
}

// NewLegacyStore opens (or creates if not exists) the bolt store at the given
// path.
func NewLegacyStore(dbPath string) (*LegacyStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: DefaultDBTimeout})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(AddressesBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &LegacyStore{db}, nil
}

// OpenLegacyStore opens an existing store in read-only mode.
func OpenLegacyStore(dbPath string) (*LegacyStore, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, ErrStoreNotFound
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout:  DefaultDBTimeout,
		ReadOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return &LegacyStore{db}, nil
}

// GetAddressRecord reads the four address lists. Missing lists are returned
// empty.
func (s *LegacyStore) GetAddressRecord(
	_ context.Context,
) (*domain.AddressRecord, error) {
	record := domain.NewAddressRecord()

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(AddressesBucketName)
		if bucket == nil {
			return ErrBucketNotFound
		}

		lists := []struct {
			key  []byte
			list *[]string
		}{
			{watchAddressesKey, &record.WatchAddresses},
			{privateKeyAddressesKey, &record.AddressesWithPrivateKeys},
			{seedAddressesKey, &record.AddressesWithSeed},
			{protectedAddressesKey, &record.AddressesProtectedByPresenceCheck},
		}
		for _, l := range lists {
			data := bucket.Get(l.key)
			if data == nil {
				continue
			}
			if err := json.Unmarshal(data, l.list); err != nil {
				return fmt.Errorf("failed to decode %s: %w", l.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.Normalize()
	return record, nil
}

// PutAddressRecord overwrites the four address lists.
func (s *LegacyStore) PutAddressRecord(
	_ context.Context, record domain.AddressRecord,
) error {
	record.Normalize()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(AddressesBucketName)
		if bucket == nil {
			return ErrBucketNotFound
		}

		lists := []struct {
			key  []byte
			list []string
		}{
			{watchAddressesKey, record.WatchAddresses},
			{privateKeyAddressesKey, record.AddressesWithPrivateKeys},
			{seedAddressesKey, record.AddressesWithSeed},
			{protectedAddressesKey, record.AddressesProtectedByPresenceCheck},
		}
		for _, l := range lists {
			data, err := json.Marshal(l.list)
			if err != nil {
				return err
			}
			if err := bucket.Put(l.key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close ...
func (s *LegacyStore) Close() error {
	return s.db.Close()
}
