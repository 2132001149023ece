package domain

import "context"

// BackupRecord is the history entry of a completed backup.
type BackupRecord struct {
	Id          string
	Address     string
	Method      BackupMethod
	Shared      bool
	Elevated    bool
	CompletedAt int64
}

// BackupRepository is the abstraction for any kind of database intended to
// persist the history of completed backups.
type BackupRepository interface {
	// AddBackup stores a new record.
	AddBackup(ctx context.Context, record BackupRecord) error
	// ListBackups returns all records sorted by completion time.
	ListBackups(ctx context.Context) ([]BackupRecord, error)
	// ListBackupsForAddress returns the records of the given address sorted
	// by completion time.
	ListBackupsForAddress(ctx context.Context, address string) ([]BackupRecord, error)
	// LastBackup returns the most recent record for the given address or
	// ErrBackupNotFound.
	LastBackup(ctx context.Context, address string) (*BackupRecord, error)
}
