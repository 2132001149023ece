package service

import "context"

// Opts are the settings shared by every migration.
type Opts struct {
	// Datadir is the data directory of the backup tool.
	Datadir string
	// LegacyDbPath is the path of the store of the previous version.
	LegacyDbPath string
	// NoBackup skips making a compressed archive of the legacy store.
	NoBackup bool
}

type Service interface {
	Migrate(ctx context.Context, opts Opts) error
}
