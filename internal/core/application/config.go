package application

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/application/backup"
	"github.com/tdex-network/tdex-backup/internal/core/application/migration"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/tdex-network/tdex-backup/internal/infrastructure/artifact"
	"github.com/tdex-network/tdex-backup/internal/infrastructure/keymanager"
	dbbadger "github.com/tdex-network/tdex-backup/internal/infrastructure/storage/db/badger"
	dbbolt "github.com/tdex-network/tdex-backup/internal/infrastructure/storage/db/bolt"
)

// FlowFactoryBuilder returns the factory of the child flows of a backup. It's
// given the key manager since flows need to reveal seeds and lock accounts.
type FlowFactoryBuilder func(keyManager ports.KeyManager) (ports.FlowFactory, error)

// Config builds lazily the services of the application and their
// dependencies. An empty DbDir makes the repositories live in memory.
type Config struct {
	DbDir        string
	KeystoreDir  string
	ScratchDir   string
	LegacyDbPath string

	ScryptN int
	ScryptP int

	PresenceLockAvailable  bool
	RequireShareCompletion bool
	SuccessOverlayDelay    time.Duration
	MinPasswordLength      int

	Authenticator ports.Authenticator
	ShareSheet    ports.ShareSheet
	Presenter     ports.Presenter
	Flows         FlowFactoryBuilder

	repo       ports.RepoManager
	keyManager *keymanager.Manager
	artifacts  *artifact.FileSink
	backup     *backup.Service
	legacy     *dbbolt.LegacyStore
	migration  *migration.Service
}

func (c *Config) Validate() error {
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.keyManagerService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) KeyManager() *keymanager.Manager {
	km, _ := c.keyManagerService()
	return km
}

func (c *Config) BackupService() (*backup.Service, error) {
	return c.backupService()
}

func (c *Config) MigrationService() (*migration.Service, error) {
	return c.migrationService()
}

// Close releases the storage opened by the services built so far.
func (c *Config) Close() {
	if c.legacy != nil {
		if err := c.legacy.Close(); err != nil {
			log.WithError(err).Warn("failed to close legacy address store")
		}
		c.legacy = nil
	}
	if c.repo != nil {
		c.repo.Close()
		c.repo = nil
	}
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		repo, err := dbbadger.NewRepoManager(c.DbDir, log.New())
		if err != nil {
			return nil, err
		}
		c.repo = repo
	}
	return c.repo, nil
}

func (c *Config) keyManagerService() (*keymanager.Manager, error) {
	if c.keyManager == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		km, err := keymanager.NewManager(keymanager.Opts{
			KeystoreDir:           c.KeystoreDir,
			ScryptN:               c.ScryptN,
			ScryptP:               c.ScryptP,
			RepoManager:           repo,
			Authenticator:         c.Authenticator,
			PresenceLockAvailable: c.PresenceLockAvailable,
			MinPasswordLength:     c.MinPasswordLength,
		})
		if err != nil {
			return nil, err
		}
		c.keyManager = km
	}
	return c.keyManager, nil
}

func (c *Config) artifactSink() (*artifact.FileSink, error) {
	if c.artifacts == nil {
		sink, err := artifact.NewFileSink(c.ScratchDir)
		if err != nil {
			return nil, err
		}
		count, err := sink.Purge()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			log.Warnf("removed %d leftover backup files from scratch dir", count)
		}
		c.artifacts = sink
	}
	return c.artifacts, nil
}

func (c *Config) backupService() (*backup.Service, error) {
	if c.backup == nil {
		if c.Flows == nil {
			return nil, fmt.Errorf("missing flow factory builder")
		}
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		km, err := c.keyManagerService()
		if err != nil {
			return nil, err
		}
		sink, err := c.artifactSink()
		if err != nil {
			return nil, err
		}
		flows, err := c.Flows(km)
		if err != nil {
			return nil, err
		}

		svc, err := backup.NewService(backup.ServiceOpts{
			RepoManager:            repo,
			KeyManager:             km,
			Flows:                  flows,
			Artifacts:              sink,
			ShareSheet:             c.ShareSheet,
			Presenter:              c.Presenter,
			RequireShareCompletion: c.RequireShareCompletion,
			SuccessOverlayDelay:    c.SuccessOverlayDelay,
		})
		if err != nil {
			return nil, err
		}
		c.backup = svc
	}
	return c.backup, nil
}

func (c *Config) migrationService() (*migration.Service, error) {
	if c.migration == nil {
		if c.LegacyDbPath == "" {
			return nil, fmt.Errorf("missing legacy db path")
		}
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		legacy, err := dbbolt.OpenLegacyStore(c.LegacyDbPath)
		if err != nil {
			return nil, err
		}
		svc, err := migration.NewService(legacy, repo)
		if err != nil {
			legacy.Close()
			return nil, err
		}
		c.legacy = legacy
		c.migration = svc
	}
	return c.migration, nil
}
