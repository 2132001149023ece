package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-backup/internal/core/application"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	dbbolt "github.com/tdex-network/tdex-backup/internal/infrastructure/storage/db/bolt"
)

const (
	seedAddress  = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	watchAddress = "0x00000000000000000000000000000000000000aa"
)

var ctx = context.Background()

func TestConfig(t *testing.T) {
	cfg := newConfig(t)
	defer cfg.Close()

	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.RepoManager())
	require.NotNil(t, cfg.KeyManager())

	leftover := filepath.Join(cfg.ScratchDir, "leftover.json")
	require.NoError(t, os.MkdirAll(cfg.ScratchDir, 0700))
	require.NoError(t, os.WriteFile(leftover, []byte("{}"), 0600))

	svc, err := cfg.BackupService()
	require.NoError(t, err)
	require.NotNil(t, svc)

	_, err = os.Stat(leftover)
	require.True(t, os.IsNotExist(err))

	again, err := cfg.BackupService()
	require.NoError(t, err)
	require.Equal(t, svc, again)
}

func TestConfigMigrationService(t *testing.T) {
	legacyPath := filepath.Join(t.TempDir(), "addresses.db")
	legacy, err := dbbolt.NewLegacyStore(legacyPath)
	require.NoError(t, err)
	require.NoError(t, legacy.PutAddressRecord(ctx, domain.AddressRecord{
		WatchAddresses:    []string{watchAddress},
		AddressesWithSeed: []string{seedAddress},
	}))
	require.NoError(t, legacy.Close())

	cfg := newConfig(t)
	cfg.LegacyDbPath = legacyPath
	defer cfg.Close()

	svc, err := cfg.MigrationService()
	require.NoError(t, err)

	record, err := svc.Migrate(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{watchAddress}, record.WatchAddresses)
	require.Equal(t, []string{seedAddress}, record.AddressesWithSeed)

	stored, err := cfg.RepoManager().AddressRecordRepository().GetAddressRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, record, stored)
}

func TestFailingConfig(t *testing.T) {
	t.Run("missing_authenticator", func(t *testing.T) {
		cfg := newConfig(t)
		cfg.Authenticator = nil
		defer cfg.Close()

		require.Error(t, cfg.Validate())
	})

	t.Run("missing_flow_factory", func(t *testing.T) {
		cfg := newConfig(t)
		cfg.Flows = nil
		defer cfg.Close()

		svc, err := cfg.BackupService()
		require.Error(t, err)
		require.Nil(t, svc)
	})

	t.Run("missing_legacy_db", func(t *testing.T) {
		cfg := newConfig(t)
		defer cfg.Close()

		svc, err := cfg.MigrationService()
		require.Error(t, err)
		require.Nil(t, svc)

		cfg.LegacyDbPath = filepath.Join(t.TempDir(), "missing.db")
		svc, err = cfg.MigrationService()
		require.ErrorIs(t, err, dbbolt.ErrStoreNotFound)
		require.Nil(t, svc)
	})
}

func newConfig(t *testing.T) *application.Config {
	return &application.Config{
		KeystoreDir:   t.TempDir(),
		ScratchDir:    filepath.Join(t.TempDir(), "scratch"),
		Authenticator: staticPassword("password"),
		ShareSheet:    noopShareSheet{},
		Presenter:     noopPresenter{},
		Flows: func(ports.KeyManager) (ports.FlowFactory, error) {
			return noopFlowFactory{}, nil
		},
	}
}

type staticPassword string

func (p staticPassword) Authenticate(context.Context, string) (string, error) {
	return string(p), nil
}

type noopShareSheet struct{}

func (noopShareSheet) Present(_ string, done func(bool)) { done(false) }

type noopPresenter struct{}

func (noopPresenter) ShowError(error)           {}
func (noopPresenter) ShowSuccessOverlay(string) {}

type noopFlowFactory struct{}

func (noopFlowFactory) NewSeedPhraseFlow(string, ports.FlowEventSink) ports.ChildFlow {
	return nil
}

func (noopFlowFactory) NewPasswordEntryFlow(string, ports.FlowEventSink) ports.ChildFlow {
	return nil
}

func (noopFlowFactory) NewSecurityElevationFlow(
	domain.Wallet, ports.FlowEventSink,
) ports.ChildFlow {
	return nil
}
