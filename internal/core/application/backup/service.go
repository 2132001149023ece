package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/tdex-network/tdex-backup/pkg/stats"
)

// ServiceOpts holds the collaborators shared by every backup flow started by
// the Service.
type ServiceOpts struct {
	RepoManager ports.RepoManager
	KeyManager  ports.KeyManager
	Flows       ports.FlowFactory
	Artifacts   ports.ArtifactSink
	ShareSheet  ports.ShareSheet
	Presenter   ports.Presenter

	RequireShareCompletion bool
	SuccessOverlayDelay    time.Duration
}

func (o ServiceOpts) validate() error {
	if o.RepoManager == nil {
		return fmt.Errorf("missing repo manager")
	}
	if o.KeyManager == nil {
		return fmt.Errorf("missing key manager")
	}
	if o.Flows == nil {
		return fmt.Errorf("missing flow factory")
	}
	if o.Artifacts == nil {
		return fmt.Errorf("missing artifact sink")
	}
	if o.ShareSheet == nil {
		return fmt.Errorf("missing share sheet")
	}
	if o.Presenter == nil {
		return fmt.Errorf("missing presenter")
	}
	return nil
}

// WalletBackupStatus tells whether a wallet has ever been backed up.
type WalletBackupStatus struct {
	Wallet     domain.Wallet
	Protected  bool
	LastBackup *domain.BackupRecord
}

// IsBackedUp ...
func (s WalletBackupStatus) IsBackedUp() bool {
	return s.LastBackup != nil
}

type Service struct {
	opts ServiceOpts
}

func NewService(opts ServiceOpts) (*Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SuccessOverlayDelay == 0 {
		opts.SuccessOverlayDelay = DefaultSuccessOverlayDelay
	}
	return &Service{opts}, nil
}

// NewCoordinator returns a NotStarted coordinator for the wallet with the
// given address.
func (s *Service) NewCoordinator(
	ctx context.Context, address string, delegate ports.BackupDelegate,
) (*Coordinator, error) {
	wallet, err := s.getWallet(ctx, address)
	if err != nil {
		return nil, err
	}

	return NewCoordinator(CoordinatorOpts{
		Wallet:                 wallet,
		KeyManager:             s.opts.KeyManager,
		Flows:                  s.opts.Flows,
		Artifacts:              s.opts.Artifacts,
		ShareSheet:             s.opts.ShareSheet,
		Presenter:              s.opts.Presenter,
		Delegate:               delegate,
		RequireShareCompletion: s.opts.RequireShareCompletion,
		SuccessOverlayDelay:    s.opts.SuccessOverlayDelay,
	})
}

// Backup runs a backup flow for the wallet with the given address and blocks
// until it's finished. Successful backups are added to the history.
func (s *Service) Backup(
	ctx context.Context, address string,
) (domain.BackupOutcome, error) {
	coordinator, err := s.NewCoordinator(ctx, address, loggingDelegate{address})
	if err != nil {
		return domain.BackupOutcome{}, err
	}

	flowCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := coordinator.Start(flowCtx); err != nil {
		return domain.BackupOutcome{}, err
	}

	// The coordinator aborts by itself once ctx is done.
	<-coordinator.Done()
	outcome, err := coordinator.Wait(context.Background())
	if err != nil {
		return domain.BackupOutcome{}, err
	}

	backup := coordinator.Backup()
	countOutcome(outcome, backup.Method)

	if !outcome.Success {
		return outcome, nil
	}

	record, err := backup.Record()
	if err != nil {
		return outcome, err
	}
	if err := s.opts.RepoManager.BackupRepository().AddBackup(
		ctx, *record,
	); err != nil {
		return outcome, fmt.Errorf("failed to store backup record: %w", err)
	}
	return outcome, nil
}

// ListBackups returns the whole backup history.
func (s *Service) ListBackups(ctx context.Context) ([]domain.BackupRecord, error) {
	return s.opts.RepoManager.BackupRepository().ListBackups(ctx)
}

// ListBackupsForAddress returns the backup history of a wallet.
func (s *Service) ListBackupsForAddress(
	ctx context.Context, address string,
) ([]domain.BackupRecord, error) {
	if _, err := s.getWallet(ctx, address); err != nil {
		return nil, err
	}
	return s.opts.RepoManager.BackupRepository().ListBackupsForAddress(ctx, address)
}

// BackupStatus returns whether the wallet with the given address has ever
// been backed up.
func (s *Service) BackupStatus(
	ctx context.Context, address string,
) (*WalletBackupStatus, error) {
	wallet, err := s.getWallet(ctx, address)
	if err != nil {
		return nil, err
	}

	status := &WalletBackupStatus{
		Wallet:    wallet,
		Protected: s.opts.KeyManager.IsProtectedByUserPresenceLock(wallet.Address),
	}
	last, err := s.opts.RepoManager.BackupRepository().LastBackup(ctx, wallet.Address)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return status, nil
		}
		return nil, err
	}
	status.LastBackup = last
	return status, nil
}

func (s *Service) getWallet(
	ctx context.Context, address string,
) (domain.Wallet, error) {
	record, err := s.opts.RepoManager.AddressRecordRepository().GetAddressRecord(ctx)
	if err != nil {
		return domain.Wallet{}, err
	}
	return record.WalletFor(address)
}

func countOutcome(outcome domain.BackupOutcome, method domain.BackupMethod) {
	label := stats.OutcomeFailed
	switch {
	case outcome.Success:
		label = stats.OutcomeSucceeded
	case outcome.IsCancelled():
		label = stats.OutcomeCancelled
	}
	stats.BackupOutcomes.WithLabelValues(label, string(method)).Inc()
}

type loggingDelegate struct {
	address string
}

func (d loggingDelegate) OnFinished(account string) {
	log.WithField("address", account).Info("wallet backed up")
}

func (d loggingDelegate) OnCancelled() {
	log.WithField("address", d.address).Info("backup cancelled")
}
