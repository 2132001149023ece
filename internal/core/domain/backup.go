package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	BackupStatusNotStarted BackupStatus = iota
	BackupStatusAwaitingPrimaryFlow
	BackupStatusAwaitingExport
	BackupStatusAwaitingSecurityDecision
	BackupStatusFinished
)

// BackupStatus represents the different statuses that a backup flow can
// assume.
type BackupStatus int

func (s BackupStatus) String() string {
	switch s {
	case BackupStatusNotStarted:
		return "NotStarted"
	case BackupStatusAwaitingPrimaryFlow:
		return "AwaitingPrimaryFlow"
	case BackupStatusAwaitingExport:
		return "AwaitingExport"
	case BackupStatusAwaitingSecurityDecision:
		return "AwaitingSecurityDecision"
	case BackupStatusFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// BackupMethod is the way the secret of a wallet is backed up.
type BackupMethod string

const (
	// BackupMethodSeed is for HD wallets, the user writes down and verifies
	// the seed phrase.
	BackupMethodSeed BackupMethod = "seed"
	// BackupMethodKeystore is for private key wallets, the key is exported as
	// an encrypted keystore file and shared.
	BackupMethodKeystore BackupMethod = "keystore"
)

// BackupOutcome is the terminal result of a backup flow.
type BackupOutcome struct {
	Success bool
	Reason  error
}

// Succeeded returns a successful outcome.
func Succeeded() BackupOutcome {
	return BackupOutcome{Success: true}
}

// Failure returns a failed outcome with the given reason.
func Failure(reason error) BackupOutcome {
	return BackupOutcome{Reason: reason}
}

// IsCancelled returns whether the flow was aborted by the user.
func (o BackupOutcome) IsCancelled() bool {
	return !o.Success && errors.Is(o.Reason, ErrUserCancelled)
}

// Backup is the data structure representing a single backup flow of a wallet.
// The zero status is NotStarted and Finished is terminal: once reached every
// other transition is rejected.
type Backup struct {
	Id               string
	Wallet           Wallet
	Method           BackupMethod
	Status           BackupStatus
	ExportInProgress bool
	Shared           bool
	Elevated         bool
	Outcome          *BackupOutcome
	StartTime        int64
	EndTime          int64
}

// NewBackup returns a NotStarted backup for the given wallet. Watch-only
// wallets have nothing to back up.
func NewBackup(wallet Wallet) (*Backup, error) {
	var method BackupMethod
	switch wallet.Origin {
	case WalletOriginHD:
		method = BackupMethodSeed
	case WalletOriginPrivateKey:
		method = BackupMethodKeystore
	default:
		return nil, ErrWatchWalletNotBackupable
	}

	return &Backup{
		Id:     uuid.New().String(),
		Wallet: wallet,
		Method: method,
		Status: BackupStatusNotStarted,
	}, nil
}

// Start brings a NotStarted backup to the AwaitingPrimaryFlow status.
func (b *Backup) Start() error {
	if b.IsStarted() {
		return ErrBackupAlreadyStarted
	}
	b.Status = BackupStatusAwaitingPrimaryFlow
	b.StartTime = time.Now().Unix()
	return nil
}

// BeginExport brings the backup to the AwaitingExport status and marks the
// export as outstanding. From AwaitingExport it's allowed only if the
// previous export attempt returned already.
func (b *Backup) BeginExport() error {
	if b.Method != BackupMethodKeystore {
		return ErrBackupMustUseKeystore
	}
	if b.ExportInProgress {
		return ErrExportInProgress
	}
	if b.Status != BackupStatusAwaitingPrimaryFlow &&
		b.Status != BackupStatusAwaitingExport {
		return ErrBackupMustAwaitPrimaryFlow
	}

	b.Status = BackupStatusAwaitingExport
	b.ExportInProgress = true
	return nil
}

// EndExport marks the outstanding export as returned, no matter the result.
// The backup stays in AwaitingExport so that a failed attempt can be retried.
func (b *Backup) EndExport() error {
	if b.Status != BackupStatusAwaitingExport {
		return ErrBackupMustAwaitExport
	}
	b.ExportInProgress = false
	return nil
}

// MarkShared records whether the user completed the share action of the
// exported keystore.
func (b *Backup) MarkShared(completed bool) error {
	if b.Status != BackupStatusAwaitingExport {
		return ErrBackupMustAwaitExport
	}
	b.Shared = completed
	return nil
}

// AwaitSecurityDecision brings the backup to AwaitingSecurityDecision. It's
// allowed right after the seed phrase has been verified, or after the
// keystore has been exported.
func (b *Backup) AwaitSecurityDecision() error {
	switch b.Status {
	case BackupStatusAwaitingPrimaryFlow:
		if b.Method != BackupMethodSeed {
			return ErrBackupMustAwaitExport
		}
	case BackupStatusAwaitingExport:
		if b.ExportInProgress {
			return ErrExportInProgress
		}
	default:
		return ErrBackupMustAwaitPrimaryFlow
	}

	b.Status = BackupStatusAwaitingSecurityDecision
	return nil
}

// DecideSecurity records the decision of the user about enabling the
// presence lock.
func (b *Backup) DecideSecurity(locked bool) error {
	if b.Status != BackupStatusAwaitingSecurityDecision {
		return ErrBackupMustAwaitSecurityDecision
	}
	b.Elevated = locked
	return nil
}

// CanCancel returns whether the user can abort the backup at its current
// status.
func (b *Backup) CanCancel() bool {
	switch b.Status {
	case BackupStatusAwaitingPrimaryFlow:
		return true
	case BackupStatusAwaitingExport:
		return !b.ExportInProgress
	default:
		return false
	}
}

// Cancel brings the backup to Finished with a cancelled outcome.
func (b *Backup) Cancel() error {
	if b.IsFinished() {
		return ErrBackupAlreadyFinished
	}
	if !b.CanCancel() {
		return ErrBackupNotCancellable
	}
	return b.Finish(Failure(ErrUserCancelled))
}

// Finish brings the backup to the terminal Finished status with the given
// outcome. It can be called only once.
func (b *Backup) Finish(outcome BackupOutcome) error {
	if b.IsFinished() {
		return ErrBackupAlreadyFinished
	}
	b.Status = BackupStatusFinished
	b.ExportInProgress = false
	b.Outcome = &outcome
	b.EndTime = time.Now().Unix()
	return nil
}

// IsStarted returns whether the backup left the NotStarted status, finished
// backups included.
func (b *Backup) IsStarted() bool {
	return b.Status != BackupStatusNotStarted
}

// IsFinished ...
func (b *Backup) IsFinished() bool {
	return b.Status == BackupStatusFinished
}

// Record returns the history entry of a successfully finished backup.
func (b *Backup) Record() (*BackupRecord, error) {
	if !b.IsFinished() || !b.Outcome.Success {
		return nil, ErrBackupNotFound
	}
	return &BackupRecord{
		Id:          b.Id,
		Address:     b.Wallet.Address,
		Method:      b.Method,
		Shared:      b.Shared,
		Elevated:    b.Elevated,
		CompletedAt: b.EndTime,
	}, nil
}
