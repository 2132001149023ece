package domain

import "errors"

var (
	// ErrUserCancelled is returned as the failure reason of a backup aborted by
	// the user from any of its child flows.
	ErrUserCancelled = errors.New("backup cancelled by user")
	// ErrExportFailed wraps any error returned while exporting the private key
	// of an account.
	ErrExportFailed = errors.New("failed to export private key")
	// ErrTemporaryFileWriteFailed wraps any error returned while writing the
	// exported key to the scratch directory.
	ErrTemporaryFileWriteFailed = errors.New("failed to write temporary backup file")
	// ErrWatchWalletNotBackupable ...
	ErrWatchWalletNotBackupable = errors.New("watch-only wallet has no secret to back up")
	// ErrBackupAlreadyStarted ...
	ErrBackupAlreadyStarted = errors.New("backup flow is already started")
	// ErrBackupAlreadyFinished ...
	ErrBackupAlreadyFinished = errors.New("backup flow is already finished")
	// ErrExportInProgress is returned when trying to export a key while a
	// previous export has not returned yet.
	ErrExportInProgress = errors.New("an export is already in progress")
	// ErrUnexpectedFlowEvent is returned when a child flow reports an outcome
	// that is not valid for the current status of the backup.
	ErrUnexpectedFlowEvent = errors.New("unexpected flow event for current backup status")

	// ErrBackupMustAwaitPrimaryFlow ...
	ErrBackupMustAwaitPrimaryFlow = errors.New("backup must be awaiting primary flow")
	// ErrBackupMustAwaitExport ...
	ErrBackupMustAwaitExport = errors.New("backup must be awaiting export")
	// ErrBackupMustAwaitSecurityDecision ...
	ErrBackupMustAwaitSecurityDecision = errors.New(
		"backup must be awaiting security decision",
	)
	// ErrBackupMustUseKeystore ...
	ErrBackupMustUseKeystore = errors.New("only private key wallets export a keystore")
	// ErrBackupNotCancellable ...
	ErrBackupNotCancellable = errors.New("backup cannot be cancelled at this stage")

	// ErrWalletNotFound ...
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address must be a 0x prefixed 20 bytes hex string")
	// ErrInvalidPassword is returned when the password given by the user does
	// not unlock the account. The user may try again.
	ErrInvalidPassword = errors.New("password is not valid")
	// ErrSeedNotFound ...
	ErrSeedNotFound = errors.New("seed not found")
	// ErrBackupNotFound ...
	ErrBackupNotFound = errors.New("backup not found")
)
