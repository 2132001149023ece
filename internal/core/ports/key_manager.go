package ports

import "context"

// KeyManager gives access to the secrets of the wallet accounts.
type KeyManager interface {
	// ExportPrivateKeyForBackup unlocks the private key of the account, asking
	// the current password with the given prompt, and returns it encrypted
	// with newPassword.
	ExportPrivateKeyForBackup(
		ctx context.Context, account, prompt, newPassword string,
	) (string, error)
	// ExportSeedPhrase returns the mnemonic of an HD account.
	ExportSeedPhrase(ctx context.Context, account, prompt string) ([]string, error)
	IsUserPresenceLockPossible() bool
	IsProtectedByUserPresenceLock(account string) bool
	// ElevateSecurity protects the account with the user presence lock.
	ElevateSecurity(ctx context.Context, account string) error
}

// Authenticator returns the current password of the user.
type Authenticator interface {
	Authenticate(ctx context.Context, prompt string) (string, error)
}
