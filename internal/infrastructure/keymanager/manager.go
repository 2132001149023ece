package keymanager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/tdex-network/tdex-backup/pkg/wallet"
)

// Opts ...
type Opts struct {
	KeystoreDir           string
	ScryptN               int
	ScryptP               int
	RepoManager           ports.RepoManager
	Authenticator         ports.Authenticator
	PresenceLockAvailable bool
	MinPasswordLength     int
}

func (o Opts) validate() error {
	if o.KeystoreDir == "" {
		return fmt.Errorf("missing keystore dir")
	}
	if o.RepoManager == nil {
		return fmt.Errorf("missing repo manager")
	}
	if o.Authenticator == nil {
		return fmt.Errorf("missing authenticator")
	}
	if o.MinPasswordLength < 0 {
		return fmt.Errorf("min password length must not be negative")
	}
	return nil
}

// Manager implements the KeyManager port. Imported private keys are kept in
// a go-ethereum keystore directory, mnemonics of HD wallets are stored
// encrypted in the seed repository. Every address is also tracked in the
// address record.
type Manager struct {
	ks                    *keystore.KeyStore
	repoManager           ports.RepoManager
	auth                  ports.Authenticator
	presenceLockAvailable bool
	minPasswordLength     int
}

func NewManager(opts Opts) (*Manager, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ScryptN == 0 {
		opts.ScryptN = keystore.StandardScryptN
	}
	if opts.ScryptP == 0 {
		opts.ScryptP = keystore.StandardScryptP
	}
	if opts.MinPasswordLength == 0 {
		opts.MinPasswordLength = domain.MinPasswordLength
	}

	return &Manager{
		ks:                    keystore.NewKeyStore(opts.KeystoreDir, opts.ScryptN, opts.ScryptP),
		repoManager:           opts.RepoManager,
		auth:                  opts.Authenticator,
		presenceLockAvailable: opts.PresenceLockAvailable,
		minPasswordLength:     opts.MinPasswordLength,
	}, nil
}

// ImportPrivateKey adds the given hex encoded private key to the keystore
// encrypted with password, and returns the address of the new account.
func (m *Manager) ImportPrivateKey(
	ctx context.Context, hexKey, password string,
) (string, error) {
	if err := m.validatePassword(password); err != nil {
		return "", err
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return "", ErrInvalidPrivateKey
	}
	address := wallet.AddressFromKey(key)

	if err := m.ensureUnknown(ctx, address); err != nil {
		return "", err
	}

	if _, err := m.ks.ImportECDSA(key, password); err != nil {
		if !errors.Is(err, keystore.ErrAccountAlreadyExists) {
			return "", err
		}
	}

	if err := m.updateRecord(ctx, func(r *domain.AddressRecord) error {
		return r.AddPrivateKeyAddress(address)
	}); err != nil {
		return "", err
	}

	log.WithField("address", address).Debug("imported private key")
	return address, nil
}

// CreateHDWallet generates a new mnemonic and stores it encrypted with
// password. It returns the address of the first account and the mnemonic.
func (m *Manager) CreateHDWallet(
	ctx context.Context, password string,
) (string, []string, error) {
	if err := m.validatePassword(password); err != nil {
		return "", nil, err
	}

	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{})
	if err != nil {
		return "", nil, err
	}
	address, err := m.ImportMnemonic(ctx, mnemonic, password)
	if err != nil {
		return "", nil, err
	}
	return address, mnemonic, nil
}

// ImportMnemonic restores an HD wallet from its mnemonic and stores it
// encrypted with password. It returns the address of the first account.
func (m *Manager) ImportMnemonic(
	ctx context.Context, mnemonic []string, password string,
) (string, error) {
	if err := m.validatePassword(password); err != nil {
		return "", err
	}

	w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
	if err != nil {
		return "", err
	}
	address, err := w.Address(wallet.DefaultAccountDerivationPath)
	if err != nil {
		return "", err
	}

	if err := m.ensureUnknown(ctx, address); err != nil {
		return "", err
	}

	encryptedWords, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  w.MnemonicString(),
		Passphrase: password,
	})
	if err != nil {
		return "", err
	}

	if err := m.repoManager.SeedRepository().AddSeed(ctx, domain.EncryptedSeed{
		Address:        address,
		EncryptedWords: encryptedWords,
		CreatedAt:      time.Now().Unix(),
	}); err != nil {
		return "", err
	}

	if err := m.updateRecord(ctx, func(r *domain.AddressRecord) error {
		return r.AddSeedAddress(address)
	}); err != nil {
		return "", err
	}

	log.WithField("address", address).Debug("imported mnemonic")
	return address, nil
}

// AddWatchAddress tracks the given address as watch-only.
func (m *Manager) AddWatchAddress(ctx context.Context, address string) (string, error) {
	if err := domain.ValidateAddress(address); err != nil {
		return "", err
	}
	address = common.HexToAddress(address).Hex()

	if err := m.updateRecord(ctx, func(r *domain.AddressRecord) error {
		return r.AddWatchAddress(address)
	}); err != nil {
		return "", err
	}
	return address, nil
}

// ListWallets returns all wallets tracked in the address record.
func (m *Manager) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	record, err := m.repoManager.AddressRecordRepository().GetAddressRecord(ctx)
	if err != nil {
		return nil, err
	}
	return record.Wallets(), nil
}

// ExportPrivateKeyForBackup asks the current password of the account with the
// given prompt and returns the keystore JSON of its key encrypted with
// newPassword.
func (m *Manager) ExportPrivateKeyForBackup(
	ctx context.Context, account, prompt, newPassword string,
) (string, error) {
	if err := m.validatePassword(newPassword); err != nil {
		return "", err
	}

	w, err := m.getWallet(ctx, account)
	if err != nil {
		return "", err
	}
	if w.Origin != domain.WalletOriginPrivateKey {
		return "", ErrNotPrivateKeyWallet
	}

	password, err := m.auth.Authenticate(ctx, prompt)
	if err != nil {
		return "", err
	}

	keyJSON, err := m.ks.Export(
		accounts.Account{Address: common.HexToAddress(w.Address)},
		password, newPassword,
	)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return "", ErrInvalidPassword
		}
		if errors.Is(err, keystore.ErrNoMatch) {
			return "", domain.ErrWalletNotFound
		}
		return "", err
	}
	return string(keyJSON), nil
}

// ExportSeedPhrase asks the password of the HD account with the given prompt
// and returns its decrypted mnemonic.
func (m *Manager) ExportSeedPhrase(
	ctx context.Context, account, prompt string,
) ([]string, error) {
	w, err := m.getWallet(ctx, account)
	if err != nil {
		return nil, err
	}
	if !w.IsHD() {
		return nil, ErrNotHDWallet
	}

	seed, err := m.repoManager.SeedRepository().GetSeed(ctx, w.Address)
	if err != nil {
		return nil, err
	}

	password, err := m.auth.Authenticate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	words, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: seed.EncryptedWords,
		Passphrase: password,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidPassphrase) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}
	mnemonic := wallet.ParseMnemonic(words)

	restored, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
	if err != nil {
		return nil, err
	}
	address, err := restored.Address(wallet.DefaultAccountDerivationPath)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(address, w.Address) {
		return nil, ErrSeedMismatch
	}
	return mnemonic, nil
}

func (m *Manager) IsUserPresenceLockPossible() bool {
	return m.presenceLockAvailable
}

func (m *Manager) IsProtectedByUserPresenceLock(account string) bool {
	record, err := m.repoManager.AddressRecordRepository().GetAddressRecord(
		context.Background(),
	)
	if err != nil {
		log.WithError(err).Warn("failed to read address record")
		return false
	}
	return record.IsProtectedByPresenceCheck(account)
}

// ElevateSecurity marks the account as protected by the user presence lock.
func (m *Manager) ElevateSecurity(ctx context.Context, account string) error {
	if !m.presenceLockAvailable {
		return ErrPresenceLockUnavailable
	}
	return m.updateRecord(ctx, func(r *domain.AddressRecord) error {
		return r.MarkProtectedByPresenceCheck(account)
	})
}

func (m *Manager) validatePassword(password string) error {
	if len(password) < m.minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (m *Manager) getWallet(ctx context.Context, account string) (domain.Wallet, error) {
	record, err := m.repoManager.AddressRecordRepository().GetAddressRecord(ctx)
	if err != nil {
		return domain.Wallet{}, err
	}
	return record.WalletFor(account)
}

func (m *Manager) ensureUnknown(ctx context.Context, address string) error {
	record, err := m.repoManager.AddressRecordRepository().GetAddressRecord(ctx)
	if err != nil {
		return err
	}
	if record.HasAddress(address) {
		return domain.ErrWalletAlreadyExists
	}
	return nil
}

func (m *Manager) updateRecord(
	ctx context.Context, fn func(r *domain.AddressRecord) error,
) error {
	return m.repoManager.AddressRecordRepository().UpdateAddressRecord(
		ctx, func(r *domain.AddressRecord) (*domain.AddressRecord, error) {
			if err := fn(r); err != nil {
				return nil, err
			}
			return r, nil
		},
	)
}
