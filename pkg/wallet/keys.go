package wallet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// Address returns the checksummed account address of the key derived at the
// given derivation path.
func (w *Wallet) Address(path DerivationPath) (string, error) {
	key, err := w.PrivateKey(path)
	if err != nil {
		return "", err
	}
	return AddressFromKey(key), nil
}

// AddressFromKey returns the checksummed account address for the given
// private key.
func AddressFromKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
