package wallet

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultEntropySize yields a 12 word mnemonic.
const DefaultEntropySize = 128

// NewMnemonicOpts is the struct given to NewMnemonic. A zero EntropySize
// selects DefaultEntropySize.
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	switch size := o.EntropySize; {
	case size == 0:
		return nil
	case size < 128, size > 256, size%32 != 0:
		return ErrInvalidEntropySize
	default:
		return nil
	}
}

// NewMnemonic draws fresh entropy and encodes it as bip39 words.
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	size := opts.EntropySize
	if size == 0 {
		size = DefaultEntropySize
	}

	entropy, err := bip39.NewEntropy(size)
	if err != nil {
		return nil, err
	}
	sentence, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Fields(sentence), nil
}

// IsMnemonicValid reports whether the words checksum as a bip39 mnemonic.
func IsMnemonicValid(words []string) bool {
	return bip39.IsMnemonicValid(strings.Join(words, " "))
}

// ParseMnemonic splits a space separated mnemonic into its normalized words.
func ParseMnemonic(mnemonic string) []string {
	return strings.Fields(strings.ToLower(mnemonic))
}

func seedFromMnemonic(words []string) []byte {
	return bip39.NewSeed(strings.Join(words, " "), "")
}
