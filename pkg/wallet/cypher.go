package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"math/bits"

	"golang.org/x/crypto/scrypt"
)

// Sealed blobs are laid out as version | log2(N) | salt | nonce | box.
// The header is authenticated as additional data so a tampered cost or
// salt fails like a wrong passphrase.
const (
	envelopeVersion = 1
	saltSize        = 32
	headerSize      = 2 + saltSize
	keySize         = 32
	maxLogN         = 30
)

// ScryptN is the CPU/memory cost applied to newly sealed blobs. Tests lower
// it to keep key stretching fast. Must be a power of two.
var ScryptN = 1 << 20

// EncryptOpts is the struct given to Encrypt method
type EncryptOpts struct {
	PlainText  string
	Passphrase string
}

func (o EncryptOpts) validate() error {
	if o.PlainText == "" {
		return ErrNullPlainText
	}
	if o.Passphrase == "" {
		return ErrNullPassphrase
	}
	return nil
}

// Encrypt seals the plaintext with AES-256-GCM under a scrypt-stretched
// passphrase and returns the base64 envelope.
func Encrypt(opts EncryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	header := make([]byte, headerSize)
	header[0] = envelopeVersion
	header[1] = byte(bits.Len(uint(ScryptN)) - 1)
	if _, err := rand.Read(header[2:]); err != nil {
		return "", err
	}

	aead, err := newAEAD(opts.Passphrase, header)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	out := make([]byte, 0, headerSize+len(nonce)+len(opts.PlainText)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(opts.PlainText), header)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptOpts is the struct given to Decrypt method
type DecryptOpts struct {
	CypherText string
	Passphrase string
}

func (o DecryptOpts) validate() error {
	if o.CypherText == "" {
		return ErrNullCypherText
	}
	if o.Passphrase == "" {
		return ErrNullPassphrase
	}
	return nil
}

// Decrypt opens an envelope produced by Encrypt. Any authentication failure
// is reported as ErrInvalidPassphrase.
func Decrypt(opts DecryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(opts.CypherText)
	if err != nil || len(data) < headerSize {
		return "", ErrInvalidCypherText
	}
	header, body := data[:headerSize], data[headerSize:]
	if header[0] != envelopeVersion || header[1] == 0 || header[1] > maxLogN {
		return "", ErrInvalidCypherText
	}

	aead, err := newAEAD(opts.Passphrase, header)
	if err != nil {
		return "", err
	}
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return "", ErrInvalidCypherText
	}

	nonce, box := body[:aead.NonceSize()], body[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, box, header)
	if err != nil {
		return "", ErrInvalidPassphrase
	}
	return string(plaintext), nil
}

// DeriveKey stretches the passphrase with scrypt (r=8, p=1) at cost n.
func DeriveKey(passphrase, salt []byte, n int) ([]byte, error) {
	return scrypt.Key(passphrase, salt, n, 8, 1, keySize)
}

func newAEAD(passphrase string, header []byte) (cipher.AEAD, error) {
	key, err := DeriveKey([]byte(passphrase), header[2:], 1<<header[1])
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
