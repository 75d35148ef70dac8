package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	eth "github.com/ethereum/go-ethereum/crypto"
)

type Scheme string

const (
	SchemeSHA256    Scheme = "sha256"
	SchemeKeccak256 Scheme = "keccak256"
)

const (
	HashLength   = 32
	SecretLength = 32
)

type Hash [HashLength]byte

type Secret [SecretLength]byte

var (
	ErrUnknownScheme = errors.New("unknown commitment scheme")
	ErrHashLength    = fmt.Errorf("commitment must be %d bytes", HashLength)
	ErrSecretLength  = fmt.Errorf("secret must be %d bytes", SecretLength)
)

func ParseScheme(value string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(value))) {
	case "", SchemeSHA256:
		return SchemeSHA256, nil
	case SchemeKeccak256:
		return SchemeKeccak256, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, value)
}

// NewSecret draws a fresh secret from the system CSPRNG. The move space has
// only 45 values, so the secret carries all of the commitment's hiding power.
func NewSecret() (Secret, error) {
	var s Secret
	if _, err := rand.Read(s[:]); err != nil {
		return Secret{}, fmt.Errorf("reading random secret: %w", err)
	}
	return s, nil
}

// Compute hashes card || prediction || secret, one byte each for the move
// followed by the raw 32 secret bytes.
func Compute(scheme Scheme, card, prediction uint8, secret Secret) (Hash, error) {
	preimage := make([]byte, 0, 2+SecretLength)
	preimage = append(preimage, card, prediction)
	preimage = append(preimage, secret[:]...)

	var h Hash
	switch scheme {
	case SchemeSHA256:
		h = sha256.Sum256(preimage)
	case SchemeKeccak256:
		copy(h[:], eth.Keccak256(preimage))
	default:
		return Hash{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return h, nil
}

func Verify(scheme Scheme, expected Hash, card, prediction uint8, secret Secret) (bool, error) {
	actual, err := Compute(scheme, card, prediction, secret)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(actual[:], expected[:]) == 1, nil
}

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, ErrHashLength
	}
	copy(h[:], b)
	return h, nil
}

func ParseHash(value string) (Hash, error) {
	b, err := decodeHex(value)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b)
}

func ParseSecret(value string) (Secret, error) {
	var s Secret
	b, err := decodeHex(value)
	if err != nil {
		return s, err
	}
	if len(b) != SecretLength {
		return s, ErrSecretLength
	}
	copy(s[:], b)
	return s, nil
}

func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (s Secret) String() string {
	return hex.EncodeToString(s[:])
}

func decodeHex(value string) ([]byte, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return b, nil
}
