package solkey

// Solana key handling for the wallet flows: address validation before a
// withdrawal or search is submitted, and keypair generation/import for the
// wallet replace flow. Signing stays on the backend; this package never
// touches a transaction.

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

var (
	ErrInvalidAddress    = errors.New("invalid Solana address")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// ValidateAddress checks that s is a well-formed base58 32-byte key.
// Off-curve addresses (program-derived) are accepted; token mints and pools
// are routinely off-curve.
func ValidateAddress(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return ErrInvalidAddress
	}
	if len(raw) != ed25519.PublicKeySize {
		return ErrInvalidAddress
	}
	return nil
}

// ValidateWalletAddress checks that s is a usable wallet address: well-formed
// and on the ed25519 curve. Withdraw recipients must pass this; off-curve
// keys have no holder who can spend from them.
func ValidateWalletAddress(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return ErrInvalidAddress
	}
	if len(raw) != ed25519.PublicKeySize {
		return ErrInvalidAddress
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("%w: not on curve", ErrInvalidAddress)
	}
	return nil
}

// Keypair is a Solana wallet keypair. PrivateKey holds the conventional
// 64-byte form (seed || public key).
type Keypair struct {
	Address    string
	PrivateKey ed25519.PrivateKey
}

// Generate creates a fresh wallet keypair.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{
		Address:    base58.Encode(pub),
		PrivateKey: priv,
	}, nil
}

// Import parses a base58-encoded 64-byte private key and derives its address.
func Import(encoded string) (*Keypair, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}

	// The trailing 32 bytes must match the derived public key, otherwise the
	// two halves came from different keypairs.
	if !pub.Equal(ed25519.PublicKey(raw[32:])) {
		return nil, fmt.Errorf("%w: public key mismatch", ErrInvalidPrivateKey)
	}

	return &Keypair{
		Address:    base58.Encode(pub),
		PrivateKey: priv,
	}, nil
}

// Export returns the base58 encoding of the 64-byte private key.
func (k *Keypair) Export() string {
	return base58.Encode(k.PrivateKey)
}
