package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// KeyPair is an immutable Curve25519 private key together with its derived
// public key.
type KeyPair struct {
	privateKey Key
	publicKey  Key
}

// GenerateKeyPair creates a key pair from a fresh random private key. The
// private key is clamped before the public key is derived.
func GenerateKeyPair() (KeyPair, error) {
	var priv Key
	if _, err := rand.Read(priv[:]); err != nil {
		return KeyPair{}, fmt.Errorf("reading random bytes: %w", err)
	}
	priv.clamp()
	return NewKeyPair(priv), nil
}

// NewKeyPair derives the public key for an existing private key. The private
// key is stored as given; the curve operation clamps its own copy, so a key
// decoded from external configuration round-trips unchanged.
func NewKeyPair(privateKey Key) KeyPair {
	return KeyPair{privateKey: privateKey, publicKey: privateKey.publicKey()}
}

// PrivateKey returns the private half of the pair.
func (kp KeyPair) PrivateKey() Key {
	return kp.privateKey
}

// PublicKey returns the public half of the pair.
func (kp KeyPair) PublicKey() Key {
	return kp.publicKey
}

// GeneratePresharedKey creates a random symmetric key. Preshared keys are not
// curve scalars and are not clamped.
func GeneratePresharedKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("reading random bytes: %w", err)
	}
	return k, nil
}

func (k *Key) clamp() {
	k[0] &= 248
	k[31] = (k[31] & 127) | 64
}

func (k Key) publicKey() (pk Key) {
	curve25519.ScalarBaseMult((*[KeyLength]byte)(&pk), (*[KeyLength]byte)(&k))
	return pk
}
