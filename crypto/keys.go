package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is a secp256k1 signing key: the round engine's validator
// identity is the 20-byte address recovered from its public half.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address returns the 20-byte address derived from this public key, the
// raw form every round capability (sigcap, roundconfig) actually uses.
func (k *PublicKey) Address() Address {
	return Address{bytes: crypto.PubkeyToAddress(*k.PublicKey).Bytes()}
}

// Address is a raw 20-byte validator identity. It carries no
// human-readable encoding: round messages only ever compare/transmit the
// bytes.
type Address struct {
	bytes []byte
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
