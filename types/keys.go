package types

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Address is the canonical short identifier for a PubKey, derived by the
// Hasher the same way a validator's address is derived in tendermint.
type Address []byte

func (a Address) String() string {
	return fmt.Sprintf("%X", []byte(a))
}

func (a Address) Equals(o Address) bool {
	if len(a) != len(o) {
		return false
	}
	for i := range a {
		if a[i] != o[i] {
			return false
		}
	}
	return true
}

// PubKey wraps an Ed25519 public key. Signature verification is delegated
// entirely to crypto/ed25519; nothing here reimplements the primitive.
//
// Key is exported so go-amino's reflection-based codec (light/store/db)
// can see and round-trip it; an unexported field is silently dropped by
// MarshalBinaryLengthPrefixed/UnmarshalBinaryLengthPrefixed, the same way
// encoding/json or gob would drop it.
type PubKey struct {
	Key ed25519.PublicKey
}

func NewPubKey(key ed25519.PublicKey) PubKey {
	return PubKey{Key: key}
}

func (pk PubKey) Bytes() []byte {
	return []byte(pk.Key)
}

func (pk PubKey) Address() Address {
	return Address(DefaultHasher{}.HashBytes(pk.Key))
}

// VerifySignature checks sig against msg using this key. It is the single
// point at which the underlying cryptographic primitive is invoked.
func (pk PubKey) VerifySignature(msg, sig []byte) bool {
	if len(pk.Key) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pk.Key, msg, sig)
}

func (pk PubKey) String() string {
	return hex.EncodeToString(pk.Key)
}

// PrivKey is only used by tests to generate signed fixtures.
type PrivKey struct {
	key ed25519.PrivateKey
}

func NewPrivKey(key ed25519.PrivateKey) PrivKey {
	return PrivKey{key: key}
}

func (sk PrivKey) PubKey() PubKey {
	return NewPubKey(sk.key.Public().(ed25519.PublicKey))
}

func (sk PrivKey) Sign(msg []byte) []byte {
	return ed25519.Sign(sk.key, msg)
}
