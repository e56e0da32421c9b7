package weavetest

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a new random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a signature condition of a new random key.
func NewCondition() custody.Condition {
	return NewKey().PublicKey().Condition()
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) custody.Address {
	t.Helper()
	raw := make([]byte, custody.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return custody.Address(raw)
}

// DecodeAddr takes a hex encoded address string and returns its raw
// representation. It ensures that returned value is a valid address.
func DecodeAddr(t testing.TB, encoded string) custody.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := custody.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("decoded string is not a valid address: %s", err)
	}
	return a
}
