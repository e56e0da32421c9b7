package crypto

import (
	"github.com/iov-one/custody/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the bip44 path of the first IOV account.
const DefaultDerivationPath = "m/44'/234'/0'"

// DerivePrivKeyEd25519 derives a private key from a master seed following
// SLIP-0010. Only hardened path segments are supported.
func DerivePrivKeyEd25519(seed []byte, path string) (*PrivateKey, error) {
	if len(seed) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "seed")
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
