package custody

import (
	"crypto/sha256"

	"github.com/agl/ed25519/edwards25519"
	"github.com/iov-one/custody/errors"
)

const (
	// MaxSeeds is the maximum number of seeds a program address can be
	// derived from. The bump is hashed on top and is not counted.
	MaxSeeds = 15

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

// isOnCurve reports whether the given digest decodes as an ed25519 point.
// A value on the curve may have a private key and cannot serve as a
// program address.
var isOnCurve = func(digest [32]byte) bool {
	var p edwards25519.ExtendedGroupElement
	return p.FromBytes(&digest)
}

// CreateProgramAddress computes the address owned by the given program for
// the seeds and bump. It fails with ErrInvalidInput when the candidate could
// be controlled by a private key, in which case another bump must be tried.
//
// Every party can compute the same address from public values. Nobody can
// sign for it, so only the program logic can authorize its use.
func CreateProgramAddress(program string, bump uint8, seeds ...[]byte) (Address, error) {
	addr, ok, err := programAddress(program, bump, seeds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "bump %d produces an address on curve", bump)
	}
	return addr, nil
}

// FindProgramAddress searches for a valid program address, starting from
// bump 255 and counting down. The first bump that produces an address
// without a private key is returned together with that address.
//
// ErrDerivationExhausted is returned if no bump value is valid.
func FindProgramAddress(program string, seeds ...[]byte) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, ok, err := programAddress(program, uint8(bump), seeds)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			return addr, uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrapf(errors.ErrDerivationExhausted, "program %q", program)
}

func programAddress(program string, bump uint8, seeds [][]byte) (Address, bool, error) {
	if len(seeds) > MaxSeeds {
		return nil, false, errors.Wrapf(errors.ErrInvalidInput, "too many seeds: %d", len(seeds))
	}
	if len(program) == 0 {
		return nil, false, errors.Wrap(errors.ErrEmpty, "program")
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return nil, false, errors.Wrapf(errors.ErrInvalidInput, "seed %d too long: %d", i, len(s))
		}
		_, _ = h.Write(s)
	}
	_, _ = h.Write([]byte{bump})
	_, _ = h.Write([]byte(program))
	_, _ = h.Write([]byte(programAddressMarker))

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	if isOnCurve(digest) {
		return nil, false, nil
	}
	return Address(digest[:AddressLength]), true, nil
}
