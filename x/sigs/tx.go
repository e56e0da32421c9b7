package sigs

import (
	"github.com/iov-one/custody/errors"
)

// SignedTx is a transaction the Decorator can authenticate.
type SignedTx interface {
	// GetSignBytes returns the transaction encoded without signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns one entry per signer.
	GetSignatures() []*StdSignature
}

// Validate checks a signature is complete before it is verified.
func (s *StdSignature) Validate() error {
	switch {
	case s.GetSequence() < 0:
		return errors.Wrapf(ErrInvalidSequence, "sequence %d", s.GetSequence())
	case s.Pubkey.Validate() != nil:
		return errors.Wrap(errors.ErrUnauthorized, "public key")
	case s.Signature == nil:
		return errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	return nil
}
