/*
Package sigs verifies the ed25519 signatures attached to a transaction
and keeps a per signer sequence so a signed instruction cannot be
replayed. The verified signers are placed on the context, where the
escrow and cash handlers read them as the maker, receiver or owner.
*/
package sigs

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// signatureVerifyCost is the gas charged in CheckTx per valid signature.
const signatureVerifyCost = 500

// RegisterQuery exposes signer sequences under "/auth".
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator authenticates a SignedTx. Transactions that do not carry
// signatures at all pass through unauthenticated.
type Decorator struct {
	allowMissingSigs bool
}

var _ custody.Decorator = Decorator{}

// NewDecorator requires at least one valid signature. Signatures cover
// the sign bytes, the chain id and the signer sequence.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs accepts a SignedTx with an empty signature list.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check authenticates and charges gas for every verified signature.
func (d Decorator) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	ctx, n, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(n) * signatureVerifyCost
	return res, nil
}

// Deliver authenticates and bumps the signer sequences.
func (d Decorator) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

// authenticate returns ctx extended with the verified signers and their
// count.
func (d Decorator) authenticate(ctx custody.Context, store custody.KVStore, tx custody.Tx) (custody.Context, int, error) {
	signed, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := VerifyTxSignatures(store, signed, custody.GetChainID(ctx))
	switch {
	case err != nil:
		return nil, 0, errors.Wrap(err, "verify signatures")
	case len(signers) == 0 && !d.allowMissingSigs:
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "no signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}
