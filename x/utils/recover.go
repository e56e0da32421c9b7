package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery is a decorator that converts a panic raised by any handler down
// the chain into an ErrPanic error. The panic is logged together with the
// message path, so a faulty escrow or ledger handler cannot halt the node.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (res *custody.CheckResult, err error) {
	defer recovered(ctx, "check", tx, &err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (res *custody.DeliverResult, err error) {
	defer recovered(ctx, "deliver", tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recovered must be deferred directly, recover has no effect otherwise.
func recovered(ctx custody.Context, phase string, tx custody.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	path := "(none)"
	if tx != nil {
		path = custody.GetPath(tx)
	}
	*err = errors.Wrapf(errors.ErrPanic, "%s %s: %v", phase, path, r)
	custody.GetLogger(ctx).Error("handler panic", "phase", phase, "path", path, "panic", r)
}
