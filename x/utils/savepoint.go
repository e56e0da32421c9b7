/*
Package utils contains decorators that most applications want in their
stack: transaction isolation, panic recovery, logging, tagging and metrics.
*/
package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Savepoint runs the rest of the stack on a cache wrap of the store. The
// wrap is flushed when the handler succeeds and dropped when it fails,
// so a failed escrow instruction never leaves a half done transfer.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ custody.Decorator = Savepoint{}

// NewSavepoint returns a Savepoint that is inactive until OnCheck or
// OnDeliver enables it.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables isolation of Check calls.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver enables isolation of Deliver calls.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	var res *custody.CheckResult
	err := isolate(s.onCheck, store, func(db custody.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	var res *custody.DeliverResult
	err := isolate(s.onDeliver, store, func(db custody.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isolate calls fn on a cache wrap of store when enabled and the store
// supports it, and directly on store otherwise.
func isolate(enabled bool, store custody.KVStore, fn func(custody.KVStore) error) error {
	cacheable, ok := store.(custody.CacheableKVStore)
	if !enabled || !ok {
		return fn(store)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write savepoint")
	}
	return nil
}
