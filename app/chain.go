package app

import (
	"reflect"

	"github.com/iov-one/custody"
)

// Decorators is an ordered stack of decorators waiting for the Handler
// they wrap. The first decorator runs first.
type Decorators struct {
	chain []custody.Decorator
}

// ChainDecorators starts a stack. A typical node wraps its router as
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     utils.NewSavepoint().OnCheck(),
//     sigs.NewDecorator(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
func ChainDecorators(chain ...custody.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a copy of the stack with more decorators appended. Nil
// decorators, including typed nil pointers, are ignored so optional
// layers such as metrics can be passed unconditionally.
func (d Decorators) Chain(chain ...custody.Decorator) Decorators {
	out := Decorators{chain: make([]custody.Decorator, len(d.chain), len(d.chain)+len(chain))}
	copy(out.chain, d.chain)
	for _, dec := range chain {
		if !absent(dec) {
			out.chain = append(out.chain, dec)
		}
	}
	return out
}

func absent(d custody.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h custody.Handler) custody.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = layer{dec: d.chain[i], next: h}
	}
	return h
}

// layer binds one decorator to everything below it.
type layer struct {
	dec  custody.Decorator
	next custody.Handler
}

var _ custody.Handler = layer{}

func (l layer) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return l.dec.Check(ctx, store, tx, l.next)
}

func (l layer) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return l.dec.Deliver(ctx, store, tx, l.next)
}
