package weavetest

import "github.com/iov-one/custody"

// Decorator counts the calls passing through it. A set CheckErr or
// DeliverErr is returned instead of calling the next handler.
type Decorator struct {
	calls
	CheckErr   error
	DeliverErr error
}

var _ custody.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	d.check++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	d.deliver++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// Decorate returns a handler that runs h behind d.
func Decorate(h custody.Handler, d custody.Decorator) custody.Handler {
	return decorated{handler: h, decorator: d}
}

type decorated struct {
	handler   custody.Handler
	decorator custody.Decorator
}

func (d decorated) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.handler)
}

func (d decorated) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.handler)
}
