package weavetest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iov-one/custody/errors"
)

func TestDecoratorPassesThrough(t *testing.T) {
	var (
		d Decorator
		h Handler
	)
	tx := &Tx{Msg: &Msg{RoutePath: "escrow/set_receiver"}}

	_, err := d.Check(nil, nil, tx, &h)
	assert.NoError(t, err)
	_, err = d.Deliver(nil, nil, tx, &h)
	assert.NoError(t, err)

	assert.Equal(t, 1, d.CheckCallCount())
	assert.Equal(t, 1, d.DeliverCallCount())
	assert.Equal(t, 2, h.CallCount())
	assert.Equal(t, []string{"escrow/set_receiver", "escrow/set_receiver"}, h.Paths)
}

func TestDecoratorStopsOnError(t *testing.T) {
	d := Decorator{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrNotFound,
	}
	var h Handler

	_, err := d.Check(nil, nil, nil, &h)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = d.Deliver(nil, nil, nil, &h)
	assert.True(t, errors.ErrNotFound.Is(err))

	// failed calls are counted, the handler is never reached
	assert.Equal(t, 2, d.CallCount())
	assert.Equal(t, 0, h.CallCount())
}

func TestDecorate(t *testing.T) {
	var (
		d Decorator
		h Handler
	)
	wrapped := Decorate(&h, &d)
	_, _ = wrapped.Check(nil, nil, nil)
	_, _ = wrapped.Deliver(nil, nil, nil)
	_, _ = wrapped.Deliver(nil, nil, nil)

	assert.Equal(t, 1, d.CheckCallCount())
	assert.Equal(t, 2, d.DeliverCallCount())
	assert.Equal(t, 3, h.CallCount())
}
