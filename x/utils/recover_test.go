package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
)

func TestRecovery(t *testing.T) {
	h := &weavetest.PanicHandler{Msg: "vault corrupted"}
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	assert.Panics(t, func() { _, _ = h.Check(ctx, s, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, s, nil) })

	_, err := r.Check(ctx, s, nil, h)
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.True(t, strings.Contains(err.Error(), "check (none): vault corrupted"))

	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/release"}}
	_, err = r.Deliver(ctx, s, tx, h)
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.True(t, strings.Contains(err.Error(), "deliver escrow/release"))
}

func TestRecoveryPassesResults(t *testing.T) {
	h := &weavetest.Handler{DeliverResult: custody.DeliverResult{Data: []byte("ok")}}
	res, err := NewRecovery().Deliver(context.Background(), store.MemStore(), nil, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), res.Data)
}
