package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := custody.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/make"}}

	h := &weavetest.Handler{DeliverResult: custody.DeliverResult{Log: "made"}}
	_, err := NewLogging().Deliver(ctx, db, tx, h)
	assert.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.Contains(out, "made"), out)
	assert.True(t, strings.Contains(out, "path=escrow/make"), out)

	buf.Reset()
	h = &weavetest.Handler{DeliverErr: errors.ErrNotFound}
	_, err = NewLogging().Deliver(ctx, db, tx, h)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, strings.Contains(buf.String(), "err="), buf.String())
}
