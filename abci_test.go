package custody

import (
	"fmt"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func TestDeliverOrError(t *testing.T) {
	res := &DeliverResult{
		Data: []byte("created"),
		Log:  "all good",
		Tags: []common.KVPair{{Key: []byte("escrow"), Value: []byte("01")}},
	}
	abciRes := DeliverOrError(res, nil, false)
	assert.Equal(t, uint32(0), abciRes.Code)
	assert.Equal(t, []byte("created"), abciRes.Data)
	assert.Equal(t, "all good", abciRes.Log)
	assert.Len(t, abciRes.Tags, 1)

	abciRes = DeliverOrError(nil, errors.Wrap(errors.ErrUnauthorized, "not the maker"), false)
	assert.Equal(t, uint32(2), abciRes.Code)
	assert.Equal(t, "cannot deliver tx: not the maker: unauthorized", abciRes.Log)
}

func TestCheckOrError(t *testing.T) {
	abciRes := CheckOrError(&CheckResult{GasAllocated: 50}, nil, false)
	assert.Equal(t, uint32(0), abciRes.Code)
	assert.Equal(t, int64(50), abciRes.GasWanted)

	abciRes = CheckOrError(nil, errors.ErrInvalidAmount.New("zero"), false)
	assert.Equal(t, uint32(13), abciRes.Code)
	assert.Equal(t, "cannot check tx: zero: invalid amount", abciRes.Log)
}

func TestNilResultIsEmptySuccess(t *testing.T) {
	dres := DeliverOrError(nil, nil, false)
	assert.Equal(t, uint32(0), dres.Code)
	assert.Empty(t, dres.Log)

	cres := CheckOrError(nil, nil, true)
	assert.Equal(t, uint32(0), cres.Code)
}

func TestQueryErrorRedactsInternal(t *testing.T) {
	res := QueryError(fmt.Errorf("leveldb: corrupted"), false)
	assert.Equal(t, uint32(1), res.Code)
	assert.Equal(t, "internal error", res.Log)

	res = QueryError(errors.Wrap(errors.ErrNotFound, "escrow"), false)
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
}
