package custody

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextBlockValuesAreSetOnce(t *testing.T) {
	ctx := context.Background()

	_, ok := GetHeight(ctx)
	assert.False(t, ok)
	_, ok = GetHeader(ctx)
	assert.False(t, ok)
	assert.Panics(t, func() { GetChainID(ctx) })

	ctx = WithHeight(ctx, 12)
	ctx = WithHeader(ctx, abci.Header{Height: 12, ChainID: "custody-1"})
	ctx = WithChainID(ctx, "custody-1")

	height, ok := GetHeight(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(12), height)
	header, ok := GetHeader(ctx)
	require.True(t, ok)
	assert.Equal(t, "custody-1", header.ChainID)
	assert.Equal(t, "custody-1", GetChainID(ctx))

	assert.Panics(t, func() { WithHeight(ctx, 13) })
	assert.Panics(t, func() { WithHeader(ctx, abci.Header{}) })
	assert.Panics(t, func() { WithChainID(ctx, "custody-2") })
}

func TestContextRejectsInvalidChainID(t *testing.T) {
	assert.Panics(t, func() { WithChainID(context.Background(), "a;b") })
}

func TestContextLogger(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	var buf bytes.Buffer
	ctx := WithLogger(bg, log.NewTMLogger(&buf))
	ctx = WithHeight(ctx, 3)
	ctx = WithLogInfo(ctx, "path", "escrow/make")
	GetLogger(ctx).Info("escrow created")

	assert.Contains(t, buf.String(), "escrow created")
	assert.Contains(t, buf.String(), "path=escrow/make")

	// log info does not touch block values
	height, _ := GetHeight(ctx)
	assert.Equal(t, int64(3), height)
}

func TestChainID(t *testing.T) {
	cases := map[string]bool{
		"":                              false,
		"short":                         false,
		"custody":                       true,
		"escrow_net-42":                 true,
		"bad chain":                     false,
		"a-chain-id-longer-than-twenty": false,
	}
	for id, valid := range cases {
		assert.Equal(t, valid, IsValidChainID(id), id)
	}
}
