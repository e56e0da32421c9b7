package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/weavetest"
	"github.com/iov-one/custody/x/utils"
)

// kvQuery returns the raw value stored under the requested key.
type kvQuery struct{}

func (kvQuery) Query(db custody.ReadOnlyKVStore, mod string, key []byte) ([]custody.Model, error) {
	if mod != custody.KeyQueryMod {
		return nil, errors.Wrap(errors.ErrInvalidInput, "unsupported modifier")
	}
	v, err := db.Get(key)
	if err != nil || v == nil {
		return nil, err
	}
	return []custody.Model{custody.Pair(key, v)}, nil
}

func testDecoder(raw []byte) (custody.Tx, error) {
	if string(raw) == "garbage" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "cannot decode")
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(raw)}}, nil
}

func newTestApp(t testing.TB) BaseApp {
	t.Helper()
	r := NewRouter()
	r.Handle("test/write", &weavetest.WriteHandler{Key: []byte("written"), Value: []byte("yes")})
	r.Handle("test/fail", &weavetest.WriteHandler{Key: []byte("failed"), Value: []byte("yes"), Err: errors.ErrUnauthorized})

	qr := custody.NewQueryRouter()
	qr.Register("/kv", kvQuery{})

	store := NewStoreApp("custody-test", iavl.NewMemCommitStore(), qr, context.Background()).
		WithInit(dummyInit{})
	handler := ChainDecorators(utils.NewSavepoint().OnDeliver()).WithHandler(r)
	return NewBaseApp(store, testDecoder, handler, false)
}

func queryKV(t testing.TB, a BaseApp, key string) []byte {
	t.Helper()
	res := a.Query(abci.RequestQuery{Path: "/kv", Data: []byte(key)})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var values ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	if len(values.Results) == 0 {
		return nil
	}
	return values.Results[0]
}

func TestStoreAppLifecycle(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, "", a.GetChainID())

	a.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain-1",
		AppStateBytes: []byte(`{"dummy": "secret"}`),
	})
	assert.Equal(t, "test-chain-1", a.GetChainID())
	assert.Equal(t, "test-chain-1", custody.GetChainID(a.BlockContext()))

	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, ChainID: "test-chain-1"}})
	dres := a.DeliverTx([]byte("test/write"))
	require.Equal(t, uint32(0), dres.Code, dres.Log)

	// failed transactions leave no trace
	dres = a.DeliverTx([]byte("test/fail"))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), dres.Code)
	dres = a.DeliverTx([]byte("garbage"))
	assert.Equal(t, errors.ErrInvalidInput.ABCICode(), dres.Code)
	dres = a.DeliverTx([]byte("test/unknown"))
	assert.Equal(t, errors.ErrNotFound.ABCICode(), dres.Code)

	cres := a.CheckTx([]byte("test/write"))
	assert.Equal(t, uint32(0), cres.Code, cres.Log)

	// nothing is visible before commit
	assert.Nil(t, queryKV(t, a, "written"))

	a.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := a.Commit()
	assert.NotEmpty(t, commit.Data)

	assert.Equal(t, []byte("yes"), queryKV(t, a, "written"))
	assert.Equal(t, []byte("secret"), queryKV(t, a, dummyKey))
	assert.Nil(t, queryKV(t, a, "failed"))

	info := a.Info(abci.RequestInfo{})
	assert.Equal(t, "custody-test", info.Data)
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)

	// the chain can be initialized only once
	assert.Panics(t, func() {
		a.InitChain(abci.RequestInitChain{
			ChainId:       "test-chain-2",
			AppStateBytes: []byte(`{}`),
		})
	})
}

func TestStoreAppQueryErrors(t *testing.T) {
	a := newTestApp(t)

	res := a.Query(abci.RequestQuery{Path: "/unknown", Data: []byte("a")})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	res = a.Query(abci.RequestQuery{Path: "/kv?prefix", Data: []byte("a")})
	assert.Equal(t, errors.ErrInvalidInput.ABCICode(), res.Code)
}

func TestStoreAppRequiresAppState(t *testing.T) {
	a := newTestApp(t)
	assert.Panics(t, func() {
		a.InitChain(abci.RequestInitChain{ChainId: "test-chain-1"})
	})
	assert.Equal(t, "", a.GetChainID())
}

func TestSplitPath(t *testing.T) {
	cases := map[string]struct {
		path     string
		wantPath string
		wantMod  string
	}{
		"no modifier":    {path: "/escrows", wantPath: "/escrows"},
		"prefix":         {path: "/escrows?prefix", wantPath: "/escrows", wantMod: "prefix"},
		"empty modifier": {path: "/accounts?", wantPath: "/accounts"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path, mod := splitPath(tc.path)
			assert.Equal(t, tc.wantPath, path)
			assert.Equal(t, tc.wantMod, mod)
		})
	}
}

func TestJoinResults(t *testing.T) {
	models := []custody.Model{
		custody.Pair([]byte("a"), []byte("1")),
		custody.Pair([]byte("b"), []byte("2")),
	}
	got, err := JoinResults(ResultsFromKeys(models), ResultsFromValues(models))
	require.NoError(t, err)
	assert.Equal(t, models, got)

	_, err = JoinResults(ResultsFromKeys(models), ResultsFromValues(models[:1]))
	assert.True(t, errors.ErrInvalidState.Is(err))
}

func TestBaseAppRejectsMalformedTx(t *testing.T) {
	a := newTestApp(t)
	a.decoder = func([]byte) (custody.Tx, error) { panic("short buffer") }

	dres := a.DeliverTx(nil)
	assert.Equal(t, errors.ErrEmpty.ABCICode(), dres.Code)
	cres := a.CheckTx([]byte{})
	assert.Equal(t, errors.ErrEmpty.ABCICode(), cres.Code)

	// decoder panics are reported as a regular failure
	dres = a.DeliverTx([]byte{0x0a, 0xff})
	assert.Equal(t, errors.ErrPanic.ABCICode(), dres.Code)
}
