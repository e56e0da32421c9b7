package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp implements the state related part of abci.Application: genesis,
// block boundaries, commits and queries. BaseApp embeds it and adds the
// transaction processing.
//
// ABCI calls that carry no user input (Info, InitChain, BeginBlock,
// EndBlock and Commit) cannot report an error. A failure there means the
// node state cannot be trusted, so they panic.
type StoreApp struct {
	name        string
	logger      log.Logger
	store       *CommitStore
	initializer custody.Initializer
	queryRouter custody.QueryRouter
	debug       bool

	// chainID is empty until InitChain.
	chainID string

	// baseContext is valid for the application lifetime, blockContext
	// is replaced at every BeginBlock.
	baseContext  custody.Context
	blockContext custody.Context
}

// NewStoreApp loads the latest committed state of store. It panics if
// the state cannot be loaded.
func NewStoreApp(name string, store custody.CommitKVStore,
	queryRouter custody.QueryRouter, baseContext custody.Context) *StoreApp {
	cs, err := NewCommitStore(store)
	if err != nil {
		panic(err)
	}
	chainID, err := cs.ChainID()
	if err != nil {
		panic(err)
	}
	info, err := cs.CommitInfo()
	if err != nil {
		panic(err)
	}

	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		chainID:     chainID,
		baseContext: baseContext,
	}
	if chainID != "" {
		s.baseContext = custody.WithChainID(s.baseContext, chainID)
	}
	s.blockContext = custody.WithHeight(s.baseContext, info.Version)
	return s.WithLogger(log.NewNopLogger())
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the genesis initializer used by InitChain.
func (s *StoreApp) WithInit(init custody.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithDebug enables full error information in ABCI responses.
func (s *StoreApp) WithDebug(debug bool) *StoreApp {
	s.debug = debug
	return s
}

// WithLogger sets the logger of the application and of every context it
// creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = custody.WithLogger(s.baseContext, logger)
	s.blockContext = custody.WithLogger(s.blockContext, logger)
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the context of the block being processed.
func (s *StoreApp) BlockContext() custody.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() custody.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() custody.CacheableKVStore {
	return s.store.CheckStore()
}

// initGenesis is called from InitChain on the very first start of the
// chain, never on restarts.
func (s *StoreApp) initGenesis(appState []byte, chainID string) error {
	switch {
	case s.chainID != "":
		return errors.Wrapf(errors.ErrInvalidState, "genesis already loaded for chain %s", s.chainID)
	case len(appState) == 0:
		return errors.Wrap(errors.ErrInvalidState, "app_state not set in genesis.json, run init before starting the chain")
	case s.initializer == nil:
		return errors.Wrap(errors.ErrHuman, "initializer not set")
	}

	var opts custody.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := s.store.SaveChainID(chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = custody.WithChainID(s.baseContext, chainID)
	s.blockContext = custody.WithChainID(s.blockContext, chainID)
	return s.initializer.FromGenesis(opts, s.DeliverStore())
}

//----------------------- ABCI ---------------------

// Info returns the application name with the last committed height and
// hash, so tendermint can replay missing blocks.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced", "height", info.Version, "hash", fmt.Sprintf("%X", info.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption - ABCI
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query reads from the last committed state.
//
// The path selects a registered handler, for example "/escrows", and may
// end with "?<modifier>". Data is interpreted by the handler, usually as
// the key of the entity. Key and Value of the response are ResultSets of
// equal length.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(req.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		err := errors.Wrapf(errors.ErrNotFound, "unexpected query path %q, known: %s",
			req.Path, strings.Join(s.queryRouter.Paths(), ", "))
		return custody.QueryError(err, s.debug)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return custody.QueryError(err, s.debug)
	}
	models, err := qh.Query(s.store.CommittedStore(), mod, req.Data)
	if err != nil {
		return custody.QueryError(err, s.debug)
	}

	res := abci.ResponseQuery{Height: info.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return custody.QueryError(errors.Wrap(err, "marshal keys"), s.debug)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return custody.QueryError(errors.Wrap(err, "marshal values"), s.debug)
	}
	return res
}

// splitPath separates the query path from its modifier.
func splitPath(path string) (string, string) {
	if i := strings.Index(path, "?"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// Commit persists the state changes of the block.
func (s *StoreApp) Commit() (res abci.ResponseCommit) {
	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// InitChain loads the app_state of the genesis file.
func (s *StoreApp) InitChain(req abci.RequestInitChain) (res abci.ResponseInitChain) {
	if err := s.initGenesis(req.AppStateBytes, req.ChainId); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock sets up the context shared by all transactions of the block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) (res abci.ResponseBeginBlock) {
	ctx := custody.WithHeader(s.baseContext, req.Header)
	s.blockContext = custody.WithHeight(ctx, req.Header.GetHeight())
	s.logger.Debug("Begin block", "height", req.Header.GetHeight(), "txs", req.Header.GetNumTxs())
	return
}

// EndBlock - ABCI
// The validator set is never changed by this application.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) (res abci.ResponseEndBlock) {
	return
}
