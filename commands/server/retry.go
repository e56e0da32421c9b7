package server

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/tendermint/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/types"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	iavlstore "github.com/iov-one/custody/store/iavl"
)

const (
	flagUntilError = "error"
	flagMaxTries   = "max"
	flagDB         = "db"
)

type retryArgs struct {
	dbPath     string
	blockPath  string
	debug      bool
	untilError bool
	maxTries   int
}

// parseRetryArgs reads "<block.json> [flags]". The application database
// defaults to abci.db in the home directory.
func parseRetryArgs(home string, args []string) (retryArgs, error) {
	if len(args) < 1 {
		return retryArgs{}, errors.Wrap(errors.ErrInvalidInput,
			"usage: retry <path to block.json> [-db=<path to abci.db>] [-debug] [-error] [-max=N]")
	}
	res := retryArgs{blockPath: args[0]}
	fs := flag.NewFlagSet("retry", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.StringVar(&res.dbPath, flagDB, filepath.Join(home, "abci.db"), "application database")
	fs.BoolVar(&res.debug, flagDebug, false, "print out debug info")
	fs.BoolVar(&res.untilError, flagUntilError, false, "retry until the app hash differs")
	fs.IntVar(&res.maxTries, flagMaxTries, 10, "maximum number of retries with -error")
	if err := fs.Parse(args[1:]); err != nil {
		return res, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return res, nil
}

// InlineAppGenerator builds the application on top of an already opened
// store.
type InlineAppGenerator func(custody.CommitKVStore, log.Logger, bool) abci.Application

// RetryCmd replays the last block against the state before it and prints
// the resulting app hash, which must match the stored one for a
// deterministic application.
//
// With -error the block is replayed up to -max times until a different
// hash shows up.
func RetryCmd(makeApp InlineAppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseRetryArgs(home, args)
	if err != nil {
		return err
	}
	raw, err := ioutil.ReadFile(flags.blockPath)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	var block *types.Block
	if err := cdc.UnmarshalJSON(raw, &block); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot decode block: %s", err)
	}
	tree, err := readTree(flags.dbPath)
	if err != nil {
		return errors.Wrap(err, "read abci store")
	}
	if v := tree.Version(); v != block.Header.Height {
		return errors.Wrapf(errors.ErrInvalidState,
			"height mismatch - block=%d, abcistore=%d", block.Header.Height, v)
	}

	r := replayer{
		out:  os.Stdout,
		tree: tree,
		build: func(kv custody.CommitKVStore) abci.Application {
			return makeApp(kv, logger, flags.debug)
		},
	}
	tries := 1
	if flags.untilError {
		tries += flags.maxTries
	}
	_, err = r.untilMismatch(block, tries)
	return err
}

func readTree(path string) (*iavl.MutableTree, error) {
	db, err := openDb(path)
	if err != nil {
		return nil, err
	}
	tree := iavl.NewMutableTree(db, iavlstore.DefaultCacheSize)
	ver, err := tree.Load()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if ver == 0 {
		return nil, errors.Wrap(errors.ErrInvalidState, "iavl tree is empty")
	}
	return tree, nil
}

// replayer runs a block again on top of the version preceding it.
type replayer struct {
	out   io.Writer
	tree  *iavl.MutableTree
	build func(custody.CommitKVStore) abci.Application
}

// untilMismatch replays the block at most tries times and stops at the
// first hash that differs from the stored one. It reports whether all
// replays matched.
func (r replayer) untilMismatch(block *types.Block, tries int) (bool, error) {
	fmt.Fprintf(r.out, "Original Height: %d\n", block.Header.Height)
	fmt.Fprintf(r.out, "Original Hash: %X\n", r.tree.Hash())
	for i := 0; i < tries; i++ {
		same, err := r.replay(block)
		if err != nil || !same {
			return same, err
		}
	}
	return true, nil
}

func (r replayer) replay(block *types.Block) (bool, error) {
	want := r.tree.Hash()
	height := block.Header.Height
	fmt.Fprintf(r.out, "Rollback to height: %d\n", height-1)
	if _, err := r.tree.LoadVersionForOverwriting(height - 1); err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	app := r.build(iavlstore.NewCommitStoreFromTree(r.tree))
	app.BeginBlock(abci.RequestBeginBlock{Hash: block.Header.Hash(), Header: toAbciHeader(block.Header)})
	for i, tx := range block.Txs {
		if res := app.DeliverTx(tx); res.Code != 0 {
			fmt.Fprintf(r.out, "tx %d failed: code=%d log=%s\n", i, res.Code, res.Log)
		}
	}
	app.EndBlock(abci.RequestEndBlock{Height: height})
	got := app.Commit().Data
	fmt.Fprintf(r.out, "Recomputed Hash: %X\n", got)
	return bytes.Equal(want, got), nil
}

// toAbciHeader converts a stored block header into the form passed to
// BeginBlock.
func toAbciHeader(h types.Header) abci.Header {
	lb := h.LastBlockID
	return abci.Header{
		Version:  abci.Version{Block: uint64(h.Version.Block), App: uint64(h.Version.App)},
		ChainID:  h.ChainID,
		Height:   h.Height,
		Time:     h.Time,
		NumTxs:   h.NumTxs,
		TotalTxs: h.TotalTxs,
		LastBlockId: abci.BlockID{
			Hash: lb.Hash,
			PartsHeader: abci.PartSetHeader{
				Total: int32(lb.PartsHeader.Total),
				Hash:  lb.PartsHeader.Hash,
			},
		},
		LastCommitHash:     h.LastCommitHash,
		DataHash:           h.DataHash,
		ValidatorsHash:     h.ValidatorsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		ConsensusHash:      h.ConsensusHash,
		AppHash:            h.AppHash,
		LastResultsHash:    h.LastResultsHash,
		EvidenceHash:       h.EvidenceHash,
		ProposerAddress:    h.ProposerAddress,
	}
}
