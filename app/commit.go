package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// CommitStore wraps a CommitKVStore with the two caches an ABCI
// application needs. DeliverTx writes to the deliver cache, which is
// persisted on Commit. CheckTx writes to the check cache, which is
// dropped on Commit so the mempool re-checks against the new state.
type CommitStore struct {
	committed custody.CommitKVStore
	deliver   custody.KVCacheWrap
	check     custody.KVCacheWrap
}

// NewCommitStore loads the latest version of the store.
func NewCommitStore(store custody.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	cs := &CommitStore{committed: store}
	cs.resetCaches()
	return cs, nil
}

func (cs *CommitStore) resetCaches() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (custody.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists the deliver cache as a new version.
func (cs *CommitStore) Commit() (custody.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return custody.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	cs.check.Discard()
	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.resetCaches()
	return id, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() custody.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() custody.CacheableKVStore {
	return cs.deliver
}

// CommittedStore returns a fresh view of the last committed state. Changes
// made to it are never persisted.
func (cs *CommitStore) CommittedStore() custody.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// chainIDKey uses the "_cd:" prefix reserved for application data.
var chainIDKey = []byte("_cd:chainID")

// ChainID returns the chain id saved at genesis, or "" before it.
func (cs *CommitStore) ChainID() (string, error) {
	v, err := cs.deliver.Get(chainIDKey)
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return string(v), nil
}

// SaveChainID records the chain id. It can be set only once.
func (cs *CommitStore) SaveChainID(chainID string) error {
	if !custody.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %q", chainID)
	}
	switch prev, err := cs.ChainID(); {
	case err != nil:
		return err
	case prev != "":
		return errors.Wrapf(errors.ErrCannotBeModified, "chain id already set to %q", prev)
	}
	return cs.deliver.Set(chainIDKey, []byte(chainID))
}
