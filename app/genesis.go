package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState json.RawMessage `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "read genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "unmarshal genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis will read the genesis file and initialize the store with the
// chain id and the application state it contains.
func (s *StoreApp) LoadGenesis(filePath string, init custody.Initializer) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	return s.parseAppState(gen.AppState, gen.ChainID, init)
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...custody.Initializer) custody.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []custody.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
