package server

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

// ValidateCmd checks that every given genesis file can initialize the
// application.
func ValidateCmd(ini custody.Initializer, args []string) error {
	if len(args) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "usage: cmd validate <genesis.json> [<genesis.json>...]")
	}
	return ValidateGenesis(ini, args)
}

// ValidateGenesis runs the initializer against the app_state of each
// genesis file. The resulting state is discarded.
func ValidateGenesis(ini custody.Initializer, genesisPaths []string) error {
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini custody.Initializer, genesisPath string) error {
	b, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot read genesis file: %s", err)
	}

	var genesis struct {
		State custody.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot JSON deserialize genesis: %s", err)
	}
	if genesis.State == nil {
		return errors.Wrap(errors.ErrEmpty, AppStateKey)
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()

	if err := ini.FromGenesis(genesis.State, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
