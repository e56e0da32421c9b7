package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/custody/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// DirConfig is the subdirectory of home holding the genesis file.
	DirConfig = "config"
	// GenesisFile is the name of the genesis file in DirConfig.
	GenesisFile = "genesis.json"

	AppStateKey    = "app_state"
	ChainIDKey     = "chain_id"
	GenesisTimeKey = "genesis_time"

	flagChainID = "chain-id"
)

// GenInitOptions can parse command-line arguments to generate the
// app_state of the genesis file. This is application-specific.
type GenInitOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

// InitCmd will add the application state to the genesis file found in
// home/config. If tendermint did not create one yet, a bare genesis with a
// random chain id is written instead.
//
// Initializing twice is refused, the application state cannot be replaced.
func InitCmd(gen GenInitOptions, logger log.Logger, home string, args []string) error {
	var chainID string
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.StringVar(&chainID, flagChainID, "", "chain id used when no genesis file exists")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	genFile := filepath.Join(home, DirConfig, GenesisFile)
	doc, err := loadGenesisDoc(genFile, chainID)
	if err != nil {
		return err
	}
	if raw, ok := doc[AppStateKey]; ok && len(raw) > 0 && string(raw) != "null" {
		return errors.Wrapf(errors.ErrInvalidState, "genesis file %s already has an %s", genFile, AppStateKey)
	}

	options, err := gen(initFlags.Args())
	if err != nil {
		return err
	}
	doc[AppStateKey] = options
	if _, ok := doc[GenesisTimeKey]; !ok {
		ts, err := time.Now().UTC().MarshalJSON()
		if err != nil {
			return errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		doc[GenesisTimeKey] = ts
	}

	if err := writeGenesisDoc(genFile, doc); err != nil {
		return err
	}
	logger.Info("App state written to genesis", "path", genFile)
	return nil
}

func loadGenesisDoc(genFile, chainID string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(genFile)
	if os.IsNotExist(err) {
		if chainID == "" {
			chainID = fmt.Sprintf("custody-chain-%s", cmn.RandStr(6))
		}
		id, err := json.Marshal(chainID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		return GenesisDoc{ChainIDKey: id}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read genesis file: %s", err)
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unmarshal genesis file: %s", err)
	}
	return doc, nil
}

func writeGenesisDoc(genFile string, doc GenesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := ioutil.WriteFile(genFile, out, 0600); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}
