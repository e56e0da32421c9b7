package custodyd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/commands/server"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/escrow"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Genesis defaults used by GenInitOptions.
const (
	DefaultTicker          = "IOV"
	DefaultBalance         = 123456789
	DefaultReservePerByte  = 1
	DefaultAccountOverhead = 128
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// Arguments are an optional native ticker and an optional address of the
// rich account, in any form custody.ParseAddress accepts. Without an address a new key is generated.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := DefaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr custody.Address
	if len(args) > 1 {
		var err error
		addr, err = custody.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
		if addr == nil {
			return nil, errors.Wrap(errors.ErrEmpty, "address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the secret key
		bz, secret, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = bz
		fmt.Println(secret)
	}

	type dict map[string]interface{}
	return json.Marshal(dict{
		"cash": []cash.GenesisAccount{
			{
				Address: addr,
				Balance: coin.NewCoin(DefaultBalance, ticker),
			},
		},
		"conf": dict{
			"cash": cash.Configuration{
				Metadata:        &custody.Metadata{Schema: 1},
				NativeTicker:    ticker,
				ReservePerByte:  DefaultReservePerByte,
				AccountOverhead: DefaultAccountOverhead,
			},
			"escrow": escrow.Configuration{
				Metadata:      &custody.Metadata{Schema: 1},
				DepositPolicy: escrow.DepositUncapped,
			},
		},
	})
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "abci.db")
	}

	var reg prometheus.Registerer
	if options.Registry != nil {
		reg = options.Registry
	}
	application, err := Application(Name, Stack(reg), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

// InlineApp will take a previously prepared CommitStore and return a
// complete Application. It is used by the retry command.
func InlineApp(kv custody.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	ctx := context.Background()
	store := app.NewStoreApp(Name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, TxDecoder, Stack(nil), debug)
	base.WithInit(Initializers())
	base.WithLogger(logger)
	return base
}

// Initializers returns the genesis initializers of every extension.
func Initializers() custody.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		escrow.Initializer{},
	)
}

// GenerateCoinKey returns the address of a new key,
// along with the hex encoded master seed it was derived from using
// crypto.DefaultDerivationPath. You can give coins to this address and
// return the seed to the user to access them.
func GenerateCoinKey() (custody.Address, string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, "", errors.Wrap(errors.ErrInvalidState, err.Error())
	}
	privKey, err := crypto.DerivePrivKeyEd25519(seed, crypto.DefaultDerivationPath)
	if err != nil {
		return nil, "", err
	}
	return privKey.PublicKey().Address(), hex.EncodeToString(seed), nil
}
