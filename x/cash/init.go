package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Address points to a native account. When Owner is set instead, the
// balance is stored in the associated account of the owner.
type GenesisAccount struct {
	Address custody.Address `json:"address"`
	Owner   custody.Address `json:"owner"`
	Balance coin.Coin       `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(kv, opts, confPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, acct := range accts {
		if err := acct.Balance.Validate(); err != nil {
			return errors.Wrapf(err, "account %d balance", i)
		}
		addr, acc, err := genesisAccount(acct)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := bucket.Put(kv, addr, acc); err != nil {
			return errors.Wrapf(err, "save account %d", i)
		}
	}
	return nil
}

func genesisAccount(g GenesisAccount) (custody.Address, *Account, error) {
	switch {
	case g.Owner != nil && g.Address != nil:
		return nil, nil, errors.Wrap(errors.ErrInvalidInput, "both address and owner set")
	case g.Owner != nil:
		addr, _, err := AssociatedAddress(g.Owner, g.Balance.Ticker)
		if err != nil {
			return nil, nil, err
		}
		acc := NewNativeAccount(g.Balance)
		acc.Owner = g.Owner
		return addr, acc, nil
	default:
		if err := g.Address.Validate(); err != nil {
			return nil, nil, errors.Wrap(err, "address")
		}
		return g.Address, NewNativeAccount(g.Balance), nil
	}
}
