package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the escrow configuration. The configuration is
// optional, without it deposits are not capped.
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, confPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
