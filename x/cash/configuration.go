package cash

import (
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const confPkg = "cash"

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	// owner field is optional, without it the configuration is immutable
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	if !coin.IsCC(c.NativeTicker) {
		return errors.Wrapf(errors.ErrCurrency, "native ticker %q", c.NativeTicker)
	}
	return nil
}

// Reserve returns the storage reserve required to allocate given number of
// bytes.
func (c *Configuration) Reserve(space uint64) (coin.Coin, error) {
	size := c.AccountOverhead + space
	if size < space {
		return coin.Coin{}, errors.Wrap(errors.ErrOverflow, "allocation size")
	}
	return coin.NewCoin(c.ReservePerByte, c.NativeTicker).Multiply(size)
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
