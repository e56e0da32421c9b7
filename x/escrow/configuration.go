package escrow

import (
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
)

const confPkg = "escrow"

// Deposit policies. The committed amount of an escrow is informational with
// DepositUncapped. With DepositCapped the vault balance can never exceed it.
const (
	DepositUncapped uint32 = 1
	DepositCapped   uint32 = 2
)

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	return validatePolicy(c.DepositPolicy)
}

func validatePolicy(p uint32) error {
	switch p {
	case DepositUncapped, DepositCapped:
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown deposit policy %d", p)
	}
}

// depositPolicy returns the configured policy. Without a configuration
// deposits are not capped.
func depositPolicy(db gconf.ReadStore) (uint32, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf.DepositPolicy, nil
	case errors.ErrNotFound.Is(err):
		return DepositUncapped, nil
	default:
		return 0, errors.Wrap(err, "load configuration")
	}
}
