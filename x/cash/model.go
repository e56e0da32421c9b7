package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// BucketName is where we store the accounts
	BucketName = "cash"

	// ProgramName owns every associated account address.
	ProgramName = "ledger"

	// AccountSpace is the storage allocated for a single account.
	AccountSpace = 72
)

var associatedSeed = []byte("associated")

var _ orm.Model = (*Account)(nil)

// Validate ensures the account state is consistent.
func (a *Account) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if a.Owner != nil {
		if err := a.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if err := a.Balance.Validate(); err != nil {
		return errors.Wrap(err, "balance")
	}
	if a.Reserve != nil {
		if err := a.Reserve.Validate(); err != nil {
			return errors.Wrap(err, "reserve")
		}
		if a.Owner == nil && a.Reserve.IsPositive() {
			return errors.Wrap(errors.ErrInvalidModel, "native account cannot hold a reserve")
		}
	}
	if a.Vault && a.Owner == nil {
		return errors.Wrap(errors.ErrInvalidModel, "native account cannot be a vault")
	}
	return nil
}

// IsNative returns true for accounts controlled by the holder of the
// account address.
func (a *Account) IsNative() bool {
	return len(a.Owner) == 0
}

// IsAuthorized returns true if the given identity may move funds out of
// the account stored under addr.
func (a *Account) IsAuthorized(addr, authority custody.Address) bool {
	if a.IsNative() {
		return addr.Equals(authority)
	}
	return a.Owner.Equals(authority)
}

// NewNativeAccount returns an account controlled by the holder of the
// address it is stored under.
func NewNativeAccount(balance coin.Coin) *Account {
	return &Account{
		Metadata: &custody.Metadata{Schema: 1},
		Balance:  &balance,
	}
}

// AssociatedAddress returns the address of the account holding given ticker
// on behalf of the owner, together with the bump used to derive it.
func AssociatedAddress(owner custody.Address, ticker string) (custody.Address, uint8, error) {
	if err := owner.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "owner")
	}
	if !coin.IsCC(ticker) {
		return nil, 0, errors.Wrapf(errors.ErrCurrency, "invalid ticker: %q", ticker)
	}
	return custody.FindProgramAddress(ProgramName, associatedSeed, owner, []byte(ticker))
}

// Bucket is a type-safe wrapper around orm.ModelBucket
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Account{}),
	}
}

// GetAccount loads the account stored under given address. ErrNotFound is
// returned if it does not exist.
func (b Bucket) GetAccount(db custody.ReadOnlyKVStore, addr custody.Address) (*Account, error) {
	var acc Account
	if err := b.One(db, addr, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
