package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

// Balancer is implemented by anything that can report the balance of an
// account.
type Balancer interface {
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (*coin.Coin, error)
}

// CoinMover moves funds between existing accounts.
type CoinMover interface {
	Transfer(db custody.KVStore, authority, src, dest custody.Address, amount coin.Coin) error
}

// Allocator takes and returns storage reserves.
type Allocator interface {
	Allocate(db custody.KVStore, payer custody.Address, space uint64) (*coin.Coin, error)
	Deallocate(db custody.KVStore, dest custody.Address, reserve *coin.Coin) error
}

// Controller is the functionality needed by extensions that hold assets.
type Controller interface {
	Balancer
	CoinMover
	Allocator

	// Issue credits the account with newly created funds.
	Issue(db custody.KVStore, dest custody.Address, amount coin.Coin) error

	// OpenAccount creates the associated account of the owner for given
	// ticker. Payer covers the storage reserve.
	OpenAccount(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error)

	// OpenVault creates the associated account of a program owner. Plain
	// transfers cannot credit it, only Deposit can.
	OpenVault(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error)

	// Deposit moves the amount from src into the vault account.
	Deposit(db custody.KVStore, authority, src, vault custody.Address, amount coin.Coin) error

	// CloseAccount removes an empty associated account and refunds its
	// reserve to dest.
	CloseAccount(db custody.KVStore, authority, addr, dest custody.Address) error
}

// BaseController is the default Controller implementation, backed by a
// single Bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller using given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the balance of the account stored under addr.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (*coin.Coin, error) {
	acc, err := c.bucket.GetAccount(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return acc.Balance.Clone(), nil
}

// Transfer moves the amount from src to dest. The authority must control the
// source account. A missing destination is created as a native account when
// the amount is in the native ticker. Any other asset can only be sent to an
// account that was opened for it. Vault accounts are never credited here.
func (c BaseController) Transfer(db custody.KVStore, authority, src, dest custody.Address, amount coin.Coin) error {
	return c.move(db, authority, src, dest, amount, false)
}

// Deposit moves the amount from src into an existing vault account.
func (c BaseController) Deposit(db custody.KVStore, authority, src, vault custody.Address, amount coin.Coin) error {
	return c.move(db, authority, src, vault, amount, true)
}

func (c BaseController) move(db custody.KVStore, authority, src, dest custody.Address, amount coin.Coin, toVault bool) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive transfer: %s", amount)
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInvalidInput, "source and destination are the same account")
	}

	sender, err := c.bucket.GetAccount(db, src)
	if err != nil {
		return errors.Wrap(err, "source account")
	}
	if !sender.IsAuthorized(src, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "source account authority")
	}
	left, err := sender.Balance.Subtract(amount)
	if err != nil {
		return err
	}

	var recipient *Account
	if toVault {
		recipient, err = c.bucket.GetAccount(db, dest)
		if err == nil && !recipient.Vault {
			err = errors.Wrapf(errors.ErrInvalidInput, "%s is not a vault", dest)
		}
		if err == nil && recipient.Balance.Ticker != amount.Ticker {
			err = errors.Wrapf(errors.ErrCurrency, "vault holds %s, not %s", recipient.Balance.Ticker, amount.Ticker)
		}
	} else {
		recipient, err = c.getOrCreate(db, dest, amount.Ticker)
		if err == nil && recipient.Vault {
			err = errors.Wrap(errors.ErrUnauthorized, "vault can only be credited by its program")
		}
	}
	if err != nil {
		return errors.Wrap(err, "destination account")
	}

	total, err := recipient.Balance.Add(amount)
	if err != nil {
		return err
	}
	sender.Balance = &left
	recipient.Balance = &total

	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "save source account")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save destination account")
	}
	return nil
}

// Issue attempts to add the given amount to the destination account. Fails
// if it overflows the account. As with Transfer, only the native ticker can
// be issued to an address that holds no account yet.
func (c BaseController) Issue(db custody.KVStore, dest custody.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.getOrCreate(db, dest, amount.Ticker)
	if err != nil {
		return err
	}
	total, err := recipient.Balance.Add(amount)
	if err != nil {
		return err
	}
	recipient.Balance = &total
	return c.bucket.Put(db, dest, recipient)
}

// OpenAccount creates the empty associated account of (owner, ticker).
// ErrDuplicate is returned if the account already exists.
func (c BaseController) OpenAccount(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error) {
	return c.open(db, payer, owner, ticker, false)
}

// OpenVault creates the empty associated account of (owner, ticker) and
// marks it as a vault.
func (c BaseController) OpenVault(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error) {
	return c.open(db, payer, owner, ticker, true)
}

func (c BaseController) open(db custody.KVStore, payer, owner custody.Address, ticker string, vault bool) (custody.Address, error) {
	addr, _, err := AssociatedAddress(owner, ticker)
	if err != nil {
		return nil, errors.Wrap(err, "derive account address")
	}
	switch err := c.bucket.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	reserve, err := c.Allocate(db, payer, AccountSpace)
	if err != nil {
		return nil, errors.Wrap(err, "allocate account")
	}
	acc := &Account{
		Metadata: &custody.Metadata{Schema: 1},
		Owner:    owner,
		Balance:  coin.NewCoinp(0, ticker),
		Reserve:  reserve,
		Vault:    vault,
	}
	if err := c.bucket.Put(db, addr, acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return addr, nil
}

// CloseAccount removes the empty associated account stored under addr and
// refunds its reserve to dest. Only the account owner can close it.
func (c BaseController) CloseAccount(db custody.KVStore, authority, addr, dest custody.Address) error {
	acc, err := c.bucket.GetAccount(db, addr)
	if err != nil {
		return errors.Wrapf(err, "account %s", addr)
	}
	if acc.IsNative() {
		return errors.Wrap(errors.ErrInvalidState, "native account cannot be closed")
	}
	if !acc.IsAuthorized(addr, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "account authority")
	}
	if !acc.Balance.IsZero() {
		return errors.Wrapf(errors.ErrInvalidState, "account not empty: %s", acc.Balance)
	}
	if err := c.bucket.Delete(db, addr); err != nil {
		return errors.Wrap(err, "delete account")
	}
	return c.Deallocate(db, dest, acc.Reserve)
}

// Allocate takes the storage reserve for given number of bytes from the
// native account of the payer. The returned reserve must be passed to
// Deallocate once the storage is released.
func (c BaseController) Allocate(db custody.KVStore, payer custody.Address, space uint64) (*coin.Coin, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	reserve, err := conf.Reserve(space)
	if err != nil {
		return nil, err
	}
	if reserve.IsZero() {
		return &reserve, nil
	}

	acc, err := c.bucket.GetAccount(db, payer)
	if err != nil {
		return nil, errors.Wrap(err, "payer account")
	}
	if !acc.IsNative() {
		return nil, errors.Wrap(errors.ErrInvalidInput, "payer must be a native account")
	}
	left, err := acc.Balance.Subtract(reserve)
	if err != nil {
		return nil, errors.Wrap(err, "storage reserve")
	}
	acc.Balance = &left
	if err := c.bucket.Put(db, payer, acc); err != nil {
		return nil, errors.Wrap(err, "save payer account")
	}
	return &reserve, nil
}

// Deallocate returns a storage reserve to the native account of dest.
func (c BaseController) Deallocate(db custody.KVStore, dest custody.Address, reserve *coin.Coin) error {
	if reserve == nil || reserve.IsZero() {
		return nil
	}
	return c.Issue(db, dest, *reserve)
}

// getOrCreate loads the account or returns a new native account holding
// zero of given ticker. Existing accounts must hold the same ticker. Only
// native ticker accounts are created, any other asset needs an account opened
// with its storage reserve paid.
func (c BaseController) getOrCreate(db custody.KVStore, addr custody.Address, ticker string) (*Account, error) {
	acc, err := c.bucket.GetAccount(db, addr)
	switch {
	case err == nil:
		if acc.Balance.Ticker != ticker {
			return nil, errors.Wrapf(errors.ErrCurrency, "account holds %s, not %s", acc.Balance.Ticker, ticker)
		}
		return acc, nil
	case errors.ErrNotFound.Is(err):
		conf, cerr := loadConf(db)
		if cerr != nil {
			return nil, cerr
		}
		if ticker != conf.NativeTicker {
			return nil, errors.Wrapf(errors.ErrNotFound, "no %s account at %s", ticker, addr)
		}
		return NewNativeAccount(coin.NewCoin(0, ticker)), nil
	default:
		return nil, err
	}
}
