package escrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
	"github.com/iov-one/custody/x/cash"
)

// mockBank is a cash.Controller with scripted answers.
type mockBank struct {
	mock.Mock
}

var _ cash.Controller = (*mockBank)(nil)

func (m *mockBank) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (*coin.Coin, error) {
	args := m.Called(db, addr)
	c, _ := args.Get(0).(*coin.Coin)
	return c, args.Error(1)
}

func (m *mockBank) Transfer(db custody.KVStore, authority, src, dest custody.Address, amount coin.Coin) error {
	return m.Called(db, authority, src, dest, amount).Error(0)
}

func (m *mockBank) Allocate(db custody.KVStore, payer custody.Address, space uint64) (*coin.Coin, error) {
	args := m.Called(db, payer, space)
	c, _ := args.Get(0).(*coin.Coin)
	return c, args.Error(1)
}

func (m *mockBank) Deallocate(db custody.KVStore, dest custody.Address, reserve *coin.Coin) error {
	return m.Called(db, dest, reserve).Error(0)
}

func (m *mockBank) Issue(db custody.KVStore, dest custody.Address, amount coin.Coin) error {
	return m.Called(db, dest, amount).Error(0)
}

func (m *mockBank) OpenAccount(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error) {
	args := m.Called(db, payer, owner, ticker)
	a, _ := args.Get(0).(custody.Address)
	return a, args.Error(1)
}

func (m *mockBank) OpenVault(db custody.KVStore, payer, owner custody.Address, ticker string) (custody.Address, error) {
	args := m.Called(db, payer, owner, ticker)
	a, _ := args.Get(0).(custody.Address)
	return a, args.Error(1)
}

func (m *mockBank) Deposit(db custody.KVStore, authority, src, vault custody.Address, amount coin.Coin) error {
	return m.Called(db, authority, src, vault, amount).Error(0)
}

func (m *mockBank) CloseAccount(db custody.KVStore, authority, addr, dest custody.Address) error {
	return m.Called(db, authority, addr, dest).Error(0)
}

func TestMakeStopsWhenVaultCannotOpen(t *testing.T) {
	maker := weavetest.NewCondition()
	id, _, err := RecordAddress(maker.Address(), 3)
	require.NoError(t, err)
	source, _, err := cash.AssociatedAddress(maker.Address(), "ETH")
	require.NoError(t, err)

	reserve := coin.NewCoin(128+recordSpace, "IOV")
	bank := new(mockBank)
	bank.On("Balance", mock.Anything, source).Return(&coin.Coin{Ticker: "ETH", Amount: 50}, nil)
	bank.On("Allocate", mock.Anything, maker.Address(), uint64(recordSpace)).Return(&reserve, nil)
	bank.On("OpenVault", mock.Anything, maker.Address(), id, "ETH").
		Return(nil, errors.Wrap(errors.ErrDatabase, "disk full"))

	h := MakeEscrowHandler{
		auth:   &weavetest.Auth{Signer: maker},
		bucket: NewBucket(),
		bank:   bank,
	}
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &MakeMsg{
		Metadata: &custody.Metadata{Schema: 1},
		Mint:     "ETH",
		Seed:     3,
		Amount:   10,
	}}

	_, err = h.Deliver(context.Background(), db, tx)
	require.Error(t, err)
	assert.True(t, errors.ErrDatabase.Is(err))

	// no record is written once the vault fails
	_, err = NewBucket().GetEscrow(db, id)
	assert.True(t, errors.ErrNotFound.Is(err))

	bank.AssertExpectations(t)
	bank.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMakeRequiresMakerTokenAccount(t *testing.T) {
	maker := weavetest.NewCondition()
	source, _, err := cash.AssociatedAddress(maker.Address(), "ETH")
	require.NoError(t, err)

	bank := new(mockBank)
	bank.On("Balance", mock.Anything, source).Return(nil, errors.Wrap(errors.ErrNotFound, "no account"))

	h := MakeEscrowHandler{
		auth:   &weavetest.Auth{Signer: maker},
		bucket: NewBucket(),
		bank:   bank,
	}
	tx := &weavetest.Tx{Msg: &MakeMsg{
		Metadata: &custody.Metadata{Schema: 1},
		Mint:     "ETH",
		Seed:     1,
		Amount:   10,
	}}

	_, err = h.Check(context.Background(), store.MemStore(), tx)
	assert.True(t, errors.ErrNotFound.Is(err))
	bank.AssertExpectations(t)
	bank.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything, mock.Anything)
}
