package cash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
	wassert "github.com/iov-one/custody/weavetest/assert"
)

// accountReserve is the reserve taken for a single account with the
// configuration used by newTestLedger: (128 + 72) * 2.
const accountReserve = 400

func newTestLedger(t testing.TB) (custody.CacheableKVStore, BaseController) {
	t.Helper()
	db := store.MemStore()
	conf := Configuration{
		Metadata:        &custody.Metadata{Schema: 1},
		NativeTicker:    "IOV",
		ReservePerByte:  2,
		AccountOverhead: 128,
	}
	require.NoError(t, gconf.Save(db, confPkg, &conf))
	return db, NewController(NewBucket())
}

func assertBalance(t testing.TB, db custody.ReadOnlyKVStore, ctrl BaseController, addr custody.Address, want coin.Coin) {
	t.Helper()
	got, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestTransferBetweenNativeAccounts(t *testing.T) {
	alice := weavetest.RandomAddr(t)
	bob := weavetest.RandomAddr(t)
	carol := weavetest.RandomAddr(t)

	cases := map[string]struct {
		authority custody.Address
		src       custody.Address
		dest      custody.Address
		amount    coin.Coin
		wantErr   *errors.Error
		wantSrc   uint64
		wantDest  uint64
	}{
		"full transfer to a new account": {
			authority: alice,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(1000, "IOV"),
			wantSrc:   0,
			wantDest:  1000,
		},
		"partial transfer": {
			authority: alice,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(300, "IOV"),
			wantSrc:   700,
			wantDest:  300,
		},
		"insufficient balance": {
			authority: alice,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(1001, "IOV"),
			wantErr:   errors.ErrInsufficientAmount,
			wantSrc:   1000,
		},
		"authority is not the holder": {
			authority: bob,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(1, "IOV"),
			wantErr:   errors.ErrUnauthorized,
			wantSrc:   1000,
		},
		"missing source": {
			authority: carol,
			src:       carol,
			dest:      bob,
			amount:    coin.NewCoin(1, "IOV"),
			wantErr:   errors.ErrNotFound,
			wantSrc:   1000,
		},
		"zero amount": {
			authority: alice,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(0, "IOV"),
			wantErr:   errors.ErrInvalidAmount,
			wantSrc:   1000,
		},
		"wrong currency": {
			authority: alice,
			src:       alice,
			dest:      bob,
			amount:    coin.NewCoin(10, "ETH"),
			wantErr:   errors.ErrCurrency,
			wantSrc:   1000,
		},
		"same account": {
			authority: alice,
			src:       alice,
			dest:      alice,
			amount:    coin.NewCoin(10, "IOV"),
			wantErr:   errors.ErrInvalidInput,
			wantSrc:   1000,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db, ctrl := newTestLedger(t)
			require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(1000, "IOV")))

			cache := db.CacheWrap()
			err := ctrl.Transfer(cache, tc.authority, tc.src, tc.dest, tc.amount)
			wassert.IsErr(t, tc.wantErr, err)
			if err != nil {
				// Failed instructions are never written.
				cache.Discard()
			} else {
				require.NoError(t, cache.Write())
			}

			assertBalance(t, db, ctrl, alice, coin.NewCoin(tc.wantSrc, "IOV"))
			if tc.wantDest != 0 {
				assertBalance(t, db, ctrl, bob, coin.NewCoin(tc.wantDest, "IOV"))
			}
		})
	}
}

func TestDestinationTickerMustMatch(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	bob := weavetest.RandomAddr(t)

	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(10+accountReserve, "IOV")))
	bobETH, err := ctrl.OpenAccount(db, alice, bob, "ETH")
	require.NoError(t, err)

	err = ctrl.Transfer(db, alice, alice, bobETH, coin.NewCoin(5, "IOV"))
	wassert.IsErr(t, errors.ErrCurrency, err)

	err = ctrl.Issue(db, bobETH, coin.NewCoin(5, "IOV"))
	wassert.IsErr(t, errors.ErrCurrency, err)
}

func TestTokensNeedAnOpenedAccount(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	bob := weavetest.RandomAddr(t)

	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(accountReserve, "IOV")))
	src, err := ctrl.OpenAccount(db, alice, alice, "ETH")
	require.NoError(t, err)
	require.NoError(t, ctrl.Issue(db, src, coin.NewCoin(50, "ETH")))

	// Only the native ticker creates an account at a bare address.
	err = ctrl.Transfer(db, alice, src, bob, coin.NewCoin(1, "ETH"))
	wassert.IsErr(t, errors.ErrNotFound, err)
	err = ctrl.Issue(db, bob, coin.NewCoin(1, "ETH"))
	wassert.IsErr(t, errors.ErrNotFound, err)

	_, err = ctrl.Balance(db, bob)
	wassert.IsErr(t, errors.ErrNotFound, err)
	assertBalance(t, db, ctrl, src, coin.NewCoin(50, "ETH"))

	// bob can still receive the native ticker and pay for storage.
	require.NoError(t, ctrl.Issue(db, bob, coin.NewCoin(accountReserve, "IOV")))
	_, err = ctrl.OpenAccount(db, bob, bob, "ETH")
	require.NoError(t, err)
}

func TestVaultIsCreditedOnlyByDeposit(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	program := weavetest.RandomAddr(t)

	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(2*accountReserve, "IOV")))
	src, err := ctrl.OpenAccount(db, alice, alice, "ETH")
	require.NoError(t, err)
	require.NoError(t, ctrl.Issue(db, src, coin.NewCoin(50, "ETH")))
	vault, err := ctrl.OpenVault(db, alice, program, "ETH")
	require.NoError(t, err)

	err = ctrl.Transfer(db, alice, src, vault, coin.NewCoin(10, "ETH"))
	wassert.IsErr(t, errors.ErrUnauthorized, err)
	assertBalance(t, db, ctrl, vault, coin.NewCoin(0, "ETH"))

	require.NoError(t, ctrl.Deposit(db, alice, src, vault, coin.NewCoin(10, "ETH")))
	assertBalance(t, db, ctrl, vault, coin.NewCoin(10, "ETH"))
	assertBalance(t, db, ctrl, src, coin.NewCoin(40, "ETH"))

	// Deposit only targets vaults.
	err = ctrl.Deposit(db, program, vault, src, coin.NewCoin(1, "ETH"))
	wassert.IsErr(t, errors.ErrInvalidInput, err)

	// The owner drains the vault with a plain transfer.
	require.NoError(t, ctrl.Transfer(db, program, vault, src, coin.NewCoin(10, "ETH")))
	require.NoError(t, ctrl.CloseAccount(db, program, vault, alice))
	assertBalance(t, db, ctrl, alice, coin.NewCoin(accountReserve, "IOV"))
}

func TestAssociatedAccountLifecycle(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	bob := weavetest.RandomAddr(t)

	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(1000+accountReserve, "IOV")))
	bobETH, err := ctrl.OpenAccount(db, alice, bob, "ETH")
	require.NoError(t, err)

	addr, err := ctrl.OpenAccount(db, alice, alice, "ETH")
	require.NoError(t, err)
	want, _, err := AssociatedAddress(alice, "ETH")
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	// The payer covers the reserve of the new account.
	assertBalance(t, db, ctrl, alice, coin.NewCoin(1000-accountReserve, "IOV"))
	assertBalance(t, db, ctrl, addr, coin.NewCoin(0, "ETH"))

	_, err = ctrl.OpenAccount(db, alice, alice, "ETH")
	wassert.IsErr(t, errors.ErrDuplicate, err)

	require.NoError(t, ctrl.Issue(db, addr, coin.NewCoin(50, "ETH")))

	// Only the owner can move funds out of the associated account, even
	// though the account is stored under a different address.
	err = ctrl.Transfer(db, addr, addr, bobETH, coin.NewCoin(10, "ETH"))
	wassert.IsErr(t, errors.ErrUnauthorized, err)
	require.NoError(t, ctrl.Transfer(db, alice, addr, bobETH, coin.NewCoin(10, "ETH")))
	assertBalance(t, db, ctrl, addr, coin.NewCoin(40, "ETH"))

	err = ctrl.CloseAccount(db, alice, addr, alice)
	wassert.IsErr(t, errors.ErrInvalidState, err)

	require.NoError(t, ctrl.Transfer(db, alice, addr, bobETH, coin.NewCoin(40, "ETH")))
	assertBalance(t, db, ctrl, bobETH, coin.NewCoin(50, "ETH"))
	err = ctrl.CloseAccount(db, bob, addr, bob)
	wassert.IsErr(t, errors.ErrUnauthorized, err)

	require.NoError(t, ctrl.CloseAccount(db, alice, addr, alice))
	_, err = ctrl.Balance(db, addr)
	wassert.IsErr(t, errors.ErrNotFound, err)
	assertBalance(t, db, ctrl, alice, coin.NewCoin(1000, "IOV"))
}

func TestOpenAccountRequiresReserve(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)

	_, err := ctrl.OpenAccount(db, alice, alice, "ETH")
	wassert.IsErr(t, errors.ErrNotFound, err)

	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(accountReserve-1, "IOV")))
	_, err = ctrl.OpenAccount(db, alice, alice, "ETH")
	wassert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestNativeAccountCannotBeClosed(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(0, "IOV")))

	err := ctrl.CloseAccount(db, alice, alice, alice)
	wassert.IsErr(t, errors.ErrInvalidState, err)
}

func TestAllocateAndDeallocate(t *testing.T) {
	db, ctrl := newTestLedger(t)
	alice := weavetest.RandomAddr(t)
	bob := weavetest.RandomAddr(t)
	require.NoError(t, ctrl.Issue(db, alice, coin.NewCoin(1000, "IOV")))

	reserve, err := ctrl.Allocate(db, alice, 22)
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(300, "IOV"), *reserve)
	assertBalance(t, db, ctrl, alice, coin.NewCoin(700, "IOV"))

	// A reserve can be refunded to anybody.
	require.NoError(t, ctrl.Deallocate(db, bob, reserve))
	assertBalance(t, db, ctrl, bob, coin.NewCoin(300, "IOV"))

	require.NoError(t, ctrl.Deallocate(db, bob, nil))
	assertBalance(t, db, ctrl, bob, coin.NewCoin(300, "IOV"))
}

func TestAllocateWithoutReserveCost(t *testing.T) {
	db := store.MemStore()
	conf := Configuration{
		Metadata:     &custody.Metadata{Schema: 1},
		NativeTicker: "IOV",
	}
	require.NoError(t, gconf.Save(db, confPkg, &conf))
	ctrl := NewController(NewBucket())

	// Storage is free, so a payer without an account can open one.
	nobody := weavetest.RandomAddr(t)
	reserve, err := ctrl.Allocate(db, nobody, 1000)
	require.NoError(t, err)
	assert.True(t, reserve.IsZero())
}

func TestAllocateRequiresConfiguration(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	_, err := ctrl.Allocate(db, weavetest.RandomAddr(t), 10)
	wassert.IsErr(t, errors.ErrNotFound, err)
}
