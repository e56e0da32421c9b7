package escrow

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/weavetest"
	"github.com/iov-one/custody/weavetest/assert"
)

func TestValidateMessages(t *testing.T) {
	addr := weavetest.RandomAddr(t)
	meta := &custody.Metadata{Schema: 1}

	cases := map[string]struct {
		msg     custody.Msg
		wantErr *errors.Error
	}{
		"valid make": {
			msg: &MakeMsg{Metadata: meta, Mint: "ETH", Seed: 1, Amount: 10},
		},
		"make with maker": {
			msg: &MakeMsg{Metadata: meta, Maker: addr, Mint: "ETH", Amount: 10},
		},
		"make without metadata": {
			msg:     &MakeMsg{Mint: "ETH", Amount: 10},
			wantErr: errors.ErrInvalidInput,
		},
		"make with zero amount": {
			msg:     &MakeMsg{Metadata: meta, Mint: "ETH"},
			wantErr: errors.ErrInvalidAmount,
		},
		"make with bad mint": {
			msg:     &MakeMsg{Metadata: meta, Mint: "E", Amount: 10},
			wantErr: errors.ErrCurrency,
		},
		"make with bad maker": {
			msg:     &MakeMsg{Metadata: meta, Maker: custody.Address{1, 2}, Mint: "ETH", Amount: 10},
			wantErr: errors.ErrInvalidInput,
		},
		"valid deposit": {
			msg: &DepositMsg{Metadata: meta, EscrowID: addr, Amount: 1},
		},
		"deposit without escrow": {
			msg:     &DepositMsg{Metadata: meta, Amount: 1},
			wantErr: errors.ErrInvalidInput,
		},
		"deposit nothing": {
			msg:     &DepositMsg{Metadata: meta, EscrowID: addr},
			wantErr: errors.ErrInvalidAmount,
		},
		"valid set receiver": {
			msg: &SetReceiverMsg{Metadata: meta, EscrowID: addr, Receiver: addr},
		},
		"set receiver without receiver": {
			msg:     &SetReceiverMsg{Metadata: meta, EscrowID: addr},
			wantErr: errors.ErrEmpty,
		},
		"set receiver with bad receiver": {
			msg:     &SetReceiverMsg{Metadata: meta, EscrowID: addr, Receiver: custody.Address{1}},
			wantErr: errors.ErrInvalidInput,
		},
		"valid release": {
			msg: &ReleaseMsg{Metadata: meta, EscrowID: addr},
		},
		"release without escrow": {
			msg:     &ReleaseMsg{Metadata: meta},
			wantErr: errors.ErrInvalidInput,
		},
		"valid refund": {
			msg: &RefundMsg{Metadata: meta, EscrowID: addr},
		},
		"refund without metadata": {
			msg:     &RefundMsg{EscrowID: addr},
			wantErr: errors.ErrInvalidInput,
		},
		"valid configuration patch": {
			msg: &UpdateConfigurationMsg{Metadata: meta, Patch: &Configuration{DepositPolicy: DepositCapped}},
		},
		"empty configuration patch": {
			msg:     &UpdateConfigurationMsg{Metadata: meta},
			wantErr: errors.ErrEmpty,
		},
		"unknown deposit policy": {
			msg:     &UpdateConfigurationMsg{Metadata: meta, Patch: &Configuration{DepositPolicy: 3}},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.msg.Validate())
		})
	}
}

func TestRecordAddress(t *testing.T) {
	maker := weavetest.RandomAddr(t)

	a, bump, err := RecordAddress(maker, 1)
	assert.Nil(t, err)
	b, _, err := RecordAddress(maker, 1)
	assert.Nil(t, err)
	assert.Equal(t, a, b)

	other, _, err := RecordAddress(maker, 2)
	assert.Nil(t, err)
	if a.Equals(other) {
		t.Fatal("different seeds must derive different addresses")
	}
	stranger, _, err := RecordAddress(weavetest.RandomAddr(t), 1)
	assert.Nil(t, err)
	if a.Equals(stranger) {
		t.Fatal("different makers must derive different addresses")
	}

	e := Escrow{
		Metadata: &custody.Metadata{Schema: 1},
		Maker:    maker,
		Mint:     "ETH",
		Seed:     1,
		Amount:   5,
		Bump:     uint32(bump),
	}
	got, err := e.Address()
	assert.Nil(t, err)
	assert.Equal(t, a, got)

	_, _, err = RecordAddress(nil, 1)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestVaultAddress(t *testing.T) {
	id := weavetest.RandomAddr(t)

	eth, err := VaultAddress(id, "ETH")
	assert.Nil(t, err)
	btc, err := VaultAddress(id, "BTC")
	assert.Nil(t, err)
	if eth.Equals(btc) {
		t.Fatal("each mint must have its own vault")
	}

	_, err = VaultAddress(id, "eth")
	assert.IsErr(t, errors.ErrCurrency, err)
}

func TestValidateEscrow(t *testing.T) {
	maker := weavetest.RandomAddr(t)
	meta := &custody.Metadata{Schema: 1}

	cases := map[string]struct {
		escrow  Escrow
		wantErr *errors.Error
	}{
		"valid": {
			escrow: Escrow{Metadata: meta, Maker: maker, Mint: "ETH", Amount: 1, Bump: 255, Reserve: coin.NewCoinp(10, "IOV")},
		},
		"bound": {
			escrow: Escrow{Metadata: meta, Maker: maker, Receiver: maker, Mint: "ETH", Amount: 1},
		},
		"missing maker": {
			escrow:  Escrow{Metadata: meta, Mint: "ETH", Amount: 1},
			wantErr: errors.ErrInvalidInput,
		},
		"zero amount": {
			escrow:  Escrow{Metadata: meta, Maker: maker, Mint: "ETH"},
			wantErr: errors.ErrInvalidAmount,
		},
		"bump out of range": {
			escrow:  Escrow{Metadata: meta, Maker: maker, Mint: "ETH", Amount: 1, Bump: 256},
			wantErr: errors.ErrInvalidModel,
		},
		"bad reserve": {
			escrow:  Escrow{Metadata: meta, Maker: maker, Mint: "ETH", Amount: 1, Reserve: coin.NewCoinp(1, "x")},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.escrow.Validate())
		})
	}
}
