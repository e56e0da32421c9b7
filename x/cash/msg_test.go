package cash

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
		"valid send": {
			msg: &SendMsg{Metadata: meta, Destination: addr, Amount: coin.NewCoinp(1, "IOV")},
		},
		"send without metadata": {
			msg:     &SendMsg{Destination: addr, Amount: coin.NewCoinp(1, "IOV")},
			wantErr: errors.ErrInvalidInput,
		},
		"send with bad ticker": {
			msg:     &SendMsg{Metadata: meta, Destination: addr, Amount: coin.NewCoinp(1, "iov")},
			wantErr: errors.ErrCurrency,
		},
		"send with long memo": {
			msg: &SendMsg{
				Metadata:    meta,
				Destination: addr,
				Amount:      coin.NewCoinp(1, "IOV"),
				Memo:        string(make([]byte, maxMemoSize+1)),
			},
			wantErr: errors.ErrInvalidState,
		},
		"valid create account": {
			msg: &CreateAccountMsg{Metadata: meta, Ticker: "ETH"},
		},
		"create account with bad owner": {
			msg:     &CreateAccountMsg{Metadata: meta, Owner: []byte{1, 2}, Ticker: "ETH"},
			wantErr: errors.ErrInvalidInput,
		},
		"create account without ticker": {
			msg:     &CreateAccountMsg{Metadata: meta},
			wantErr: errors.ErrCurrency,
		},
		"valid close account": {
			msg: &CloseAccountMsg{Metadata: meta, Account: addr},
		},
		"close account without account": {
			msg:     &CloseAccountMsg{Metadata: meta},
			wantErr: errors.ErrInvalidInput,
		},
		"configuration without patch": {
			msg:     &UpdateConfigurationMsg{Metadata: meta},
			wantErr: errors.ErrEmpty,
		},
		"configuration with bad ticker": {
			msg:     &UpdateConfigurationMsg{Metadata: meta, Patch: &Configuration{NativeTicker: "x"}},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.msg.Validate())
		})
	}
}

func TestAssociatedAddress(t *testing.T) {
	owner := weavetest.RandomAddr(t)

	a, bump, err := AssociatedAddress(owner, "ETH")
	assert.Nil(t, err)
	again, err := custody.CreateProgramAddress(ProgramName, bump, associatedSeed, owner, []byte("ETH"))
	assert.Nil(t, err)
	assert.Equal(t, a, again)

	b, _, err := AssociatedAddress(owner, "IOV")
	assert.Nil(t, err)
	if a.Equals(b) {
		t.Fatal("each ticker must use a different account")
	}

	_, _, err = AssociatedAddress(owner, "bad")
	assert.IsErr(t, errors.ErrCurrency, err)
	_, _, err = AssociatedAddress(nil, "ETH")
	assert.IsErr(t, errors.ErrInvalidInput, err)
}
