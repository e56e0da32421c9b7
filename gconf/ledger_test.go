package gconf_test

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
	"github.com/iov-one/custody/weavetest/assert"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/escrow"
)

func TestUpdateLedgerConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	initial := cash.Configuration{
		Metadata:        &custody.Metadata{Schema: 1},
		Owner:           owner.Address(),
		NativeTicker:    "IOV",
		ReservePerByte:  2,
		AccountOverhead: 128,
	}

	cases := map[string]struct {
		Signer     custody.Condition
		Patch      *cash.Configuration
		WantErr    *errors.Error
		WantConfig *cash.Configuration
	}{
		"reserve price is updated, other fields are kept": {
			Signer: owner,
			Patch:  &cash.Configuration{ReservePerByte: 5},
			WantConfig: &cash.Configuration{
				Metadata:        &custody.Metadata{Schema: 1},
				Owner:           owner.Address(),
				NativeTicker:    "IOV",
				ReservePerByte:  5,
				AccountOverhead: 128,
			},
		},
		"native ticker can be replaced": {
			Signer: owner,
			Patch:  &cash.Configuration{NativeTicker: "ETH"},
			WantConfig: &cash.Configuration{
				Metadata:        &custody.Metadata{Schema: 1},
				Owner:           owner.Address(),
				NativeTicker:    "ETH",
				ReservePerByte:  2,
				AccountOverhead: 128,
			},
		},
		"invalid native ticker": {
			Signer:  owner,
			Patch:   &cash.Configuration{NativeTicker: "eth"},
			WantErr: errors.ErrCurrency,
		},
		"only the owner can update": {
			Signer:  weavetest.NewCondition(),
			Patch:   &cash.Configuration{ReservePerByte: 5},
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			conf := initial
			if err := gconf.Save(db, "cash", &conf); err != nil {
				t.Fatalf("cannot save initial configuration: %s", err)
			}

			auth := &weavetest.Auth{Signer: tc.Signer}
			handler := gconf.NewUpdateConfigurationHandler("cash", &cash.Configuration{}, auth, nil)
			tx := &weavetest.Tx{Msg: &cash.UpdateConfigurationMsg{
				Metadata: &custody.Metadata{Schema: 1},
				Patch:    tc.Patch,
			}}

			cache := db.CacheWrap()
			if _, err := handler.Check(context.Background(), cache, tx); !tc.WantErr.Is(err) {
				t.Fatalf("check: %+v", err)
			}
			cache.Discard()
			if _, err := handler.Deliver(context.Background(), db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("deliver: %+v", err)
			}

			want := &initial
			if tc.WantConfig != nil {
				want = tc.WantConfig
			}
			var got cash.Configuration
			if err := gconf.Load(db, "cash", &got); err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, want, &got)
		})
	}
}

func TestPatchMustMatchHandledConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	db := store.MemStore()
	conf := escrow.Configuration{
		Metadata:      &custody.Metadata{Schema: 1},
		Owner:         owner.Address(),
		DepositPolicy: escrow.DepositUncapped,
	}
	if err := gconf.Save(db, "escrow", &conf); err != nil {
		t.Fatalf("cannot save initial configuration: %s", err)
	}

	auth := &weavetest.Auth{Signer: owner}
	handler := gconf.NewUpdateConfigurationHandler("escrow", &escrow.Configuration{}, auth, nil)

	tx := &weavetest.Tx{Msg: &cash.UpdateConfigurationMsg{
		Metadata: &custody.Metadata{Schema: 1},
		Patch:    &cash.Configuration{ReservePerByte: 5},
	}}
	_, err := handler.Deliver(context.Background(), db, tx)
	if !errors.ErrInvalidMsg.Is(err) {
		t.Fatalf("want invalid message, got %+v", err)
	}

	tx = &weavetest.Tx{Msg: &escrow.UpdateConfigurationMsg{
		Metadata: &custody.Metadata{Schema: 1},
		Patch:    &escrow.Configuration{DepositPolicy: escrow.DepositCapped},
	}}
	if _, err := handler.Deliver(context.Background(), db, tx); err != nil {
		t.Fatalf("cannot update: %+v", err)
	}
	var got escrow.Configuration
	if err := gconf.Load(db, "escrow", &got); err != nil {
		t.Fatalf("cannot load configuration: %s", err)
	}
	assert.Equal(t, escrow.DepositCapped, got.DepositPolicy)
}
