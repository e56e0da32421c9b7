package x

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/weavetest"
	"github.com/iov-one/custody/weavetest/assert"
)

func TestAuthenticators(t *testing.T) {
	maker := weavetest.NewCondition()
	receiver := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	sigs := &weavetest.CtxAuth{Key: "sigs"}
	other := &weavetest.CtxAuth{Key: "other"}
	bg := context.Background()

	cases := map[string]struct {
		ctx     custody.Context
		auth    Authenticator
		main    custody.Condition
		signed  []custody.Condition
		outside custody.Condition
	}{
		"nobody signed": {
			ctx:     bg,
			auth:    &weavetest.Auth{},
			outside: receiver,
		},
		"maker signed": {
			ctx:     bg,
			auth:    &weavetest.Auth{Signer: maker},
			main:    maker,
			signed:  []custody.Condition{maker},
			outside: receiver,
		},
		"chain keeps authenticator order": {
			ctx: bg,
			auth: ChainAuth(
				&weavetest.Auth{Signer: receiver},
				&weavetest.Auth{Signer: maker},
			),
			main:    receiver,
			signed:  []custody.Condition{receiver, maker},
			outside: stranger,
		},
		"context conditions under the same key": {
			ctx:     sigs.SetConditions(bg, maker, receiver),
			auth:    sigs,
			main:    maker,
			signed:  []custody.Condition{maker, receiver},
			outside: stranger,
		},
		"context conditions under another key": {
			ctx:     sigs.SetConditions(bg, maker, receiver),
			auth:    other,
			outside: maker,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.main, MainSigner(tc.ctx, tc.auth))

			got := tc.auth.GetConditions(tc.ctx)
			assert.Equal(t, tc.signed, got)
			for _, c := range tc.signed {
				if !tc.auth.HasAddress(tc.ctx, c.Address()) {
					t.Fatalf("signer %s not found", c)
				}
			}
			if tc.auth.HasAddress(tc.ctx, tc.outside.Address()) {
				t.Fatal("unexpected signer found")
			}

			if !HasAllConditions(tc.ctx, tc.auth, got) {
				t.Fatal("signers do not satisfy themselves")
			}
			if HasAllConditions(tc.ctx, tc.auth, append(got, tc.outside)) {
				t.Fatal("missing signer accepted")
			}
			if n := len(got); n > 0 {
				if !HasNConditions(tc.ctx, tc.auth, got, n-1) {
					t.Fatal("subset threshold rejected")
				}
				if HasNConditions(tc.ctx, tc.auth, got, n+1) {
					t.Fatal("threshold above signer count accepted")
				}
			}
		})
	}
}

func TestSignerAddresses(t *testing.T) {
	maker := weavetest.NewCondition()
	receiver := weavetest.NewCondition()
	both := &weavetest.Auth{Signers: []custody.Condition{maker, receiver}}
	bg := context.Background()

	assert.Equal(t, []custody.Address{maker.Address(), receiver.Address()}, GetAddresses(bg, both))
	assert.Equal(t, 0, len(GetAddresses(bg, &weavetest.Auth{})))

	assert.Equal(t, maker.Address(), MainSignerAddress(bg, both))
	if addr := MainSignerAddress(bg, &weavetest.Auth{}); addr != nil {
		t.Fatalf("want no main signer, got %s", addr)
	}
}
