package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/custody"
)

// Auth authenticates a fixed set of conditions regardless of the context.
// Signer is a shortcut for a single signer. When both are set, Signer is
// returned after Signers, so it acts as the main signer.
type Auth struct {
	Signer  custody.Condition
	Signers []custody.Condition
}

func (a *Auth) GetConditions(custody.Context) []custody.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := append([]custody.Condition(nil), a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions attached to the context with
// SetConditions, so a single authenticator serves several signers.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

// SetConditions returns a context carrying the given signers.
func (a *CtxAuth) SetConditions(ctx custody.Context, conds ...custody.Condition) custody.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx custody.Context) []custody.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []custody.Condition:
		return v
	default:
		panic(fmt.Sprintf("instead of []custody.Condition got %T", v))
	}
}

func (a *CtxAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

func signedBy(conds []custody.Condition, addr custody.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
