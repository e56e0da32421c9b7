package custody

import (
	"encoding/json"

	"github.com/iov-one/custody/errors"
)

// Handler executes one kind of instruction, for example making an escrow
// or moving ledger funds. Check runs in the mempool, Deliver in a block.
type Handler interface {
	Checker
	Deliverer
}

// Checker validates an instruction without committing its effects.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes an instruction against block state.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator runs around every Handler of a stack. Signature checks,
// savepoints, logging and metrics are decorators.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds a message path to the Handler executing it.
type Registry interface {
	Handle(path string, h Handler)
}

// Options is the genesis app_state, one raw JSON document per extension.
type Options map[string]json.RawMessage

// ReadOptions decodes the document stored under key into obj. A missing
// key leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	err := json.Unmarshal(raw, obj)
	switch err.(type) {
	case nil:
		return nil
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: %s", key, err)
	default:
		// Model validation errors already carry a code.
		return errors.Wrapf(err, "genesis %q", key)
	}
}

// Initializer loads the genesis state of one extension.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
