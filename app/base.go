package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp extends StoreApp with transaction processing. Every transaction
// is decoded, given a context scoped to the current block and passed to
// a single handler, usually a decorator chain ending in a Router.
type BaseApp struct {
	*StoreApp
	decoder custody.TxDecoder
	handler custody.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder custody.TxDecoder,
	handler custody.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store.WithDebug(debug),
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx executes the transaction against the deliver store. Changes
// are committed with the block.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	ctx, tx, err := b.prepare("deliver_tx", txBytes)
	if err != nil {
		return custody.DeliverTxError(err, b.debug)
	}
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return custody.DeliverOrError(res, err, b.debug)
}

// CheckTx validates the transaction against the mempool store, which is
// discarded at every commit.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	ctx, tx, err := b.prepare("check_tx", txBytes)
	if err != nil {
		return custody.CheckTxError(err, b.debug)
	}
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return custody.CheckOrError(res, err, b.debug)
}

// prepare decodes the transaction and builds its execution context.
func (b BaseApp) prepare(call string, txBytes []byte) (custody.Context, custody.Tx, error) {
	if len(txBytes) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmpty, "transaction")
	}
	tx, err := b.decode(txBytes)
	if err != nil {
		return nil, nil, err
	}
	ctx := custody.WithLogInfo(b.BlockContext(),
		"call", call,
		"path", custody.GetPath(tx))
	return ctx, tx, nil
}

// decode runs the decoder, a malformed transaction must not crash the node.
func (b BaseApp) decode(txBytes []byte) (tx custody.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(txBytes)
}
