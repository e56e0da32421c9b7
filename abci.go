package custody

import (
	"github.com/iov-one/custody/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are always reported through the error return of a handler.
type DeliverResult struct {
	// Data is the machine readable outcome, for example the address of a
	// newly made escrow.
	Data []byte
	// Log is a human readable note.
	Log string
	// Tags are indexed by tendermint and allow searching for
	// transactions, for example by escrow address.
	Tags []common.KVPair
	// GasUsed is reported to tendermint but not enforced.
	GasUsed int64
}

// ToABCI converts our internal type into an abci response
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a successful mempool check.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the maximum units of work the transaction may use.
	GasAllocated int64
}

// ToABCI converts our internal type into an abci response
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError returns the abci response for the handler outcome of
// DeliverTx. A non nil error always takes precedence.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil || result == nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the abci response for the handler outcome of
// CheckTx. A non nil error always takes precedence.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil || result == nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError converts an error into a failed DeliverTx response.
// Unless debug is set, details of unregistered errors are redacted.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errorResponse("cannot deliver tx", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError converts an error into a failed CheckTx response.
// Unless debug is set, details of unregistered errors are redacted.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errorResponse("cannot check tx", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

// QueryError converts an error into a failed query response.
func QueryError(err error, debug bool) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseQuery{Code: code, Log: log}
}

func errorResponse(prefix string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, prefix + ": " + log
}
