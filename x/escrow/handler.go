package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
)

const (
	// pay escrow cost up-front
	makeEscrowCost        int64 = 300
	depositEscrowCost     int64 = 100
	setReceiverEscrowCost int64 = 50
	releaseEscrowCost     int64 = 0
	refundEscrowCost      int64 = 0
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, bank cash.Controller) {
	bucket := NewBucket()

	r.Handle(pathMakeMsg, MakeEscrowHandler{auth, bucket, bank})
	r.Handle(pathDepositMsg, DepositEscrowHandler{auth, bucket, bank})
	r.Handle(pathSetReceiverMsg, SetReceiverHandler{auth, bucket})
	r.Handle(pathReleaseMsg, ReleaseEscrowHandler{auth, bucket, bank})
	r.Handle(pathRefundMsg, RefundEscrowHandler{auth, bucket, bank})
	r.Handle(pathUpdateConfigurationMsg, NewConfigHandler(auth))
}

// RegisterQuery will register this bucket as "/escrows"
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// NewConfigHandler returns a handler for UpdateConfigurationMsg.
func NewConfigHandler(auth x.Authenticator) custody.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(confPkg, &conf, auth, nil)
}

// MakeEscrowHandler creates an escrow record and its vault.
type MakeEscrowHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.Controller
}

var _ custody.Handler = MakeEscrowHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h MakeEscrowHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: makeEscrowCost}, nil
}

// Deliver stores the escrow record and opens an empty vault. The maker pays
// the storage reserve of both. No funds are moved. The escrow address is
// returned as the result data.
func (h MakeEscrowHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, id, bump, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	reserve, err := h.bank.Allocate(db, msg.Maker, recordSpace)
	if err != nil {
		return nil, errors.Wrap(err, "escrow storage")
	}
	vault, err := h.bank.OpenVault(db, msg.Maker, id, msg.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "open vault")
	}

	escrow := &Escrow{
		Metadata: &custody.Metadata{Schema: 1},
		Maker:    msg.Maker,
		Mint:     msg.Mint,
		Seed:     msg.Seed,
		Amount:   msg.Amount,
		Bump:     uint32(bump),
		Reserve:  reserve,
	}
	if err := h.bucket.Put(db, id, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}

	custody.GetLogger(ctx).Info("escrow created",
		"escrow", id, "vault", vault, "maker", msg.Maker, "seed", msg.Seed, "amount", msg.Amount, "mint", msg.Mint)
	return &custody.DeliverResult{Data: id}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h MakeEscrowHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*MakeMsg, custody.Address, uint8, error) {
	var msg MakeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}

	// Maker must authorize this (if not set, defaults to MainSigner).
	if msg.Maker == nil {
		msg.Maker = x.MainSignerAddress(ctx, h.auth)
		if msg.Maker == nil {
			return nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
		}
	} else if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}

	id, bump, err := RecordAddress(msg.Maker, msg.Seed)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "derive escrow address")
	}
	switch err := h.bucket.Has(db, id); {
	case err == nil:
		return nil, nil, 0, errors.Wrapf(errors.ErrDuplicate, "escrow %s", id)
	case !errors.ErrNotFound.Is(err):
		return nil, nil, 0, err
	}

	// The maker needs an account of the escrowed asset to deposit from.
	source, _, err := cash.AssociatedAddress(msg.Maker, msg.Mint)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "maker account")
	}
	if _, err := h.bank.Balance(db, source); err != nil {
		return nil, nil, 0, errors.Wrap(err, "maker account")
	}
	return &msg, id, bump, nil
}

// DepositEscrowHandler moves maker funds into the vault.
type DepositEscrowHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.Controller
}

var _ custody.Handler = DepositEscrowHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h DepositEscrowHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: depositEscrowCost}, nil
}

// Deliver transfers the amount from the maker account to the vault. The
// escrow record is not modified.
func (h DepositEscrowHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	vault, err := VaultAddress(msg.EscrowID, escrow.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "vault address")
	}
	amount := coin.NewCoin(msg.Amount, escrow.Mint)

	policy, err := depositPolicy(db)
	if err != nil {
		return nil, err
	}
	if policy == DepositCapped {
		held, err := h.bank.Balance(db, vault)
		if err != nil {
			return nil, errors.Wrap(err, "vault")
		}
		total, err := held.Add(amount)
		if err != nil {
			return nil, err
		}
		if total.Amount > escrow.Amount {
			return nil, errors.Wrapf(errors.ErrInvalidAmount,
				"deposit of %d exceeds committed amount %d, vault holds %d", msg.Amount, escrow.Amount, held.Amount)
		}
	}

	source, _, err := cash.AssociatedAddress(escrow.Maker, escrow.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "maker account")
	}
	if err := h.bank.Deposit(db, escrow.Maker, source, vault, amount); err != nil {
		return nil, err
	}

	custody.GetLogger(ctx).Info("escrow deposit", "escrow", msg.EscrowID, "amount", amount)
	return &custody.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h DepositEscrowHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*DepositMsg, *Escrow, error) {
	var msg DepositMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.GetEscrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can deposit")
	}
	return &msg, escrow, nil
}

// SetReceiverHandler binds the receiver of an escrow.
type SetReceiverHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ custody.Handler = SetReceiverHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h SetReceiverHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: setReceiverEscrowCost}, nil
}

// Deliver sets the receiver. No funds are moved.
func (h SetReceiverHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	escrow.Receiver = msg.Receiver
	if err := h.bucket.Put(db, msg.EscrowID, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot save")
	}

	custody.GetLogger(ctx).Info("escrow receiver bound", "escrow", msg.EscrowID, "receiver", msg.Receiver)
	return &custody.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h SetReceiverHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*SetReceiverMsg, *Escrow, error) {
	var msg SetReceiverMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.GetEscrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can set the receiver")
	}
	if escrow.IsBound() {
		return nil, nil, errors.Wrapf(ErrAlreadyBound, "receiver %s", escrow.Receiver)
	}
	return &msg, escrow, nil
}

// ReleaseEscrowHandler hands the vault balance to the receiver.
type ReleaseEscrowHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.Controller
}

var _ custody.Handler = ReleaseEscrowHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h ReleaseEscrowHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: releaseEscrowCost}, nil
}

// Deliver moves the current vault balance to the associated account of the
// receiver, opening it at the receiver's cost if needed. The vault and the
// escrow record are closed and both reserves go back to the maker.
func (h ReleaseEscrowHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	id, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	dest, _, err := cash.AssociatedAddress(escrow.Receiver, escrow.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "receiver account")
	}
	switch _, err := h.bank.Balance(db, dest); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		if _, err := h.bank.OpenAccount(db, escrow.Receiver, escrow.Receiver, escrow.Mint); err != nil {
			return nil, errors.Wrap(err, "open receiver account")
		}
	default:
		return nil, err
	}

	released, err := closeEscrow(db, h.bucket, h.bank, id, escrow, dest)
	if err != nil {
		return nil, err
	}

	custody.GetLogger(ctx).Info("escrow released",
		"escrow", id, "receiver", escrow.Receiver, "amount", released)
	return &custody.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h ReleaseEscrowHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (custody.Address, *Escrow, error) {
	var msg ReleaseMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.GetEscrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !escrow.IsBound() {
		return nil, nil, errors.Wrap(ErrReceiverUnset, "cannot release")
	}
	if !h.auth.HasAddress(ctx, escrow.Receiver) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the receiver can release")
	}
	return msg.EscrowID, escrow, nil
}

// RefundEscrowHandler returns the vault balance to the maker.
type RefundEscrowHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.Controller
}

var _ custody.Handler = RefundEscrowHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h RefundEscrowHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: refundEscrowCost}, nil
}

// Deliver moves the current vault balance back to the maker account, then
// closes the vault and the escrow record.
func (h RefundEscrowHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	id, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	dest, _, err := cash.AssociatedAddress(escrow.Maker, escrow.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "maker account")
	}
	switch _, err := h.bank.Balance(db, dest); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		if _, err := h.bank.OpenAccount(db, escrow.Maker, escrow.Maker, escrow.Mint); err != nil {
			return nil, errors.Wrap(err, "open maker account")
		}
	default:
		return nil, err
	}

	refunded, err := closeEscrow(db, h.bucket, h.bank, id, escrow, dest)
	if err != nil {
		return nil, err
	}

	custody.GetLogger(ctx).Info("escrow refunded", "escrow", id, "maker", escrow.Maker, "amount", refunded)
	return &custody.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h RefundEscrowHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (custody.Address, *Escrow, error) {
	var msg RefundMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.GetEscrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can refund")
	}
	return msg.EscrowID, escrow, nil
}

// closeEscrow drains the vault into dest, closes the vault and deletes the
// escrow record. Both storage reserves are returned to the maker. The
// drained amount is returned.
//
// The vault must be empty before it can be closed, so the transfer always
// comes first.
func closeEscrow(db custody.KVStore, bucket Bucket, bank cash.Controller, id custody.Address, escrow *Escrow, dest custody.Address) (coin.Coin, error) {
	vault, err := VaultAddress(id, escrow.Mint)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "vault address")
	}
	held, err := bank.Balance(db, vault)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "vault")
	}
	if held.IsPositive() {
		// The escrow address is the vault owner, only this program
		// can act as that authority.
		if err := bank.Transfer(db, id, vault, dest, *held); err != nil {
			return coin.Coin{}, errors.Wrap(err, "drain vault")
		}
	}
	if err := bank.CloseAccount(db, id, vault, escrow.Maker); err != nil {
		return coin.Coin{}, errors.Wrap(err, "close vault")
	}
	if err := bucket.Delete(db, id); err != nil {
		return coin.Coin{}, errors.Wrap(err, "delete escrow")
	}
	if err := bank.Deallocate(db, escrow.Maker, escrow.Reserve); err != nil {
		return coin.Coin{}, errors.Wrap(err, "escrow storage")
	}
	return *held, nil
}
