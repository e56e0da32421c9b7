package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x"
)

const (
	sendTxCost          int64 = 100
	createAccountTxCost int64 = 300
	closeAccountTxCost  int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, control Controller) {
	bucket := NewBucket()
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, bucket, control))
	r.Handle(CreateAccountMsg{}.Path(), NewCreateAccountHandler(auth, control))
	r.Handle(CloseAccountMsg{}.Path(), NewCloseAccountHandler(auth, bucket, control))
	r.Handle((&UpdateConfigurationMsg{}).Path(), NewConfigHandler(auth))
}

// RegisterQuery will register this bucket as "/accounts"
func RegisterQuery(qr custody.QueryRouter) {
	NewBucket().Register("accounts", qr)
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	bucket  Bucket
	control CoinMover
}

var _ custody.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, bucket Bucket, control CoinMover) SendHandler {
	return SendHandler{
		auth:    auth,
		bucket:  bucket,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to destination if
// all preconditions are met
func (h SendHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, authority, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(db, authority, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

// validate returns the message with the source set and the identity that
// authorizes the transfer.
func (h SendHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*SendMsg, custody.Address, error) {
	var msg SendMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if msg.Source == nil {
		msg.Source = x.MainSignerAddress(ctx, h.auth)
		if msg.Source == nil {
			return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
	}

	src, err := h.bucket.GetAccount(db, msg.Source)
	if err != nil {
		return nil, nil, errors.Wrap(err, "source account")
	}
	authority := msg.Source
	if !src.IsNative() {
		authority = src.Owner
	}
	if !h.auth.HasAddress(ctx, authority) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, authority, nil
}

// CreateAccountHandler opens associated accounts.
type CreateAccountHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ custody.Handler = CreateAccountHandler{}

// NewCreateAccountHandler creates a handler for CreateAccountMsg
func NewCreateAccountHandler(auth x.Authenticator, control Controller) CreateAccountHandler {
	return CreateAccountHandler{auth: auth, control: control}
}

// Check verifies the message and that a payer signed it.
func (h CreateAccountHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createAccountTxCost}, nil
}

// Deliver opens the account, paid by the main signer. The address of the
// new account is returned as the result data.
func (h CreateAccountHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, payer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, err := h.control.OpenAccount(db, payer, msg.Owner, msg.Ticker)
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: addr}, nil
}

func (h CreateAccountHandler) validate(ctx custody.Context, tx custody.Tx) (*CreateAccountMsg, custody.Address, error) {
	var msg CreateAccountMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	payer := x.MainSignerAddress(ctx, h.auth)
	if payer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	if msg.Owner == nil {
		msg.Owner = payer
	}
	return &msg, payer, nil
}

// CloseAccountHandler closes empty associated accounts.
type CloseAccountHandler struct {
	auth    x.Authenticator
	bucket  Bucket
	control Controller
}

var _ custody.Handler = CloseAccountHandler{}

// NewCloseAccountHandler creates a handler for CloseAccountMsg
func NewCloseAccountHandler(auth x.Authenticator, bucket Bucket, control Controller) CloseAccountHandler {
	return CloseAccountHandler{auth: auth, bucket: bucket, control: control}
}

// Check verifies that the account owner signed the message.
func (h CloseAccountHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: closeAccountTxCost}, nil
}

// Deliver closes the account and refunds the reserve.
func (h CloseAccountHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.CloseAccount(db, owner, msg.Account, msg.Destination); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h CloseAccountHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CloseAccountMsg, custody.Address, error) {
	var msg CloseAccountMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	acc, err := h.bucket.GetAccount(db, msg.Account)
	if err != nil {
		return nil, nil, errors.Wrap(err, "account")
	}
	if acc.IsNative() {
		return nil, nil, errors.Wrap(errors.ErrInvalidState, "native account cannot be closed")
	}
	if !h.auth.HasAddress(ctx, acc.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	if msg.Destination == nil {
		msg.Destination = acc.Owner
	}
	return &msg, acc.Owner, nil
}

// NewConfigHandler returns a handler for UpdateConfigurationMsg. Only the
// configuration owner set in genesis can update it.
func NewConfigHandler(auth x.Authenticator) custody.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(confPkg, &conf, auth, nil)
}
