package utils

import (
	"github.com/iov-one/custody"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag keys appended by ActionTagger.
const (
	// ActionKey tags every delivered transaction with its message path.
	ActionKey = "action"
	// EscrowKey tags transactions acting on an existing escrow with its
	// address, so the history of a single escrow can be searched.
	EscrowKey = "escrow"
)

// escrowRef is implemented by messages that act on an existing escrow.
type escrowRef interface {
	GetEscrowID() custody.Address
}

// ActionTagger tags successful deliveries so clients can subscribe to,
// for example, all escrow releases or every step of one escrow.
type ActionTagger struct{}

var _ custody.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends the tags when the delivery succeeds.
func (ActionTagger) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())})
	if ref, ok := msg.(escrowRef); ok && len(ref.GetEscrowID()) != 0 {
		res.Tags = append(res.Tags, common.KVPair{
			Key:   []byte(EscrowKey),
			Value: []byte(ref.GetEscrowID().String()),
		})
	}
	return res, nil
}
