package weavetest

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custody.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ custody.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (custody.Msg, error) {
	return tx.Msg, tx.Err
}

// Unmarshal loads raw into the message, which must be set.
func (tx *Tx) Unmarshal(raw []byte) error {
	if tx.Msg == nil {
		return errors.Wrap(errors.ErrEmpty, "tx message")
	}
	return tx.Msg.Unmarshal(raw)
}

// Marshal returns the serialized message.
func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "tx message")
	}
	return tx.Msg.Marshal()
}

// Msg is a request processed within a single transaction.
type Msg struct {
	// RoutePath is returned by the path method, consumed by the router.
	RoutePath string
	// Serialized represents the serialized form of this message.
	Serialized []byte
	// Err if set is returned by any method call.
	Err error
}

var _ custody.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}
