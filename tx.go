package custody

import (
	"reflect"

	"github.com/iov-one/custody/errors"
)

// Msg is one instruction, for example escrow/make or cash/send. It only
// describes the request; authorization comes from the enclosing Tx and
// state checks happen in the Handler.
type Msg interface {
	Persistent

	// Path routes the message to its Handler. It matches
	// [0-9A-Za-z_\-/]+ and is usually "<extension>/<action>".
	Path() string

	// Validate checks the message on its own, without reading state.
	Validate() error
}

// Marshaller serializes a value, possibly validating it first.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent values round trip through their binary encoding. Unmarshal
// usually needs a pointer receiver, which is why Marshaller stands alone.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx is what a client submits: one Msg plus whatever the decorators of
// the application stack read, such as signatures.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// GetPath returns the message path or "(missing)".
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder parses raw transaction bytes.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg copies the message of tx into destination and validates it.
// destination must be a non-nil pointer of the message's own type.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrInvalidState, "nil message")
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrapf(errors.ErrInvalidType, "invalid destination %T", destination)
	}
	src := reflect.ValueOf(msg)
	if src.Type() != dest.Type() {
		return errors.Wrapf(errors.ErrInvalidType, "want %T message, got %T", destination, msg)
	}
	dest.Elem().Set(src.Elem())

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// ExtractMsgFromSum returns the message held by a protobuf oneof wrapper,
// so a generated Tx can implement GetMsg as
//
//   return custody.ExtractMsgFromSum(tx.GetSum())
//
// sum must be a pointer to a struct with a single message pointer field.
func ExtractMsgFromSum(sum interface{}) (Msg, error) {
	if sum == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "message container is <nil>")
	}
	pval := reflect.ValueOf(sum)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid message container value: %T", sum)
	}
	val := pval.Elem()
	if val.NumField() != 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unexpected message container field count: %d", val.NumField())
	}
	field := val.Field(0)
	if field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInvalidType, "message is %s", field.Kind())
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrInvalidState, "message is <nil>")
	}
	res, ok := field.Interface().(Msg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "invalid message: %T", field.Interface())
	}
	return res, nil
}
