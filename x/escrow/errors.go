package escrow

import "github.com/iov-one/custody/errors"

var (
	// ErrAlreadyBound is returned when the receiver of an escrow is set
	// for the second time.
	ErrAlreadyBound = errors.Register(130, "receiver already bound")

	// ErrReceiverUnset is returned when releasing an escrow that has no
	// receiver.
	ErrReceiverUnset = errors.Register(131, "receiver not set")
)
