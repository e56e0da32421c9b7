package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

const (
	pathMakeMsg                = "escrow/make"
	pathDepositMsg             = "escrow/deposit"
	pathSetReceiverMsg         = "escrow/set_receiver"
	pathReleaseMsg             = "escrow/release"
	pathRefundMsg              = "escrow/refund"
	pathUpdateConfigurationMsg = "escrow/update_configuration"
)

var _ custody.Msg = (*MakeMsg)(nil)
var _ custody.Msg = (*DepositMsg)(nil)
var _ custody.Msg = (*SetReceiverMsg)(nil)
var _ custody.Msg = (*ReleaseMsg)(nil)
var _ custody.Msg = (*RefundMsg)(nil)
var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

//--------- Path routing --------

// Path fulfills custody.Msg interface to allow routing
func (MakeMsg) Path() string {
	return pathMakeMsg
}

// Path fulfills custody.Msg interface to allow routing
func (DepositMsg) Path() string {
	return pathDepositMsg
}

// Path fulfills custody.Msg interface to allow routing
func (SetReceiverMsg) Path() string {
	return pathSetReceiverMsg
}

// Path fulfills custody.Msg interface to allow routing
func (ReleaseMsg) Path() string {
	return pathReleaseMsg
}

// Path fulfills custody.Msg interface to allow routing
func (RefundMsg) Path() string {
	return pathRefundMsg
}

// Path fulfills custody.Msg interface to allow routing
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

//--------- Validation --------

// Validate makes sure that this is sensible
func (m *MakeMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if !coin.IsCC(m.Mint) {
		return errors.Wrapf(errors.ErrCurrency, "mint %q", m.Mint)
	}
	return validateAddresses(m.Maker)
}

// Validate makes sure that this is sensible
func (m *DepositMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.EscrowID.Validate(); err != nil {
		return errors.Wrap(err, "escrow id")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

// Validate makes sure that this is sensible
func (m *SetReceiverMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.EscrowID.Validate(); err != nil {
		return errors.Wrap(err, "escrow id")
	}
	if m.Receiver == nil {
		return errors.Wrap(errors.ErrEmpty, "receiver")
	}
	return errors.Wrap(m.Receiver.Validate(), "receiver")
}

// Validate makes sure that this is sensible
func (m *ReleaseMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(m.EscrowID.Validate(), "escrow id")
}

// Validate makes sure that this is sensible
func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(m.EscrowID.Validate(), "escrow id")
}

// Validate will skip any zero fields and validate the set ones
func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	c := m.Patch
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if c.DepositPolicy != 0 {
		return validatePolicy(c.DepositPolicy)
	}
	return nil
}

// validateAddresses returns an error if any address doesn't validate
// nil is considered valid here
func validateAddresses(addrs ...custody.Address) error {
	for _, a := range addrs {
		if a != nil {
			if err := a.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
