package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

const maxMemoSize int = 128

var _ custody.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var err error
	err = errors.Append(err, errors.Wrap(m.Metadata.Validate(), "metadata"))
	if m.Amount == nil || !m.Amount.IsPositive() {
		err = errors.Append(err, errors.Wrapf(errors.ErrInvalidAmount, "non-positive SendMsg: %v", m.Amount))
	} else {
		err = errors.Append(err, errors.Wrap(m.Amount.Validate(), "amount"))
	}
	if len(m.Source) != 0 {
		err = errors.Append(err, errors.Wrap(m.Source.Validate(), "source"))
	}
	err = errors.Append(err, errors.Wrap(m.Destination.Validate(), "destination"))
	if len(m.Memo) > maxMemoSize {
		err = errors.Append(err, errors.Wrap(errors.ErrInvalidState, "memo too long"))
	}
	return err
}

var _ custody.Msg = (*CreateAccountMsg)(nil)

// Path returns the routing path for this message
func (CreateAccountMsg) Path() string {
	return "cash/create_account"
}

// Validate makes sure that this is sensible
func (m *CreateAccountMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(m.Owner) != 0 {
		if err := m.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if !coin.IsCC(m.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker: %q", m.Ticker)
	}
	return nil
}

var _ custody.Msg = (*CloseAccountMsg)(nil)

// Path returns the routing path for this message
func (CloseAccountMsg) Path() string {
	return "cash/close_account"
}

// Validate makes sure that this is sensible
func (m *CloseAccountMsg) Validate() error {
	var err error
	err = errors.Append(err, errors.Wrap(m.Metadata.Validate(), "metadata"))
	err = errors.Append(err, errors.Wrap(m.Account.Validate(), "account"))
	if len(m.Destination) != 0 {
		err = errors.Append(err, errors.Wrap(m.Destination.Validate(), "destination"))
	}
	return err
}

var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

// Validate will skip any zero fields and validate the set ones
func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	c := m.Patch
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	var err error
	if len(c.Owner) != 0 {
		err = errors.Wrap(c.Owner.Validate(), "owner")
	}
	if c.NativeTicker != "" && !coin.IsCC(c.NativeTicker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "native ticker %q", c.NativeTicker))
	}
	return err
}

// Path returns the routing path for this message
func (*UpdateConfigurationMsg) Path() string {
	return "cash/update_configuration"
}
