package custody

import "github.com/iov-one/custody/errors"

// Validate returns an error if this metadata does not declare a schema
// version.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrInvalidInput, "missing metadata")
	}
	if m.Schema == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "schema version must be set")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when implementing
// orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
