package escrow

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/cash"
)

const (
	// BucketName is where escrow records are stored.
	BucketName = "escrow"

	// ProgramName owns every escrow record address.
	ProgramName = "escrow"

	// recordSpace is the storage allocated for a single escrow record.
	recordSpace = 96
)

var recordSeed = []byte("escrow")

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is valid
func (e *Escrow) Validate() error {
	if err := e.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if e.Receiver != nil {
		if err := e.Receiver.Validate(); err != nil {
			return errors.Wrap(err, "receiver")
		}
	}
	if !coin.IsCC(e.Mint) {
		return errors.Wrapf(errors.ErrCurrency, "mint %q", e.Mint)
	}
	if e.Amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if e.Bump > 255 {
		return errors.Wrapf(errors.ErrInvalidModel, "bump %d out of range", e.Bump)
	}
	if e.Reserve != nil {
		if err := e.Reserve.Validate(); err != nil {
			return errors.Wrap(err, "reserve")
		}
	}
	return nil
}

// Address derives the address of this escrow from the stored maker, seed
// and bump.
func (e *Escrow) Address() (custody.Address, error) {
	if e.Bump > 255 {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "bump %d out of range", e.Bump)
	}
	return custody.CreateProgramAddress(ProgramName, uint8(e.Bump), recordSeed, e.Maker, seedBytes(e.Seed))
}

// IsBound returns true once the receiver was set.
func (e *Escrow) IsBound() bool {
	return len(e.Receiver) != 0
}

// RecordAddress returns the address of the escrow of the maker for the given
// seed together with the bump used to derive it.
func RecordAddress(maker custody.Address, seed uint64) (custody.Address, uint8, error) {
	if err := maker.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "maker")
	}
	return custody.FindProgramAddress(ProgramName, recordSeed, maker, seedBytes(seed))
}

// VaultAddress returns the address of the account holding the escrowed
// funds. It is the associated account of the escrow for its mint.
func VaultAddress(escrowID custody.Address, mint string) (custody.Address, error) {
	addr, _, err := cash.AssociatedAddress(escrowID, mint)
	return addr, err
}

func seedBytes(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}

// Bucket stores escrow records keyed by their derived address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Escrow{}),
	}
}

// GetEscrow loads the escrow stored under id and verifies that id is the
// address derived from the escrow content.
func (b Bucket) GetEscrow(db custody.ReadOnlyKVStore, id custody.Address) (*Escrow, error) {
	var e Escrow
	if err := b.One(db, id, &e); err != nil {
		return nil, errors.Wrap(err, "cannot load escrow from the store")
	}
	addr, err := e.Address()
	if err != nil {
		return nil, errors.Wrap(err, "derive escrow address")
	}
	if !addr.Equals(id) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "escrow address does not match its derivation")
	}
	return &e, nil
}
