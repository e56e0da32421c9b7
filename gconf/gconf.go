package gconf

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ReadStore is a subset of custody.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of custody.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler can serialize itself after checking it is consistent.
// Every protobuf message provides Marshal.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler loads its state from the binary representation. Every
// protobuf message provides it.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by every extension configuration.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

const keyPrefix = "_c:"

// Key returns the database key of the configuration singleton of the
// given extension.
func Key(pkg string) []byte {
	return []byte(keyPrefix + pkg)
}

// Save validates the configuration and writes it as the singleton of pkg,
// replacing any previous value.
func Save(db Store, pkg string, src ValidMarshaler) error {
	if pkg == "" {
		return errors.Wrap(errors.ErrEmpty, "configuration package")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s configuration", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return db.Set(Key(pkg), raw)
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if no configuration was saved for that package.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := loadRaw(db, pkg)
	if err != nil {
		return err
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s configuration", pkg)
	}
	return nil
}

func loadRaw(db ReadStore, pkg string) ([]byte, error) {
	raw, err := db.Get(Key(pkg))
	switch {
	case err != nil:
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	case raw == nil:
		return nil, errors.Wrapf(errors.ErrNotFound, "no %s configuration", pkg)
	}
	return raw, nil
}

// InitConfig loads opts["conf"][pkg] from genesis into conf and saves it.
// ErrNotFound is returned when the genesis has no configuration for pkg,
// so extensions with optional configuration can ignore it.
func InitConfig(db Store, opts custody.Options, pkg string, conf Configuration) error {
	var all custody.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if _, ok := all[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "no %s configuration in genesis", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read %s configuration", pkg)
	}
	return Save(db, pkg, conf)
}
