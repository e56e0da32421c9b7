package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is impelemented by any entity that can be stored using ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

// ModelBucket stores models of a single type under a common key prefix.
// Keys are provided by the caller.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary key. Result is loaded into given destination model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity,
	// ErrInvalidType is returned.
	One(db custody.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound otherwise.
	Has(db custody.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. The model is validated
	// before being stored.
	Put(db custody.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db custody.KVStore, key []byte) error

	// Register registers this bucket as a query handler under given
	// path.
	Register(path string, r custody.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance that stores entities of the
// same type as given model under the given bucket name.
func NewModelBucket(name string, m Model) ModelBucket {
	if !isBucketName(name) {
		panic("illegal bucket name: " + name)
	}
	return &modelBucket{
		prefix: []byte(name + ":"),
		model:  reflect.TypeOf(m),
	}
}

type modelBucket struct {
	prefix []byte
	model  reflect.Type
}

// DBKey is the full key used to store an entity in the database.
func (mb *modelBucket) DBKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

func (mb *modelBucket) Has(db custody.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	ok, err := db.Has(mb.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model)
	}
	return nil
}

func (mb *modelBucket) Put(db custody.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "cannot store %T, only %s", m, mb.model)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal")
	}
	if err := db.Set(mb.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db custody.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.DBKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

func (mb *modelBucket) Register(path string, r custody.QueryRouter) {
	r.Register("/"+path, queryHandler{bucket: mb})
}

// queryHandler returns the raw value stored under the requested key.
type queryHandler struct {
	bucket *modelBucket
}

var _ custody.QueryHandler = queryHandler{}

func (q queryHandler) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	if mod != custody.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported query modifier %q", mod)
	}
	key := q.bucket.DBKey(data)
	raw, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return []custody.Model{custody.Pair(key, raw)}, nil
}

var _ ModelBucket = (*modelBucket)(nil)
