package orm

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest/assert"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()

	b := NewModelBucket("metas", &custody.Metadata{})

	if err := b.Put(db, []byte("c"), &custody.Metadata{Schema: 7}); err != nil {
		t.Fatalf("cannot save metadata: %s", err)
	}
	var m custody.Metadata
	if err := b.One(db, []byte("c"), &m); err != nil {
		t.Fatalf("cannot get metadata: %s", err)
	}
	assert.Equal(t, uint32(7), m.Schema)
	assert.Nil(t, b.Has(db, []byte("c")))

	if err := b.Delete(db, []byte("c")); err != nil {
		t.Fatalf("cannot delete metadata: %s", err)
	}
	if err := b.Delete(db, []byte("c")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c"), &m); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := b.Has(db, []byte("c")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestModelBucketPutInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("metas", &custody.Metadata{})

	err := b.Put(db, []byte("a"), &custody.Metadata{})
	assert.IsErr(t, errors.ErrInvalidInput, err)

	err = b.Put(db, nil, &custody.Metadata{Schema: 1})
	assert.IsErr(t, errors.ErrEmpty, err)

	ok, err := db.Has([]byte("metas:a"))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestModelBucketPrefixes(t *testing.T) {
	db := store.MemStore()
	a := NewModelBucket("first", &custody.Metadata{})
	b := NewModelBucket("second", &custody.Metadata{})

	assert.Nil(t, a.Put(db, []byte("key"), &custody.Metadata{Schema: 1}))
	assert.Nil(t, b.Put(db, []byte("key"), &custody.Metadata{Schema: 2}))

	var m custody.Metadata
	assert.Nil(t, a.One(db, []byte("key"), &m))
	assert.Equal(t, uint32(1), m.Schema)
	assert.Nil(t, b.One(db, []byte("key"), &m))
	assert.Equal(t, uint32(2), m.Schema)
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("metas", &custody.Metadata{})
	assert.Nil(t, b.Put(db, []byte("key"), &custody.Metadata{Schema: 3}))

	qr := custody.NewQueryRouter()
	b.Register("metas", qr)
	h := qr.Handler("/metas")
	if h == nil {
		t.Fatal("query handler not registered")
	}

	res, err := h.Query(db, "", []byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, []byte("metas:key"), res[0].Key)

	var m custody.Metadata
	assert.Nil(t, m.Unmarshal(res[0].Value))
	assert.Equal(t, uint32(3), m.Schema)

	res, err = h.Query(db, "", []byte("missing"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	_, err = h.Query(db, "prefix", []byte("key"))
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestModelBucketNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewModelBucket("Invalid-Name", &custody.Metadata{})
	})
}
