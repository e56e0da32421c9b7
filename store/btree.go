package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheWrap buffers writes in an in-memory btree on top of another
// store. Reads see the buffered writes first and fall back to the store
// below. Write replays the buffer into the parent in key order.
type BTreeCacheWrap struct {
	bt     *btree.BTree
	free   *btree.FreeList
	back   custody.ReadOnlyKVStore
	parent custody.SetDeleter
}

var _ custody.KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap reads through to back and flushes into parent. A nil
// free list allocates a fresh one; nested wraps share their parent's.
func NewBTreeCacheWrap(back custody.ReadOnlyKVStore, parent custody.SetDeleter, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:     btree.NewWithFreeList(2, free),
		free:   free,
		back:   back,
		parent: parent,
	}
}

// MemStore returns an empty in-memory store without persistence. Its own
// Write fails because nothing is below it, but cache wraps opened on it
// flush normally.
func MemStore() custody.CacheableKVStore {
	return NewBTreeCacheWrap(nothing{}, nil, nil)
}

// CacheWrap opens a nested buffer that flushes into this one.
func (b BTreeCacheWrap) CacheWrap() custody.KVCacheWrap {
	return NewBTreeCacheWrap(b, b, b.free)
}

// Write flushes every buffered change into the parent and empties the
// buffer. The first failing change stops the flush.
func (b BTreeCacheWrap) Write() error {
	if b.parent == nil {
		return errors.Wrap(errors.ErrHuman, "cache has no parent store")
	}
	var err error
	b.bt.Ascend(func(i btree.Item) bool {
		e := i.(entry)
		if e.deleted {
			err = b.parent.Delete(e.key)
		} else {
			err = b.parent.Set(e.key, e.value)
		}
		return err == nil
	})
	b.Discard()
	return err
}

// Discard drops every buffered change.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

// Set buffers a write. Panics on a nil key.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	mustKey(key)
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

// Delete buffers a removal. Panics on a nil key.
func (b BTreeCacheWrap) Delete(key []byte) error {
	mustKey(key)
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return nil
}

// Get returns the buffered value of key or the value below.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.lookup(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.back.Get(key)
}

// Has reports whether key is present after the buffered changes.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.lookup(key); ok {
		return !e.deleted, nil
	}
	return b.back.Has(key)
}

func (b BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	item := b.bt.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

func mustKey(key []byte) {
	if key == nil {
		panic("nil key")
	}
}

// entry is one buffered change. A deleted entry shadows the value below.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

// nothing is the empty bottom of an in-memory stack.
type nothing struct{}

func (nothing) Get([]byte) ([]byte, error) { return nil, nil }
func (nothing) Has([]byte) (bool, error)   { return false, nil }
