package custody

// ReadOnlyKVStore reads raw state. Get returns nil for a missing key.
// Both methods panic on a nil key.
type ReadOnlyKVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// SetDeleter writes raw state. Both methods panic on a nil key.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the state every handler works on. Ledger accounts, escrow
// records and configuration all live in one KVStore under distinct
// prefixes.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
}

// CacheableKVStore can open a scratch layer on top of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes until Write flushes them to the parent
// store. Discard drops them. Instructions run inside a cache wrap so a
// failure leaves no partial transfer behind.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent, versioned state of the chain.
type CommitKVStore interface {
	// Get reads from the last committed version.
	Get(key []byte) ([]byte, error)

	// CacheWrap opens a writable layer over the last committed version.
	CacheWrap() KVCacheWrap

	// Commit persists the next version.
	Commit() (CommitID, error)

	// LoadLatestVersion loads the newest complete version from disk.
	LoadLatestVersion() error

	// LatestVersion describes the newest version on disk.
	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by number and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
