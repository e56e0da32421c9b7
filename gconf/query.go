package gconf

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// RegisterQuery exposes the configuration singletons under "/config". The
// query data is the extension name, for example "escrow".
func RegisterQuery(qr custody.QueryRouter) {
	qr.Register("/config", queryHandler{})
}

type queryHandler struct{}

var _ custody.QueryHandler = queryHandler{}

// Query returns the raw protobuf encoded configuration of the requested
// extension, or no result when it has none.
func (queryHandler) Query(db custody.ReadOnlyKVStore, mod string, data []byte) ([]custody.Model, error) {
	if mod != custody.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported query modifier %q", mod)
	}
	pkg := string(data)
	raw, err := loadRaw(db, pkg)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return []custody.Model{custody.Pair(data, raw)}, nil
}
