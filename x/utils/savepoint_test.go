package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
)

func TestSavepoint(t *testing.T) {
	// always written before calling functions
	ok, ov := []byte("demo"), []byte("data")
	// key, value the handler tries to write
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		save    custody.Decorator
		handler custody.Handler
		check   bool
		wantErr bool
		written [][]byte
		missing [][]byte
	}{
		"savepoint not active, error, both written": {
			save:    NewSavepoint(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrInvalidState},
			check:   true,
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"check savepoint, error, rolled back": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrInvalidState},
			check:   true,
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver savepoint, error, rolled back": {
			save:    NewSavepoint().OnDeliver(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrInvalidState},
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"double activation maintains both behaviors": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrInvalidState},
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"check savepoint does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrInvalidState},
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"success is written": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv},
			written: [][]byte{ok, nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			require.NoError(t, kv.Set(ok, ov))

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, kv, nil, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, kv, nil, tc.handler)
			}
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			for _, k := range tc.written {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.True(t, has, "%x", k)
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.False(t, has, "%x", k)
			}
		})
	}
}
