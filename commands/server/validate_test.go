package server

import (
	"path/filepath"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/weavetest/assert"
)

type tickerInit struct{}

func (tickerInit) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var conf struct {
		Ticker string `json:"ticker"`
	}
	if err := opts.ReadOptions("gconf", &conf); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if conf.Ticker == "" {
		return errors.Wrap(errors.ErrEmpty, "ticker")
	}
	return kv.Set([]byte("ticker"), []byte(conf.Ticker))
}

func TestValidateGenesis(t *testing.T) {
	cases := map[string]struct {
		args    []string
		wantErr *errors.Error
	}{
		"no files": {
			wantErr: errors.ErrInvalidInput,
		},
		"valid app state": {
			args: []string{filepath.Join("testdata", "app_genesis.json")},
		},
		"missing app state": {
			args:    []string{filepath.Join("testdata", "empty_genesis.json")},
			wantErr: errors.ErrEmpty,
		},
		"initializer rejects app state": {
			args:    []string{filepath.Join("testdata", "bad_app_genesis.json")},
			wantErr: errors.ErrEmpty,
		},
		"first failure wins": {
			args: []string{
				filepath.Join("testdata", "app_genesis.json"),
				filepath.Join("testdata", "no_such_file.json"),
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateCmd(tickerInit{}, tc.args)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
