package custody

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopQuery struct{}

func (nopQuery) Query(ReadOnlyKVStore, string, []byte) ([]Model, error) {
	return nil, nil
}

func TestQueryRouter(t *testing.T) {
	r := NewQueryRouter()
	r.RegisterAll(
		func(r QueryRouter) { r.Register("/escrows", nopQuery{}) },
		func(r QueryRouter) { r.Register("/accounts", nopQuery{}) },
	)

	assert.NotNil(t, r.Handler("/escrows"))
	assert.Nil(t, r.Handler("/vaults"))
	assert.Equal(t, []string{"/accounts", "/escrows"}, r.Paths())

	assert.Panics(t, func() { r.Register("/escrows", nopQuery{}) })
	assert.Panics(t, func() { r.Register("escrows", nopQuery{}) })
}
