package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// A query response carries keys and values as two ResultSets of equal
// length, so clients can decode the values without touching the keys.

// ResultsFromKeys collects the keys of models in order.
func ResultsFromKeys(models []custody.Model) *ResultSet {
	return collect(models, func(m custody.Model) []byte { return m.Key })
}

// ResultsFromValues collects the values of models in order.
func ResultsFromValues(models []custody.Model) *ResultSet {
	return collect(models, func(m custody.Model) []byte { return m.Value })
}

func collect(models []custody.Model, field func(custody.Model) []byte) *ResultSet {
	out := &ResultSet{Results: make([][]byte, 0, len(models))}
	for _, m := range models {
		out.Results = append(out.Results, field(m))
	}
	return out
}

// JoinResults pairs the keys and values of a query response back into
// models.
func JoinResults(keys, values *ResultSet) ([]custody.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrInvalidState,
			"%d keys for %d values", len(keys.Results), len(values.Results))
	}
	models := make([]custody.Model, 0, len(keys.Results))
	for i, k := range keys.Results {
		models = append(models, custody.Pair(k, values.Results[i]))
	}
	return models, nil
}

// UnmarshalOneResult decodes the first value of an encoded ResultSet into
// dest, for example an escrow record returned by /escrows. An empty set
// is ErrNotFound.
func UnmarshalOneResult(raw []byte, dest custody.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if len(set.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result")
	}
	return dest.Unmarshal(set.Results[0])
}
