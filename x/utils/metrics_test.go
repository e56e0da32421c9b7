package utils

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/weavetest"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/deposit"}}

	_, err := m.Deliver(context.Background(), db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(context.Background(), db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(context.Background(), db, tx, &weavetest.Handler{DeliverErr: errors.ErrInsufficientAmount})
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
	_, err = m.Check(context.Background(), db, tx, &weavetest.Handler{})
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, m.Processed("deliver", "escrow/deposit", 0)))
	assert.Equal(t, 1.0, counterValue(t, m.Processed("deliver", "escrow/deposit", errors.ErrInsufficientAmount.ABCICode())))
	assert.Equal(t, 1.0, counterValue(t, m.Processed("check", "escrow/deposit", 0)))
}

func TestMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics("dup", reg)
	assert.Panics(t, func() { NewMetrics("dup", reg) })
}

func counterValue(t testing.TB, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.GetCounter().GetValue()
}
