package utils

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions and observes
// their duration, labeled by the message path and the ABCI result code.
type Metrics struct {
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ custody.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors with
// given registerer. Passing nil uses the default prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "processed_total",
			Help:      "Total number of transactions processed, by phase, message path and result code.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "duration_seconds",
			Help:      "Time spent processing a single transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase", "path"}),
	}
	reg.MustRegister(m.processed, m.duration)
	return m
}

// Check observes the check call.
func (m *Metrics) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe("check", tx, start, err)
	return res, err
}

// Deliver observes the deliver call.
func (m *Metrics) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

// Processed returns the counter of transactions for given labels.
func (m *Metrics) Processed(phase, path string, code uint32) prometheus.Counter {
	return m.processed.WithLabelValues(phase, path, codeLabel(code))
}

func (m *Metrics) observe(phase string, tx custody.Tx, start time.Time, err error) {
	path := custody.GetPath(tx)
	var code uint32
	if err != nil {
		code, _ = errors.ABCIInfo(err, false)
	}
	m.processed.WithLabelValues(phase, path, codeLabel(code)).Inc()
	m.duration.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
}

func codeLabel(code uint32) string {
	if code == 0 {
		return "ok"
	}
	return errors.CodeName(code)
}
