package account

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used as the "op" label.
const (
	OpRegister     = "register"
	OpAuthenticate = "authenticate"
	OpUpdate       = "update"
)

// Metrics records per-operation outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	switches prometheus.Counter
}

// NewMetrics registers accountd's collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accountd",
			Subsystem: "account",
			Name:      "operations_total",
			Help:      "Account operations by outcome.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accountd",
			Subsystem: "account",
			Name:      "operation_duration_seconds",
			Help:      "Account operation latency, including password hashing.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),
		switches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "accountd",
			Name:      "session_switches_total",
			Help:      "Successful authentications that replaced the global session.",
		}),
	}

	for _, c := range []prometheus.Collector{m.ops, m.duration, m.switches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, resultLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) sessionSwitched() {
	if m == nil {
		return
	}
	m.switches.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isClientError(err):
		return "rejected"
	default:
		return "error"
	}
}
