package account

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "alice", "pw1"))
	require.Error(t, f.svc.Register(ctx, "alice", "pw1"))
	require.Error(t, f.svc.Authenticate(ctx, "alice", "wrong"))
	require.NoError(t, f.svc.Authenticate(ctx, "alice", "pw1"))
	require.NoError(t, f.svc.Authenticate(ctx, "alice", "pw1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ops.WithLabelValues(OpRegister, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ops.WithLabelValues(OpRegister, "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ops.WithLabelValues(OpAuthenticate, "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ops.WithLabelValues(OpAuthenticate, "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.switches))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(OpUpdate, time.Now(), nil)
		m.sessionSwitched()
	})
}
