package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/clock"
	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

func newTestRegistry() *upstream.Registry {
	mc := &clock.MockClock{CurrentTime: time.Now()}
	return upstream.NewRegistry(upstream.DefaultHealthConfig(), mc, "")
}

func TestRegister_AttachesToCustomRegisterer(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	registry := newTestRegistry()
	require.NoError(t, registry.Add(upstream.Spec{Name: "u1", Kind: transport.UDP, Server: "1.1.1.1:53"}))

	c, err := Register(reg, registry)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 7, testutil.CollectAndCount(c))
}

func TestRegister_RejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	registry := newTestRegistry()

	_, err := Register(reg, registry)
	require.NoError(t, err)

	_, err = Register(reg, registry)
	assert.Error(t, err)
}

func TestCollect_OneMetricSetPerUpstream(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	registry := newTestRegistry()
	require.NoError(t, registry.Add(upstream.Spec{Name: "u1", Kind: transport.UDP, Server: "1.1.1.1:53"}))
	require.NoError(t, registry.Add(upstream.Spec{Name: "u2", Kind: transport.TCP, Server: "8.8.8.8:53"}))

	c, err := Register(reg, registry)
	require.NoError(t, err)

	registry.RecordSuccess("u1", 20*time.Millisecond, true)
	registry.RecordFailure("u2")

	// 7 gauges/counters per upstream, 2 upstreams registered.
	assert.Equal(t, 14, testutil.CollectAndCount(c))
}
