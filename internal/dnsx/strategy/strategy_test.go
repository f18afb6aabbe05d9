package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/clock"
	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

func newTestRegistryWithNames(names ...string) *upstream.Registry {
	mc := &clock.MockClock{CurrentTime: time.Now()}
	r := upstream.NewRegistry(upstream.DefaultHealthConfig(), mc, "")
	for _, n := range names {
		_ = r.Add(upstream.Spec{Name: n, Kind: transport.UDP, Server: "127.0.0.1:53"})
	}
	return r
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "fifo", FIFO.String())
	assert.Equal(t, "smart", SMART.String())
	assert.Equal(t, "round_robin", ROUND_ROBIN.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestNew_RejectsMissingRegistry(t *testing.T) {
	_, err := New(FIFO, Options{})
	assert.Error(t, err)
}

func TestNew_RejectsUnknownKind(t *testing.T) {
	r := newTestRegistryWithNames("a")
	_, err := New(Kind(99), Options{Registry: r})
	assert.Error(t, err)
}

func TestNew_BuildsEachKind(t *testing.T) {
	r := newTestRegistryWithNames("a")
	for _, k := range []Kind{FIFO, SMART, ROUND_ROBIN} {
		eng, err := New(k, Options{Registry: r, RetryCount: 1})
		require.NoError(t, err)
		assert.Equal(t, k, eng.Kind())
	}
}
