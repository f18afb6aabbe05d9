package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
)

func specsFor(names ...string) []upstream.Spec {
	out := make([]upstream.Spec, len(names))
	for i, n := range names {
		out[i] = upstream.Spec{Name: n, Kind: transport.UDP, Server: "127.0.0.1:53"}
	}
	return out
}

func TestFastestFirst_ReturnsFirstSuccessAndCancelsLosers(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c")
	specs := specsFor("a", "b", "c")

	cancelled := make(chan string, 3)
	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		if spec.Name == "a" {
			return wire.Response{ID: 1}, true, nil
		}
		// slow losers: block until cancelled
		<-ctx.Done()
		cancelled <- spec.Name
		return wire.Response{}, false, ctx.Err()
	}

	res, err := FastestFirst(context.Background(), r, specs, attempt)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Spec.Name)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case name := <-cancelled:
			seen[name] = true
		case <-time.After(time.Second):
			t.Fatal("losers never observed cancellation")
		}
	}
	assert.True(t, seen["b"])
	assert.True(t, seen["c"])
}

func TestFastestFirst_AllFailuresReturnsAggregatedError(t *testing.T) {
	r := newTestRegistryWithNames("a", "b")
	specs := specsFor("a", "b")

	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		return wire.Response{}, false, errors.New("boom")
	}

	_, err := FastestFirst(context.Background(), r, specs, attempt)
	var ae *AttemptError
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Failures, 2)
}

func TestFastestFirst_EmptySpecsIsError(t *testing.T) {
	r := newTestRegistryWithNames("a")
	_, err := FastestFirst(context.Background(), r, nil, nil)
	assert.Error(t, err)
}
