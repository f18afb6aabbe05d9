package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
)

func TestRoundRobinEngine_TriesThreeConsecutiveStartingAtNext(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c", "d", "e")
	var slept []time.Duration
	eng, err := New(ROUND_ROBIN, Options{
		Registry: r,
		Sleep:    func(d time.Duration) { slept = append(slept, d) },
	})
	require.NoError(t, err)

	var tried []string
	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		tried = append(tried, spec.Name)
		return wire.Response{}, false, errors.New("boom")
	}

	_, err = eng.Run(context.Background(), attempt)
	require.Error(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tried)
	assert.Len(t, slept, 2, "sleeps between attempts, not after the last one")
	assert.Equal(t, roundRobinInterAttempt, slept[0])
}

func TestRoundRobinEngine_AdvancesIndexAcrossCalls(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c")
	eng, err := New(ROUND_ROBIN, Options{Registry: r, Sleep: func(time.Duration) {}})
	require.NoError(t, err)

	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		return wire.Response{}, false, errors.New("boom")
	}
	_, _ = eng.Run(context.Background(), attempt)

	var secondRoundTried []string
	attempt2 := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		secondRoundTried = append(secondRoundTried, spec.Name)
		return wire.Response{}, false, errors.New("boom")
	}
	_, _ = eng.Run(context.Background(), attempt2)

	assert.Equal(t, []string{"a", "b", "c"}, secondRoundTried, "3 upstreams wraps exactly once, so round two starts at a again")
}

func TestRoundRobinEngine_ReturnsOnFirstSuccess(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c")
	eng, err := New(ROUND_ROBIN, Options{Registry: r, Sleep: func(time.Duration) {}})
	require.NoError(t, err)

	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		if spec.Name == "a" {
			return wire.Response{ID: 1}, true, nil
		}
		return wire.Response{}, false, errors.New("boom")
	}

	res, err := eng.Run(context.Background(), attempt)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Spec.Name)
}
