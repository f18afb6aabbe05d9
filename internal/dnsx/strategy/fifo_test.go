package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
)

func TestFifoEngine_ReturnsFirstSuccess(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c")
	eng, err := New(FIFO, Options{Registry: r, RetryCount: 1})
	require.NoError(t, err)

	var tried []string
	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		tried = append(tried, spec.Name)
		if spec.Name == "b" {
			return wire.Response{ID: 7}, true, nil
		}
		return wire.Response{}, false, errors.New("boom")
	}

	res, err := eng.Run(context.Background(), attempt)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Spec.Name)
	assert.Equal(t, []string{"a", "b"}, tried, "fifo stops at first success")
}

func TestFifoEngine_FailsOverAcrossAllUpstreamsWithRetryCountOne(t *testing.T) {
	r := newTestRegistryWithNames("a", "b", "c")
	eng, err := New(FIFO, Options{Registry: r, RetryCount: 1})
	require.NoError(t, err)

	var tried []string
	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		tried = append(tried, spec.Name)
		if spec.Name == "c" {
			return wire.Response{ID: 7}, true, nil
		}
		return wire.Response{}, false, errors.New("boom")
	}

	res, err := eng.Run(context.Background(), attempt)
	require.NoError(t, err)
	assert.Equal(t, "c", res.Spec.Name)
	assert.Equal(t, []string{"a", "b", "c"}, tried, "retry_count=1 still walks every upstream, it only bounds per-upstream attempts")
}

func TestFifoEngine_RetriesSameUpstreamUpToRetryCountBeforeMovingOn(t *testing.T) {
	r := newTestRegistryWithNames("a", "b")
	eng, err := New(FIFO, Options{Registry: r, RetryCount: 2})
	require.NoError(t, err)

	var tried []string
	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		tried = append(tried, spec.Name)
		if spec.Name == "b" {
			return wire.Response{ID: 7}, true, nil
		}
		return wire.Response{}, false, errors.New("boom")
	}

	res, err := eng.Run(context.Background(), attempt)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Spec.Name)
	assert.Equal(t, []string{"a", "a", "b"}, tried, "retry_count bounds attempts against a single upstream, not the number of upstreams tried")
}

func TestFifoEngine_AllFailuresReturnsAttemptError(t *testing.T) {
	r := newTestRegistryWithNames("a", "b")
	eng, err := New(FIFO, Options{Registry: r, RetryCount: 5})
	require.NoError(t, err)

	attempt := func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		return wire.Response{}, false, errors.New("boom")
	}

	_, err = eng.Run(context.Background(), attempt)
	var ae *AttemptError
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Failures, 2, "one aggregated failure per upstream, not per attempt")
}
