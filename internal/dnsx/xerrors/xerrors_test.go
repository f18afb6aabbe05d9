package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesKindAndCause(t *testing.T) {
	cause := errors.New("dial refused")
	err := Network("connect to upstream", cause)

	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "connect to upstream")
	assert.Contains(t, err.Error(), "dial refused")
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrorIs_MatchesOnKindOnly(t *testing.T) {
	a := Timeout("query 1")
	b := Timeout("query 2")
	c := Refused()

	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, c))
}

func TestIsKind(t *testing.T) {
	err := NoUpstreamAvailable("all upstreams unhealthy")
	assert.True(t, IsKind(err, KindNoUpstreamAvailable))
	assert.False(t, IsKind(err, KindNXDomain))
}

func TestInvalidConfig_NamesTheOffendingField(t *testing.T) {
	err := InvalidConfig("timeout", "must be positive")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "must be positive")
	assert.Equal(t, KindInvalidConfig, err.Kind)
}

func TestKindString_CoversEveryKind(t *testing.T) {
	kinds := []Kind{
		KindTimeout, KindNetwork, KindTLS, KindHTTP, KindProtocol, KindParse,
		KindConfig, KindInvalidConfig, KindServer, KindNXDomain, KindRefused,
		KindServerFailure, KindFormatError, KindNoUpstreamAvailable, KindNotImplemented,
	}
	for _, k := range kinds {
		assert.NotEqual(t, "unknown", k.String())
	}
	assert.Equal(t, "unknown", KindUnknown.String())
}
