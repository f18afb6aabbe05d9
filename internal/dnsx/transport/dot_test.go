package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDoT_DialsResolvedIPButKeepsHostAsServerName(t *testing.T) {
	var dialedAddr string
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		dialedAddr = address
		return nil, context.DeadlineExceeded // fail fast; we only need the dial args
	}

	tr := NewDoT("10.0.0.1:853", "dns.example", false, time.Second, dial)
	dt, ok := tr.(*dotTransport)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1:853", dt.dialAddr)
	assert.Equal(t, "dns.example", dt.serverName)

	_, _ = tr.Send(context.Background(), []byte("query"))
	assert.Equal(t, "10.0.0.1:853", dialedAddr)
}

func TestNewDoT_DialFailureIsNetworkError(t *testing.T) {
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, context.DeadlineExceeded
	}
	tr := NewDoT("dns.example:853", "dns.example", false, time.Second, dial)
	_, err := tr.Send(context.Background(), []byte("x"))
	assert.Error(t, err)
}
