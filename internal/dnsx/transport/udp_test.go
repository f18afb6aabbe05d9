package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPTransport_SendReceive(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	go func() {
		buf := make([]byte, 512)
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		_, _ = conn.WriteTo(append([]byte("reply:"), buf[:n]...), addr)
	}()

	tr := NewUDP(conn.LocalAddr().String(), time.Second, nil)
	resp, err := tr.Send(context.Background(), []byte("ping"))
	require.NoError(t, err)
	require.Equal(t, "reply:ping", string(resp))
}

func TestUDPTransport_DialFailureIsNetworkError(t *testing.T) {
	tr := NewUDP("127.0.0.1:1", time.Second, func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, context.DeadlineExceeded
	})
	_, err := tr.Send(context.Background(), []byte("x"))
	require.Error(t, err)
}

func TestUDPTransport_Kind(t *testing.T) {
	tr := NewUDP("127.0.0.1:53", time.Second, nil)
	require.Equal(t, UDP, tr.Kind())
}
