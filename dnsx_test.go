package dnsx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haukened/dnsx/internal/dnsx/wire"
)

// fakeUpstream runs a loopback UDP listener that decodes a query and
// replies with a single fixed A record, mirroring §8 scenario 1.
func fakeUpstream(t *testing.T) net.Addr {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	codec := wire.NewCodec()
	go func() {
		buf := make([]byte, 512)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			q, err := codec.DecodeQuery(buf[:n])
			if err != nil {
				continue
			}
			resp := wire.Response{
				ID: q.ID, QR: true, RCode: wire.RCodeNoError,
				Answers: []wire.Record{{
					Name: q.Name, Type: wire.TypeA, Class: wire.ClassIN, TTL: 300,
					Data: wire.AData{Addr: [4]byte{93, 184, 216, 34}},
				}},
			}
			out, err := codec.EncodeResponse(resp)
			if err != nil {
				continue
			}
			_, _ = conn.WriteTo(out, addr)
		}
	}()
	return conn.LocalAddr()
}

func TestEndToEnd_UDPHappyPathWithCacheHit(t *testing.T) {
	addr := fakeUpstream(t)

	r, err := Build(Options{
		Strategy:          FIFO,
		DefaultTimeout:    2 * time.Second,
		RetryCount:        1,
		EnableCache:       true,
		MaxCacheTTL:       time.Hour,
		Port:              53,
		ConcurrentQueries: 10,
		BufferSize:        4096,
		Upstreams: []Upstream{
			{Name: "u1", Protocol: "udp", Address: addr.String(), Weight: 1},
		},
	})
	require.NoError(t, err)
	defer r.Close()

	resp := r.Query(context.Background(), Request{Domain: "example.com.", RecordType: TypeA})
	require.True(t, resp.Success)
	require.Equal(t, "u1", resp.ServerUsed)
	require.Len(t, resp.Records, 1)
	require.EqualValues(t, 300, resp.Records[0].TTL)

	resp2 := r.Query(context.Background(), Request{Domain: "example.com.", RecordType: TypeA})
	require.True(t, resp2.Success)
	require.LessOrEqual(t, resp2.Records[0].TTL, resp.Records[0].TTL)
}
