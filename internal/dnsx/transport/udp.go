package transport

import (
	"context"
	"net"
	"runtime"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// udpBufferSize is large enough to hold an EDNS-advertised UDP payload
// (up to 4096 is common in practice); responses are truncated by the
// remote server, never by this buffer, for any sane advertised size.
const udpBufferSize = 65535

// windowsUDPBindSequence is the local bind addresses udpDial walks in
// order on Windows, where some VPN/firewall stacks reject a wildcard
// bind on the adapter they've claimed.
var windowsUDPBindSequence = []string{"0.0.0.0:0", "127.0.0.1:0", "[::1]:0"}

type udpTransport struct {
	addr    string
	timeout time.Duration
	dial    DialFunc
}

// NewUDP returns a Transport that sends one datagram per message to addr
// (host:port) and reads a single reply, both bounded by one timeout that
// covers the full send+recv exchange.
func NewUDP(addr string, timeout time.Duration, dial DialFunc) Transport {
	if dial == nil {
		dial = udpDial
	}
	return &udpTransport{addr: addr, timeout: timeout, dial: dial}
}

// udpDial is UDP's default DialFunc. On Unix it binds 0.0.0.0:0 like any
// other dial. On Windows it walks windowsUDPBindSequence, since a
// wildcard bind there can fail under VPN/firewall software that's
// claimed the adapter, and falls through to the next candidate local
// address instead of failing outright.
func udpDial(ctx context.Context, network, address string) (net.Conn, error) {
	if runtime.GOOS != "windows" {
		return defaultDial(ctx, network, address)
	}

	var lastErr error
	for _, local := range windowsUDPBindSequence {
		localAddr, err := net.ResolveUDPAddr(network, local)
		if err != nil {
			lastErr = err
			continue
		}
		d := net.Dialer{LocalAddr: localAddr}
		conn, err := d.DialContext(ctx, network, address)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (t *udpTransport) Kind() Kind { return UDP }

func (t *udpTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dial(ctx, "udp", t.addr)
	if err != nil {
		return nil, xerrors.Network("dial udp upstream", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		if _, err := conn.Write(request); err != nil {
			done <- result{err: xerrors.Network("write udp request", err)}
			return
		}
		buf := make([]byte, udpBufferSize)
		n, err := conn.Read(buf)
		if err != nil {
			done <- result{err: classifyReadErr(err)}
			return
		}
		done <- result{data: buf[:n]}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, xerrors.Timeout("udp exchange deadline exceeded")
	}
}
