package transport

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

type dotTransport struct {
	dialAddr           string // host:port actually dialed (resolved_ip when set)
	serverName         string // TLS SNI / cert verification hostname, never dialAddr's IP
	insecureSkipVerify bool
	timeout            time.Duration
	dial               DialFunc
}

// NewDoT returns a Transport that performs a TCP connect to dialAddr,
// then a TLS handshake with SNI/certificate verification against
// serverName. dialAddr and serverName differ whenever the upstream spec
// carries a resolved_ip override: the connect address changes but the SNI
// never does (§3 invariant).
func NewDoT(dialAddr, serverName string, insecureSkipVerify bool, timeout time.Duration, dial DialFunc) Transport {
	if dial == nil {
		dial = defaultDial
	}
	return &dotTransport{
		dialAddr:           dialAddr,
		serverName:         serverName,
		insecureSkipVerify: insecureSkipVerify,
		timeout:            timeout,
		dial:               dial,
	}
}

func (t *dotTransport) Kind() Kind { return DoT }

func (t *dotTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	rawConn, err := t.dial(ctx, "tcp", t.dialAddr)
	if err != nil {
		return nil, xerrors.Network("dial dot upstream", err)
	}
	defer rawConn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = rawConn.SetDeadline(deadline)
	}

	tlsConn := tls.Client(rawConn, &tls.Config{
		ServerName:         t.serverName,
		InsecureSkipVerify: t.insecureSkipVerify,
	})

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			done <- result{err: xerrors.TLS("tls handshake", err)}
			return
		}
		data, err := sendFramed(tlsConn, request)
		done <- result{data: data, err: err}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, xerrors.Timeout("dot exchange deadline exceeded")
	}
}
