package transport

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

type tcpTransport struct {
	addr    string
	timeout time.Duration
	dial    DialFunc
}

// NewTCP returns a Transport that frames each message with a two-byte
// big-endian length prefix, per RFC 1035 §4.2.2, dialing once per query.
func NewTCP(addr string, timeout time.Duration, dial DialFunc) Transport {
	if dial == nil {
		dial = defaultDial
	}
	return &tcpTransport{addr: addr, timeout: timeout, dial: dial}
}

func (t *tcpTransport) Kind() Kind { return TCP }

func (t *tcpTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dial(ctx, "tcp", t.addr)
	if err != nil {
		return nil, xerrors.Network("dial tcp upstream", err)
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
		data, err := sendFramed(conn, request)
		done <- result{data: data, err: err}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, xerrors.Timeout("tcp exchange deadline exceeded")
	}
}

// sendFramed writes the two-byte length prefix + request, then reads one
// length-prefixed response from conn.
func sendFramed(conn io.ReadWriter, request []byte) ([]byte, error) {
	if len(request) > 0xFFFF {
		return nil, xerrors.Protocol("request too large for tcp framing")
	}
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(request)))
	if _, err := conn.Write(append(prefix[:], request...)); err != nil {
		return nil, xerrors.Network("write tcp request", err)
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, classifyReadErr(err)
	}
	respLen := binary.BigEndian.Uint16(lenBuf[:])
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return nil, classifyReadErr(err)
	}
	return resp, nil
}
