// Package transport implements the four wire transports a query can be
// sent over: plaintext UDP, plaintext TCP, DNS-over-TLS, and
// DNS-over-HTTPS. Each adapter shares one contract: given an encoded
// request, return the raw response bytes or a typed failure. Decoding the
// response (and checking its id) is left to the caller.
package transport

import (
	"context"
	"net"
)

// Kind identifies which of the four transports an adapter implements.
type Kind int

const (
	UDP Kind = iota
	TCP
	DoT
	DoH
)

func (k Kind) String() string {
	switch k {
	case UDP:
		return "udp"
	case TCP:
		return "tcp"
	case DoT:
		return "dot"
	case DoH:
		return "doh"
	default:
		return "unknown"
	}
}

// Transport sends one already-encoded DNS message and returns the raw,
// still-encoded response bytes, or a typed *xerrors.Error on failure.
type Transport interface {
	Kind() Kind
	Send(ctx context.Context, request []byte) ([]byte, error)
}

// DialFunc opens a network connection, matching net.Dialer.DialContext's
// signature so tests can inject a fake without touching the real network.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

func defaultDial(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}
