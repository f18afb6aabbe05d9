package transport

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTCPTransport_SendReceive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var lenBuf [2]byte
		if _, err := conn.Read(lenBuf[:]); err != nil {
			return
		}
		n := binary.BigEndian.Uint16(lenBuf[:])
		body := make([]byte, n)
		_, _ = conn.Read(body)

		reply := append([]byte("reply:"), body...)
		var prefix [2]byte
		binary.BigEndian.PutUint16(prefix[:], uint16(len(reply)))
		_, _ = conn.Write(append(prefix[:], reply...))
	}()

	tr := NewTCP(ln.Addr().String(), time.Second, nil)
	resp, err := tr.Send(context.Background(), []byte("ping"))
	require.NoError(t, err)
	require.Equal(t, "reply:ping", string(resp))
}

func TestTCPTransport_RequestTooLargeRejected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	tr := NewTCP(ln.Addr().String(), time.Second, nil)
	big := make([]byte, 0x10000)
	_, err = tr.Send(context.Background(), big)
	require.Error(t, err)
}
