package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuildsEachKind(t *testing.T) {
	cases := []Params{
		{Kind: UDP, DialAddr: "1.1.1.1:53", Timeout: time.Second},
		{Kind: TCP, DialAddr: "1.1.1.1:53", Timeout: time.Second},
		{Kind: DoT, DialAddr: "1.1.1.1:853", ServerName: "one.one.one.one", Timeout: time.Second},
		{Kind: DoH, URL: "https://dns.example/dns-query", Timeout: time.Second},
	}
	for _, p := range cases {
		tr, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, p.Kind, tr.Kind())
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Params{Kind: Kind(99)})
	assert.Error(t, err)
}
