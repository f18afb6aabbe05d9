package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoHTransport_PostSendsRawBodyWithHeaders(t *testing.T) {
	var gotContentType, gotAccept string
	var gotBody []byte

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", dnsMessageMediaType)
		_, _ = w.Write([]byte("response-bytes"))
	}))
	defer srv.Close()

	tr, err := newDoHInsecure(srv.URL, "", MethodPOST, time.Second, nil)
	require.NoError(t, err)

	resp, err := tr.Send(context.Background(), []byte("query-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "response-bytes", string(resp))
	assert.Equal(t, dnsMessageMediaType, gotContentType)
	assert.Equal(t, dnsMessageMediaType, gotAccept)
	assert.Equal(t, "query-bytes", string(gotBody))
}

func TestDoHTransport_GetEncodesBase64URLNoPadding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("dns")
		w.Header().Set("Content-Type", dnsMessageMediaType)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr, err := newDoHInsecure(srv.URL+"/dns-query", "", MethodGET, time.Second, nil)
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), []byte{0xBE, 0xEF})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "=") // no-padding base64url
}

func TestDoHTransport_WrongContentTypeIsHTTPError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	tr, err := newDoHInsecure(srv.URL, "", MethodPOST, time.Second, nil)
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), []byte("query"))
	require.Error(t, err)
}

func TestNewDoH_RejectsNonHTTPSScheme(t *testing.T) {
	_, err := NewDoH("http://dns.example/dns-query", "", MethodPOST, time.Second, nil)
	require.Error(t, err)
}
