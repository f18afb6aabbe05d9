package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

const dnsMessageMediaType = "application/dns-message"

// Method selects how a DoH transport sends the encoded message.
type Method int

const (
	MethodPOST Method = iota
	MethodGET
)

type dohTransport struct {
	url       string
	method    Method
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

// NewDoH returns a Transport that issues dns-message requests to url
// (scheme must be https). resolvedIP, when non-empty, overrides DNS
// resolution for the connect step only — the URL sent on the wire, the
// Host header, and TLS SNI all stay the url's own hostname (§3 invariant).
func NewDoH(rawURL, resolvedIP string, method Method, timeout time.Duration, dial DialFunc) (Transport, error) {
	return newDoH(rawURL, resolvedIP, method, timeout, dial, false)
}

// newDoHInsecure is the test seam for exercising the DoH transport against
// an httptest.Server's self-signed certificate.
func newDoHInsecure(rawURL, resolvedIP string, method Method, timeout time.Duration, dial DialFunc) (Transport, error) {
	return newDoH(rawURL, resolvedIP, method, timeout, dial, true)
}

func newDoH(rawURL, resolvedIP string, method Method, timeout time.Duration, dial DialFunc, insecureSkipVerify bool) (Transport, error) {
	if dial == nil {
		dial = defaultDial
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme != "https" {
		return nil, xerrors.InvalidConfig("upstream.server", "DoH address must be an https:// URL")
	}

	connectTimeout := clampDuration(timeout/3, 2*time.Second, 5*time.Second)

	dialFn := dial
	if resolvedIP != "" {
		host := parsed.Hostname()
		port := parsed.Port()
		if port == "" {
			port = "443"
		}
		target := net.JoinHostPort(resolvedIP, port)
		dialFn = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if strings.HasPrefix(network, "tcp") && hostOf(addr) == host {
				return dial(ctx, network, target)
			}
			return dial(ctx, network, addr)
		}
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			ctx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			return dialFn(ctx, network, addr)
		},
		IdleConnTimeout: 30 * time.Second,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify},
	}

	return &dohTransport{
		url:       rawURL,
		method:    method,
		userAgent: "dnsx/1.0",
		timeout:   timeout,
		client:    &http.Client{Transport: transport, Timeout: timeout},
	}, nil
}

func hostOf(hostport string) string {
	h, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return h
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func (t *dohTransport) Kind() Kind { return DoH }

func (t *dohTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	req, err := t.buildRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, xerrors.Timeout("doh exchange deadline exceeded")
		}
		return nil, xerrors.Network("doh request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.HTTP("non-2xx response", httpStatusError(resp.StatusCode))
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, dnsMessageMediaType) {
		return nil, xerrors.HTTP("invalid content type: "+contentType, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Network("read doh response body", err)
	}
	return body, nil
}

func (t *dohTransport) buildRequest(ctx context.Context, request []byte) (*http.Request, error) {
	var req *http.Request
	var err error

	if t.method == MethodGET {
		encoded := base64.RawURLEncoding.EncodeToString(request)
		sep := "?"
		if strings.Contains(t.url, "?") {
			sep = "&"
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, t.url+sep+"dns="+encoded, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(request))
		if err == nil {
			req.Header.Set("Content-Type", dnsMessageMediaType)
		}
	}
	if err != nil {
		return nil, xerrors.Network("build doh request", err)
	}
	req.Header.Set("Accept", dnsMessageMediaType)
	req.Header.Set("User-Agent", t.userAgent)
	return req, nil
}

type httpStatusErr struct{ status int }

func (e *httpStatusErr) Error() string { return http.StatusText(e.status) }

func httpStatusError(status int) error { return &httpStatusErr{status: status} }
