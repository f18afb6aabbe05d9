// Package xerrors defines the typed error taxonomy returned by dnsx.
// Every failure path returns (or wraps) an *Error carrying a Kind so
// callers can branch on failure class with errors.As instead of string
// matching.
package xerrors

import "fmt"

// Kind classifies why an operation failed.
type Kind int

const (
	// KindUnknown is the zero value and should never be returned.
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindTLS
	KindHTTP
	KindProtocol
	KindParse
	KindConfig
	KindInvalidConfig
	KindServer
	KindNXDomain
	KindRefused
	KindServerFailure
	KindFormatError
	KindNoUpstreamAvailable
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindTLS:
		return "tls"
	case KindHTTP:
		return "http"
	case KindProtocol:
		return "protocol"
	case KindParse:
		return "parse"
	case KindConfig:
		return "config"
	case KindInvalidConfig:
		return "invalid_config"
	case KindServer:
		return "server"
	case KindNXDomain:
		return "nxdomain"
	case KindRefused:
		return "refused"
	case KindServerFailure:
		return "server_failure"
	case KindFormatError:
		return "format_error"
	case KindNoUpstreamAvailable:
		return "no_upstream_available"
	case KindNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned throughout dnsx.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, xerrors.New(xerrors.KindTimeout, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error carrying cause as its wrapped error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Timeout(msg string) *Error             { return New(KindTimeout, msg) }
func Network(msg string, err error) *Error  { return Wrap(KindNetwork, msg, err) }
func TLS(msg string, err error) *Error      { return Wrap(KindTLS, msg, err) }
func HTTP(msg string, err error) *Error     { return Wrap(KindHTTP, msg, err) }
func Protocol(msg string) *Error            { return New(KindProtocol, msg) }
func Parse(msg string) *Error               { return New(KindParse, msg) }
func Config(msg string) *Error              { return New(KindConfig, msg) }
func InvalidConfig(field, msg string) *Error {
	return New(KindInvalidConfig, fmt.Sprintf("%s: %s", field, msg))
}
func Server(msg string) *Error              { return New(KindServer, msg) }
func NXDomain() *Error                      { return New(KindNXDomain, "domain not found") }
func Refused() *Error                       { return New(KindRefused, "query refused") }
func ServerFailure() *Error                 { return New(KindServerFailure, "server failure") }
func FormatError() *Error                   { return New(KindFormatError, "format error") }
func NoUpstreamAvailable(msg string) *Error { return New(KindNoUpstreamAvailable, msg) }
func NotImplemented(msg string) *Error      { return New(KindNotImplemented, msg) }

// IsKind reports whether err's Kind matches kind, unwrapping as needed.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind == kind
	}
	return false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
