package transport

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// withTimeout guarantees ctx carries a deadline no later than timeout from
// now, without shortening a tighter deadline the caller already set.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= timeout {
			return ctx, func() {}
		}
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyReadErr maps a read failure to Timeout vs Network so callers can
// branch on xerrors.Kind instead of inspecting net.Error directly.
func classifyReadErr(err error) error {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
		return xerrors.Timeout("read deadline exceeded")
	}
	if os.IsTimeout(err) {
		return xerrors.Timeout("read deadline exceeded")
	}
	return xerrors.Network("read response", err)
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
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
