package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Common errors for the probe package.
var (
	// ErrInvalidScheme indicates the target URI scheme is not ws or wss.
	ErrInvalidScheme = errors.New("URI scheme must be ws:// or wss://")
	// ErrNotConnected indicates an operation requiring a live connection
	// was called on an idle session.
	ErrNotConnected = errors.New("no active connection")
	// ErrConnectionClosed indicates the connection was closed mid-operation.
	ErrConnectionClosed = errors.New("connection closed")
)

// FailureKind classifies a failed probe operation. The rest of the system
// only ever sees these kinds, never library-specific error identities.
type FailureKind int

// Failure kinds.
const (
	// FailureOther is the catch-all for transport, DNS, TLS, and
	// refused-connection errors.
	FailureOther FailureKind = iota
	// FailureTimeout indicates the configured deadline was exceeded.
	FailureTimeout
	// FailureInvalidStatus indicates the handshake was rejected with an
	// HTTP status.
	FailureInvalidStatus
	// FailureInvalidHandshake indicates a protocol-level handshake
	// rejection without a usable status.
	FailureInvalidHandshake
	// FailureNotConnected indicates a send or ping without a live
	// connection.
	FailureNotConnected
)

// String returns a short name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureInvalidStatus:
		return "invalid status"
	case FailureInvalidHandshake:
		return "invalid handshake"
	case FailureNotConnected:
		return "not connected"
	default:
		return "other"
	}
}

// ProbeError is a classified probe failure. StatusCode is set only for
// FailureInvalidStatus; Hint carries operator guidance when one applies.
type ProbeError struct {
	Kind       FailureKind
	StatusCode int
	Hint       string
	Err        error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Kind == FailureInvalidStatus && e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error { return e.Err }

// newProbeError builds a ProbeError of the given kind around err.
func newProbeError(kind FailureKind, err error) *ProbeError {
	return &ProbeError{Kind: kind, Err: err}
}

// Kind extracts the failure kind from err, or FailureOther if err carries
// no classification.
func Kind(err error) FailureKind {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureOther
}

// isTimeout reports whether err is a deadline-style failure at any layer.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classifyDialError translates a handshake failure from the transport
// library into the probe taxonomy. This is the only place that inspects
// library error identities.
func classifyDialError(err error, resp *http.Response) *ProbeError {
	if isTimeout(err) {
		return newProbeError(FailureTimeout, err)
	}
	if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
		return &ProbeError{
			Kind:       FailureInvalidStatus,
			StatusCode: resp.StatusCode,
			Hint:       statusHint(resp.StatusCode),
			Err:        err,
		}
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		return &ProbeError{
			Kind: FailureInvalidHandshake,
			Hint: handshakeHint(err),
			Err:  err,
		}
	}
	return newProbeError(FailureOther, err)
}

// classifyIOError translates a send/receive/ping failure into the taxonomy.
func classifyIOError(err error) *ProbeError {
	if isTimeout(err) {
		return newProbeError(FailureTimeout, err)
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, ErrConnectionClosed) {
		return newProbeError(FailureOther, ErrConnectionClosed)
	}
	return newProbeError(FailureOther, err)
}

// statusHint returns operator guidance for a handshake rejection status.
// A 200 is a strong signal the endpoint is a plain HTTP service rather
// than a WebSocket endpoint.
func statusHint(code int) string {
	switch code {
	case http.StatusOK:
		return "status 200 means this is a plain HTTP service, not a WebSocket endpoint; check the URL path and that the server supports the WebSocket protocol"
	case http.StatusNotFound:
		return "path not found; check the WebSocket endpoint path"
	case http.StatusForbidden:
		return "access denied; authentication or permissions may be required"
	case http.StatusUnauthorized:
		return "authentication required; check the authentication headers"
	default:
		return ""
	}
}

// handshakeHint returns guidance for a protocol-level handshake rejection.
func handshakeHint(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "upgrade") || strings.Contains(msg, "websocket") {
		return "WebSocket upgrade negotiation failed; the server may not support the WebSocket protocol on this path"
	}
	return ""
}
