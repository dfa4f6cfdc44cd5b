package probe

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	// DefaultTimeout bounds the handshake and every send/receive/ping.
	DefaultTimeout = 5 * time.Second

	// DefaultMessage is the payload sent when none is configured.
	DefaultMessage = "ping"
)

// Target describes a WebSocket endpoint to probe. It is validated once at
// startup and treated as immutable afterwards.
type Target struct {
	// URI is the endpoint address. The scheme must be ws or wss.
	URI string

	// Timeout bounds the handshake and each network operation.
	// Zero or negative values fall back to DefaultTimeout.
	Timeout time.Duration

	// Headers are additional HTTP headers sent with the handshake and
	// with the HTTP fallback diagnostic.
	Headers map[string]string

	// SkipTLSVerify disables certificate and hostname verification for
	// wss targets. Only for controlled test environments.
	SkipTLSVerify bool

	// Debug enables the HTTP fallback diagnostic on handshake failure
	// and verbose connection detail.
	Debug bool
}

// Validate checks the target and normalizes defaults. An unsupported URI
// scheme is a configuration error, not a runtime failure.
func (t *Target) Validate() error {
	u, err := url.Parse(t.URI)
	if err != nil {
		return fmt.Errorf("invalid target URI %q: %w", t.URI, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: got %q", ErrInvalidScheme, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid target URI %q: missing host", t.URI)
	}
	if t.Timeout <= 0 {
		t.Timeout = DefaultTimeout
	}
	return nil
}

// Secure reports whether the target uses TLS (wss scheme).
func (t *Target) Secure() bool {
	return strings.HasPrefix(t.URI, "wss://")
}

// HTTPURL returns the target URI rewritten to its plain-HTTP equivalent
// (ws -> http, wss -> https), used by the fallback diagnostic.
func (t *Target) HTTPURL() string {
	if s, ok := strings.CutPrefix(t.URI, "wss://"); ok {
		return "https://" + s
	}
	if s, ok := strings.CutPrefix(t.URI, "ws://"); ok {
		return "http://" + s
	}
	return t.URI
}

// Header builds the http.Header carried by the handshake request.
func (t *Target) Header() http.Header {
	h := http.Header{}
	for k, v := range t.Headers {
		h.Set(k, v)
	}
	return h
}
