package probe

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
)

// bodyPreviewLimit caps how much of the response body the diagnostic keeps.
const bodyPreviewLimit = 500

// HTTPCheck is a bounded diagnostic snapshot of a plain HTTP GET against the
// probe target. It is produced when the WebSocket handshake fails and debug
// mode is active, to help the operator see what the endpoint actually is.
// Failures never escape the check; they land in Err.
type HTTPCheck struct {
	StatusCode  int
	Headers     http.Header
	ContentType string
	Body        string
	Err         error
}

// HTTPProbe issues a plain GET against the target with the ws/wss scheme
// rewritten to http/https, carrying the same headers and TLS policy as the
// WebSocket handshake.
func (s *Session) HTTPProbe(ctx context.Context) *HTTPCheck {
	t := s.target

	transport := &http.Transport{}
	if t.Secure() && t.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   t.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.HTTPURL(), nil)
	if err != nil {
		return &HTTPCheck{Err: err}
	}
	req.Header = t.Header()

	resp, err := client.Do(req)
	if err != nil {
		return &HTTPCheck{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	check := &HTTPCheck{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))
	if err != nil {
		check.Body = "failed to read response body"
		return check
	}
	check.Body = string(body)
	return check
}
