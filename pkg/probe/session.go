package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Exculiber/websocket-client/pkg/logging"
)

// Session owns one transport-level connection to a target. A session is
// single-owner: one mode driver uses it, and instances are never shared
// across concurrent trials. Close is idempotent and safe on a session that
// never connected.
type Session struct {
	target *Target
	log    *slog.Logger
	stats  *Stats

	mu       sync.Mutex
	conn     *websocket.Conn
	inbound  chan []byte
	pong     chan struct{}
	done     chan struct{} // closed by Close
	readDone chan struct{} // closed when the read pump exits
	readErr  error
}

// connState is a consistent view of the live connection's channels.
type connState struct {
	conn     *websocket.Conn
	inbound  chan []byte
	pong     chan struct{}
	done     chan struct{}
	readDone chan struct{}
}

// NewSession creates an idle session for the given target.
func NewSession(target *Target) *Session {
	return &Session{
		target: target,
		stats:  NewStats(),
		log:    logging.Nop(),
	}
}

// SetLogger sets the operational logger for the session.
func (s *Session) SetLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	s.log = log
}

// Stats returns the session's accumulator.
func (s *Session) Stats() *Stats { return s.stats }

// Target returns the probed target.
func (s *Session) Target() *Target { return s.target }

// Connect establishes the WebSocket connection. The configured timeout is a
// hard deadline on the handshake. On failure the error is classified into
// the probe taxonomy and the failure is recorded in Stats.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return errors.New("already connected")
	}
	s.mu.Unlock()

	t := s.target
	s.log.Info("connecting", "uri", t.URI)
	if t.Debug {
		s.log.Debug("connection detail", "timeout", t.Timeout, "headers", len(t.Headers), "skip_tls_verify", t.SkipTLSVerify)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: t.Timeout}
	if t.Secure() {
		cfg := &tls.Config{}
		if t.SkipTLSVerify {
			cfg.InsecureSkipVerify = true
			s.log.Warn("TLS certificate verification disabled; use only in controlled test environments")
		}
		dialer.TLSClientConfig = cfg
	}

	dialCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, t.URI, t.Header())
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		s.stats.AddAttempt(false)
		perr := classifyDialError(err, resp)
		if perr.Hint != "" {
			s.log.Error("connect failed", "kind", perr.Kind.String(), "error", err, "hint", perr.Hint)
		} else {
			s.log.Error("connect failed", "kind", perr.Kind.String(), "error", err)
		}
		return perr
	}
	s.stats.AddAttempt(true)

	inbound := make(chan []byte, 16)
	pong := make(chan struct{}, 1)
	done := make(chan struct{})
	readDone := make(chan struct{})
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.inbound = inbound
	s.pong = pong
	s.done = done
	s.readDone = readDone
	s.readErr = nil
	s.mu.Unlock()

	go s.readPump(conn, inbound, done, readDone)

	s.log.Info("connection established", "uri", t.URI)
	return nil
}

// readPump owns the read side of the connection. Inbound data frames are
// handed to the session's channel; control frames are processed by the
// library and surface through the pong handler. The pump exits on the
// first read error, which gorilla treats as permanent.
func (s *Session) readPump(conn *websocket.Conn, inbound chan []byte, done, readDone chan struct{}) {
	defer close(readDone)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
		select {
		case inbound <- data:
		case <-done:
			return
		}
	}
}

// state returns the live connection's channels, or ok=false when idle.
func (s *Session) state() (connState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return connState{}, false
	}
	return connState{
		conn:     s.conn,
		inbound:  s.inbound,
		pong:     s.pong,
		done:     s.done,
		readDone: s.readDone,
	}, true
}

// readError returns the error that terminated the read pump.
func (s *Session) readError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return s.readErr
	}
	return ErrConnectionClosed
}

// Connected reports whether the session holds a usable connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return false
	}
	select {
	case <-s.readDone:
		return false
	default:
		return true
	}
}

// Send writes a text message and waits up to the configured timeout for one
// reply frame, measuring wall time from send start to reply. On success the
// sent and received counters advance and the latency folds into Stats; a
// reply timeout leaves the received counter untouched.
func (s *Session) Send(ctx context.Context, message string) (time.Duration, error) {
	st, ok := s.state()
	if !ok {
		return 0, &ProbeError{Kind: FailureNotConnected, Err: ErrNotConnected}
	}

	start := time.Now()
	_ = st.conn.SetWriteDeadline(start.Add(s.target.Timeout))
	if err := st.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return 0, classifyIOError(err)
	}
	s.stats.AddSent()
	s.log.Info("message sent", "payload", preview(message))

	timer := time.NewTimer(s.target.Timeout)
	defer timer.Stop()
	select {
	case data := <-st.inbound:
		elapsed := time.Since(start)
		s.stats.AddReceived()
		s.stats.AddLatency(elapsed)
		s.log.Info("response received", "latency", elapsed, "payload", preview(string(data)))
		return elapsed, nil
	case <-st.readDone:
		return 0, classifyIOError(s.readError())
	case <-ctx.Done():
		return 0, classifyIOError(ctx.Err())
	case <-timer.C:
		return 0, newProbeError(FailureTimeout, fmt.Errorf("no reply within %s", s.target.Timeout))
	}
}

// Post writes a text message without waiting for a reply. Used by the
// interactive mode, where the receive activity owns the read side.
func (s *Session) Post(message string) error {
	st, ok := s.state()
	if !ok {
		return &ProbeError{Kind: FailureNotConnected, Err: ErrNotConnected}
	}
	_ = st.conn.SetWriteDeadline(time.Now().Add(s.target.Timeout))
	if err := st.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return classifyIOError(err)
	}
	s.stats.AddSent()
	return nil
}

// Receive blocks until one inbound message arrives, the connection ends, or
// ctx is cancelled. Cancellation is returned as ctx.Err() unwrapped so
// callers can tell their own shutdown from a transport failure.
func (s *Session) Receive(ctx context.Context) (string, error) {
	st, ok := s.state()
	if !ok {
		return "", &ProbeError{Kind: FailureNotConnected, Err: ErrNotConnected}
	}
	select {
	case data := <-st.inbound:
		s.stats.AddReceived()
		return string(data), nil
	case <-st.readDone:
		return "", classifyIOError(s.readError())
	case <-st.done:
		return "", newProbeError(FailureOther, ErrConnectionClosed)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// PingTest issues a transport-level ping and measures the round trip under
// the configured timeout. Independent of Send; message counters do not move.
func (s *Session) PingTest(ctx context.Context) (time.Duration, error) {
	st, ok := s.state()
	if !ok {
		return 0, &ProbeError{Kind: FailureNotConnected, Err: ErrNotConnected}
	}

	// Drop a stale pong left over from an earlier ping.
	select {
	case <-st.pong:
	default:
	}

	start := time.Now()
	if err := st.conn.WriteControl(websocket.PingMessage, nil, start.Add(s.target.Timeout)); err != nil {
		return 0, classifyIOError(err)
	}

	timer := time.NewTimer(s.target.Timeout)
	defer timer.Stop()
	select {
	case <-st.pong:
		elapsed := time.Since(start)
		s.log.Info("ping round trip", "latency", elapsed)
		return elapsed, nil
	case <-st.readDone:
		return 0, classifyIOError(s.readError())
	case <-ctx.Done():
		return 0, classifyIOError(ctx.Err())
	case <-timer.C:
		return 0, newProbeError(FailureTimeout, fmt.Errorf("no pong within %s", s.target.Timeout))
	}
}

// Close tears down the connection. Idempotent; safe on an idle, connected,
// or already-closed session.
func (s *Session) Close() {
	s.mu.Lock()
	conn, done := s.conn, s.done
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return
	}
	close(done)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()
	s.log.Info("connection closed")
}

// preview truncates a payload for logging.
func preview(payload string) string {
	const limit = 100
	if len(payload) > limit {
		return payload[:limit] + "..."
	}
	return payload
}
