// Package probe implements diagnostic probing of WebSocket endpoints.
//
// A probe establishes a connection to a ws:// or wss:// endpoint, measures
// handshake and round-trip latency, exercises the ping/pong heartbeat, and
// aggregates the outcome into counters suitable for reporting.
//
// Key pieces:
//   - Target: validated, immutable description of the endpoint under test
//   - Session: one connection with connect/send/ping/close and failure
//     classification
//   - Stats and Snapshot: counters with a merge rule for combining
//     concurrent trials
//   - Runner: the four probe modes (basic, continuous, stress, interactive)
//   - HTTPCheck: plain-HTTP fallback diagnostic for failed handshakes
//
// Usage:
//
//	target := &probe.Target{URI: "ws://localhost:9001/echo"}
//	if err := target.Validate(); err != nil {
//	    return err
//	}
//	runner := probe.NewRunner(target, probe.Options{Message: "ping"})
//	runner.RunBasic(ctx)
//
// The package uses github.com/gorilla/websocket for the underlying WebSocket
// protocol implementation.
package probe
