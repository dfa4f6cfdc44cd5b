package probe

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	hintColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
)

const reportRule = "=================================================="

// Millis converts a duration to fractional milliseconds for reporting.
func Millis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// WriteReport prints the final statistics block for a run.
func WriteReport(w io.Writer, title string, snap Snapshot) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, reportRule)
	titleColor.Fprintln(w, title)
	fmt.Fprintln(w, reportRule)
	fmt.Fprintf(w, "Connection attempts:    %d\n", snap.ConnAttempts)
	fmt.Fprintf(w, "Successful connections: %d\n", snap.ConnSuccesses)
	fmt.Fprintf(w, "Failed connections:     %d\n", snap.ConnFailures)
	fmt.Fprintf(w, "Messages sent:          %d\n", snap.MsgsSent)
	fmt.Fprintf(w, "Messages received:      %d\n", snap.MsgsReceived)
	if avg, ok := snap.AvgLatency(); ok {
		fmt.Fprintf(w, "Average latency:        %.2fms\n", Millis(avg))
		if snap.LatencySamples > 0 {
			fmt.Fprintf(w, "Minimum latency:        %.2fms\n", Millis(snap.MinLatency))
			fmt.Fprintf(w, "Maximum latency:        %.2fms\n", Millis(snap.MaxLatency))
		}
	}
	fmt.Fprintf(w, "Connection success rate: %.1f%%\n", snap.SuccessRate())
	fmt.Fprintln(w, reportRule)
}

// WriteFailure prints a classified connect failure with its hint, if any.
func WriteFailure(w io.Writer, err error) {
	errColor.Fprintf(w, "Connect failed: %v\n", err)
	var pe *ProbeError
	if errors.As(err, &pe) && pe.Hint != "" {
		hintColor.Fprintf(w, "Hint: %s\n", pe.Hint)
	}
}

// WriteHTTPCheck prints the HTTP fallback diagnostic snapshot. The header
// subset highlights the fields that matter for WebSocket negotiation.
func WriteHTTPCheck(w io.Writer, check *HTTPCheck) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, reportRule)
	titleColor.Fprintln(w, "HTTP fallback diagnostic")
	fmt.Fprintln(w, reportRule)
	if check.Err != nil {
		errColor.Fprintf(w, "HTTP probe failed: %v\n", check.Err)
		fmt.Fprintln(w, reportRule)
		return
	}
	fmt.Fprintf(w, "Status code:  %d\n", check.StatusCode)
	fmt.Fprintf(w, "Content type: %s\n", check.ContentType)
	fmt.Fprintln(w, "Response headers:")
	for key, values := range check.Headers {
		switch strings.ToLower(key) {
		case "upgrade", "connection", "sec-websocket-accept", "sec-websocket-protocol":
			fmt.Fprintf(w, "  %s: %s\n", key, strings.Join(values, ", "))
		}
	}
	if check.Body != "" {
		fmt.Fprintf(w, "Body (first %d bytes):\n  %s\n", bodyPreviewLimit, check.Body)
	}
	fmt.Fprintln(w, reportRule)
}
