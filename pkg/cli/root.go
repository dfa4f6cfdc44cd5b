package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the wsprobe command itself; the tool is single-purpose
// so probing hangs directly off the root.
var rootCmd = &cobra.Command{
	Use:   "wsprobe <uri>",
	Short: "wsprobe is a diagnostic probe for WebSocket endpoints",
	Long: `wsprobe connects to ws:// and wss:// endpoints, measures handshake and
round-trip latency, exercises the ping/pong heartbeat, and reports aggregate
health statistics.

Four modes are available:
  basic        one connect/ping/send cycle (default)
  continuous   repeat the cycle on an interval until interrupted
  stress       concurrent fan-out of independent trials
  interactive  full-duplex session with an operator prompt`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
	RunE:          runProbe,
}

// Execute runs the CLI. Configuration errors and unexpected probe-level
// failures exit 1; normal completion and operator interrupts exit 0.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
