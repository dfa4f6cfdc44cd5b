package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Exculiber/websocket-client/pkg/logging"
	"github.com/Exculiber/websocket-client/pkg/probe"
)

var (
	flagMode        string
	flagMessage     string
	flagInterval    int
	flagCount       int
	flagConcurrency int
	flagHeaders     string
	flagTimeout     int
	flagSkipVerify  bool
	flagDebug       bool
	flagLogFormat   string
)

func init() {
	fs := rootCmd.Flags()
	fs.StringVarP(&flagMode, "mode", "m", "basic", "Probe mode: basic, continuous, stress, or interactive")
	fs.StringVar(&flagMessage, "message", probe.DefaultMessage, "Payload for send operations")
	fs.IntVar(&flagInterval, "interval", 5, "Seconds between continuous-mode cycles")
	fs.IntVar(&flagCount, "count", 10, "Number of stress-mode trials")
	fs.IntVar(&flagConcurrency, "concurrency", 3, "Concurrent stress-mode trials in flight")
	fs.StringVar(&flagHeaders, "headers", "", `Extra handshake headers as a JSON object (e.g. '{"Authorization": "Bearer token"}')`)
	fs.IntVar(&flagTimeout, "timeout", 5, "Timeout in seconds for handshake and each operation")
	fs.BoolVar(&flagSkipVerify, "skip-ssl-verify", false, "Disable TLS certificate verification (test environments only)")
	fs.BoolVar(&flagDebug, "debug", false, "Enable HTTP fallback diagnostics and verbose connection detail")
	fs.StringVar(&flagLogFormat, "log-format", "text", "Log output format: text or json")
}

// parseHeaders decodes the --headers JSON object. Malformed JSON is a
// configuration error reported before any probing.
func parseHeaders(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	headers := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, fmt.Errorf("invalid --headers JSON: %w", err)
	}
	return headers, nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	headers, err := parseHeaders(flagHeaders)
	if err != nil {
		return err
	}

	switch flagMode {
	case "basic", "continuous", "stress", "interactive":
	default:
		return fmt.Errorf("unknown mode %q (expected basic, continuous, stress, or interactive)", flagMode)
	}

	target := &probe.Target{
		URI:           args[0],
		Timeout:       time.Duration(flagTimeout) * time.Second,
		Headers:       headers,
		SkipTLSVerify: flagSkipVerify,
		Debug:         flagDebug,
	}
	if err := target.Validate(); err != nil {
		return err
	}

	level := logging.LevelInfo
	if flagDebug {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{
		Level:  level,
		Format: logging.ParseFormat(flagLogFormat),
	})

	// Interrupts cancel in-flight probing; the drivers flush their stats
	// on the way out and the process exits 0.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writeBanner(os.Stdout, target, flagMode, flagMessage)

	runner := probe.NewRunner(target, probe.Options{
		Message:     flagMessage,
		Interval:    time.Duration(flagInterval) * time.Second,
		Count:       flagCount,
		Concurrency: flagConcurrency,
	})
	runner.SetLogger(log)

	switch flagMode {
	case "continuous":
		return runner.RunContinuous(ctx)
	case "stress":
		return runner.RunStress(ctx)
	case "interactive":
		return runner.RunInteractive(ctx)
	default:
		return runner.RunBasic(ctx)
	}
}

// writeBanner summarizes the run before probing starts.
func writeBanner(w io.Writer, t *probe.Target, mode, message string) {
	fmt.Fprintln(w, "WebSocket probe")
	fmt.Fprintf(w, "  Target:  %s\n", t.URI)
	fmt.Fprintf(w, "  Mode:    %s\n", mode)
	fmt.Fprintf(w, "  Message: %s\n", message)
	if len(t.Headers) > 0 {
		fmt.Fprintf(w, "  Headers: %d custom\n", len(t.Headers))
	}
	if t.SkipTLSVerify {
		fmt.Fprintln(w, "  TLS:     certificate verification DISABLED (test environments only)")
	}
	if t.Debug {
		fmt.Fprintln(w, "  Debug:   enabled")
	}
	fmt.Fprintln(w, "--------------------------------------------------")
}
