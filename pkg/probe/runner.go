package probe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Exculiber/websocket-client/pkg/logging"
)

// Options configures the mode drivers.
type Options struct {
	// Message is the payload for send operations.
	Message string

	// Interval is the sleep between continuous-mode cycles.
	Interval time.Duration

	// Count is the number of stress-mode trials.
	Count int

	// Concurrency bounds how many stress-mode trials run at once.
	Concurrency int
}

// Runner executes probe modes against one target. Output goes to Out
// (reports) and the logger (operational detail); In feeds the interactive
// prompt. All three default to the process's standard streams.
type Runner struct {
	target *Target
	opts   Options
	log    *slog.Logger

	Out io.Writer
	In  io.Reader
}

// NewRunner creates a runner for the target.
func NewRunner(target *Target, opts Options) *Runner {
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.Count <= 0 {
		opts.Count = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	return &Runner{
		target: target,
		opts:   opts,
		log:    logging.Nop(),
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

// SetLogger sets the operational logger for the runner and its sessions.
func (r *Runner) SetLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	r.log = log
}

// newSession builds a session wired to the runner's logger.
func (r *Runner) newSession() *Session {
	sess := NewSession(r.target)
	sess.SetLogger(r.log)
	return sess
}

// RunBasic performs a single probe cycle: connect, ping, send, close, and
// prints the statistics. When the connect fails and debug mode is on, the
// HTTP fallback diagnostic is printed instead.
func (r *Runner) RunBasic(ctx context.Context) error {
	sess := r.newSession()
	defer func() {
		sess.Close()
		WriteReport(r.Out, "WebSocket probe statistics", sess.Stats().Snapshot())
	}()

	if err := sess.Connect(ctx); err != nil {
		WriteFailure(r.Out, err)
		if r.target.Debug {
			r.log.Info("running HTTP fallback diagnostic")
			WriteHTTPCheck(r.Out, sess.HTTPProbe(ctx))
		}
		return nil
	}

	if _, err := sess.PingTest(ctx); err != nil {
		r.log.Error("ping failed", "error", err)
	}
	if _, err := sess.Send(ctx, r.opts.Message); err != nil {
		r.log.Error("send failed", "error", err)
	}
	return nil
}
