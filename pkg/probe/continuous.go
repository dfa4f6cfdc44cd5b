package probe

import (
	"context"
	"time"
)

// RunContinuous repeats the probe cycle until ctx is cancelled, sleeping
// Interval between cycles. One session accumulates statistics across all
// iterations; the report prints once at loop exit. Cancellation is observed
// between iterations and interrupts the sleep rather than waiting it out.
func (r *Runner) RunContinuous(ctx context.Context) error {
	sess := r.newSession()
	defer func() {
		sess.Close()
		WriteReport(r.Out, "WebSocket probe statistics", sess.Stats().Snapshot())
	}()

	for {
		if err := sess.Connect(ctx); err == nil {
			if _, err := sess.PingTest(ctx); err != nil {
				r.log.Error("ping failed", "error", err)
			}
			if _, err := sess.Send(ctx, r.opts.Message); err != nil {
				r.log.Error("send failed", "error", err)
			}
			sess.Close()
		} else {
			WriteFailure(r.Out, err)
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		r.log.Info("waiting for next probe cycle", "interval", r.opts.Interval)
		timer := time.NewTimer(r.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
