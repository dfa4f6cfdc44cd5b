package probe

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Outcome is the result of one stress-mode trial.
type Outcome struct {
	Success bool
	Stats   Snapshot
}

// RunStress runs Count independent single-shot trials with at most
// Concurrency in flight at once. Each trial owns its own session; a trial
// failure, including a panic, is recorded as a failed outcome and never
// aborts sibling trials. Per-trial snapshots merge into one aggregate.
func (r *Runner) RunStress(ctx context.Context) error {
	count, limit := r.opts.Count, r.opts.Concurrency
	r.log.Info("starting stress test", "count", count, "concurrency", limit)

	sem := semaphore.NewWeighted(int64(limit))
	outcomes := make([]Outcome, count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled mid fan-out; unstarted trials count as failures.
			for j := i; j < count; j++ {
				outcomes[j] = Outcome{Stats: Snapshot{ConnAttempts: 1, ConnFailures: 1}}
			}
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = r.runTrial(ctx)
		}(i)
	}
	wg.Wait()

	var total Snapshot
	for _, o := range outcomes {
		total = total.Merge(o.Stats)
	}
	WriteReport(r.Out, "Stress test aggregate statistics", total)
	return nil
}

// runTrial performs one connect-send-close cycle on a fresh session. A
// panic inside the trial becomes a failed outcome.
func (r *Runner) runTrial(ctx context.Context) (out Outcome) {
	sess := r.newSession()
	defer func() {
		sess.Close()
		if p := recover(); p != nil {
			r.log.Error("trial panicked", "panic", fmt.Sprint(p))
			out = abortedTrial(sess.Stats().Snapshot())
		}
	}()

	if err := sess.Connect(ctx); err != nil {
		return Outcome{Stats: sess.Stats().Snapshot()}
	}
	_, err := sess.Send(ctx, r.opts.Message)
	if err != nil {
		r.log.Error("send failed", "error", err)
	}
	return Outcome{Success: err == nil, Stats: sess.Stats().Snapshot()}
}

// abortedTrial reclassifies a trial cut short by a panic: any connect success
// the session had already counted becomes a failure, so the aggregate never
// credits a trial that did not finish.
func abortedTrial(snap Snapshot) Outcome {
	snap.ConnFailures += snap.ConnSuccesses
	snap.ConnSuccesses = 0
	if snap.ConnAttempts == 0 {
		snap.ConnAttempts, snap.ConnFailures = 1, 1
	}
	return Outcome{Stats: snap}
}
