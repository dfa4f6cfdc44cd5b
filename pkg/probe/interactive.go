package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const prompt = "send> "

// RunInteractive connects once, then runs two concurrent activities against
// the session: a receive loop that prints every inbound message with a
// timestamp, and a prompt loop reading operator commands. Reserved commands:
// quit/exit/q, ping, stats, help; blank input is a no-op; anything else is
// sent verbatim. On exit the receive loop is cancelled and awaited before
// the connection closes, and the final statistics print exactly once.
func (r *Runner) RunInteractive(ctx context.Context) error {
	titleColor.Fprintln(r.Out, "Interactive WebSocket session")
	r.writeInteractiveHelp()

	sess := r.newSession()
	if err := sess.Connect(ctx); err != nil {
		WriteFailure(r.Out, err)
		if r.target.Debug {
			WriteHTTPCheck(r.Out, sess.HTTPProbe(ctx))
		}
		return nil
	}

	recvCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.receiveLoop(recvCtx, sess)
	}()

	r.promptLoop(ctx, sess)

	cancel()
	wg.Wait()
	sess.Close()
	WriteReport(r.Out, "WebSocket probe statistics", sess.Stats().Snapshot())
	return nil
}

// receiveLoop prints inbound messages until the connection ends or ctx is
// cancelled, re-issuing the prompt after each one.
func (r *Runner) receiveLoop(ctx context.Context, sess *Session) {
	for {
		msg, err := sess.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintf(r.Out, "\nconnection closed: %v\n", err)
			return
		}
		fmt.Fprintf(r.Out, "\n[%s] received: %s\n", time.Now().Format("15:04:05"), msg)
		fmt.Fprint(r.Out, prompt)
	}
}

// promptLoop reads operator input until quit, interrupt, or EOF. Input is
// scanned on its own goroutine feeding a channel, so an interrupt is honoured
// even while the prompt sits idle waiting for a line.
func (r *Runner) promptLoop(ctx context.Context, sess *Session) {
	lines := make(chan string, 10)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.In)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case lines <- scanner.Text():
			}
		}
	}()

	for {
		fmt.Fprint(r.Out, prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.Out, "\ninterrupted, leaving interactive session")
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			fmt.Fprintln(r.Out, "leaving interactive session")
			return
		case "ping":
			if d, err := sess.PingTest(ctx); err != nil {
				errColor.Fprintf(r.Out, "ping failed: %v\n", err)
			} else {
				fmt.Fprintf(r.Out, "pong in %.2fms\n", Millis(d))
			}
		case "stats":
			r.writeLiveStats(sess)
		case "help":
			r.writeInteractiveHelp()
		case "":
			// no-op
		default:
			if err := sess.Post(line); err != nil {
				errColor.Fprintf(r.Out, "send failed: %v\n", err)
				return
			}
			fmt.Fprintf(r.Out, "sent: %s\n", line)
		}
	}
}

// writeLiveStats prints a snapshot of the counters and connection status.
func (r *Runner) writeLiveStats(sess *Session) {
	snap := sess.Stats().Snapshot()
	status := "disconnected"
	if sess.Connected() {
		status = "connected"
	}
	fmt.Fprintf(r.Out, "messages sent:     %d\n", snap.MsgsSent)
	fmt.Fprintf(r.Out, "messages received: %d\n", snap.MsgsReceived)
	fmt.Fprintf(r.Out, "connection:        %s\n", status)
}

func (r *Runner) writeInteractiveHelp() {
	fmt.Fprintln(r.Out, "Commands:")
	fmt.Fprintln(r.Out, "  <text>       send the text as a message")
	fmt.Fprintln(r.Out, "  ping         transport-level heartbeat round trip")
	fmt.Fprintln(r.Out, "  stats        live counters and connection status")
	fmt.Fprintln(r.Out, "  help         this list")
	fmt.Fprintln(r.Out, "  quit/exit/q  close the session")
}
