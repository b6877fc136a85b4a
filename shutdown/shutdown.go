// Package shutdown turns termination signals into context cancellation so
// the board is persisted and the terminal restored before exit.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"talkboard/log"
)

// ExitCode is used when a second signal arrives before cleanup finishes.
const ExitCode = 130

var exit = os.Exit

// Context returns a copy of parent that is cancelled by the first
// termination signal. A second signal exits the process immediately.
// The returned CancelFunc also stops signal delivery.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(ch)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case sig := <-ch:
			log.Info(fmt.Sprintf("received %v, saving board and exiting", sig))
			cancel()
		case <-ctx.Done():
		case <-stopped:
			return
		}
		select {
		case sig := <-ch:
			log.Warnf("received %v during shutdown, exiting now", sig)
			exit(ExitCode)
		case <-stopped:
		}
	}()
	return ctx, stop
}
