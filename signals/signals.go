// Package signals provides a single graceful-shutdown context for a
// process, canceled on SIGINT or SIGTERM.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var once sync.Once

// SetupHandler installs the process-wide signal handler and returns a
// context canceled on SIGINT or SIGTERM, along with a stop function that
// releases the underlying signal.Notify registration early. It panics if
// called more than once: a process has exactly one shutdown signal to
// listen for, and a second registration would silently shadow the first.
func SetupHandler() (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	called := false
	once.Do(func() {
		ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		called = true
	})
	if !called {
		panic("signals: SetupHandler called more than once")
	}
	return ctx, cancel
}
