package main

import (
	"context"
	"os/signal"
)

// notifyContext derives a context that is cancelled on the first shutdown
// signal. A resolve run stops issuing fetches and serve drains in-flight
// requests once it fires. stop releases the signal handler.
func notifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
