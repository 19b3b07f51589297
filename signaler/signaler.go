// Package signaler relays process interrupts to long running commands
package signaler

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WaitForInterrupt returns a channel which receives SIGINT or SIGTERM
func WaitForInterrupt() chan os.Signal {
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	return sigC
}

// WithInterrupt returns a context cancelled on the first interrupt. stop
// releases the signal handler.
func WithInterrupt(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigC := WaitForInterrupt()
	go func() {
		select {
		case <-sigC:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigC)
	}()
	return ctx, cancel
}
