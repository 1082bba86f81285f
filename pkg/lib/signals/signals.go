package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// WithShutdown returns a child of parent that is cancelled on SIGTERM or
// SIGINT. A running optimization observes the cancellation at its next
// batch boundary, so the first signal only asks for a stop. A second
// signal terminates the program with exit code 1. The returned cancel
// func stops listening for signals.
func WithShutdown(parent context.Context, logger logrus.FieldLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)

	go func() {
		select {
		case sig := <-c:
			logger.WithField("signal", sig.String()).Warn("stopping at the next batch boundary, signal again to exit immediately")
			cancel()
		case <-ctx.Done():
			signal.Stop(c)
			return
		}
		<-c
		os.Exit(1) // second signal. Exit directly.
	}()

	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}
