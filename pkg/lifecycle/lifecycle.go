// Package lifecycle coordinates startup and shutdown hooks for the
// subsystems a batch run depends on (database pool, archive container).
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Coordinator runs the startup hooks of a batch run's subsystems and
// releases their shutdown hooks when the run ends or is interrupted.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	starting sync.WaitGroup
	stopping sync.WaitGroup
}

// New creates a Coordinator whose context is derived from parent.
// Cancelling parent (for example on SIGINT) releases shutdown hooks
// the same way Shutdown does.
func New(parent context.Context) *Coordinator {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

// WaitForStartup blocks until every startup hook has returned. It gives up
// early when the coordinator is cancelled, so an interrupt during a slow
// database ping does not hang the run.
func (c *Coordinator) WaitForStartup() error {
	if !wait(&c.starting, c.ctx.Done()) {
		return fmt.Errorf("startup interrupted: %w", c.ctx.Err())
	}
	return nil
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	if !wait(&c.stopping, timer.C) {
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
	return nil
}

// wait reports whether wg finished before stop fired. Hooks that already
// finished win over a stop that fired at the same time.
func wait[T any](wg *sync.WaitGroup, stop <-chan T) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-stop:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}
