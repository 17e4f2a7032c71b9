package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Pool manages background goroutines and long-running servers and ensures
// graceful shutdown
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	errs   chan error
	logger *slog.Logger

	// stopBudget is set by Shutdown before the context is cancelled
	stopBudget time.Duration
}

// NewPool creates a new worker pool
func NewPool(logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		errs:   make(chan error, 8),
		logger: logger,
	}
}

// Submit adds a task to the pool and tracks it. The task must return once
// its context is cancelled.
func (p *Pool) Submit(task func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task(p.ctx)
	}()
}

// SubmitServer runs serve until the pool shuts down, then calls stop.
// A serve error other than http.ErrServerClosed is reported on Errors.
func (p *Pool) SubmitServer(name string, serve func() error, stop func(ctx context.Context) error) {
	p.wg.Add(2)

	go func() {
		defer p.wg.Done()
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("❌ [Worker] Server failed", "server", name, "error", err)
			select {
			case p.errs <- err:
			default:
			}
		}
	}()

	go func() {
		defer p.wg.Done()
		<-p.ctx.Done()

		// The pool context is already cancelled; stop gets its own budget
		stopCtx, cancel := context.WithTimeout(context.Background(), p.stopBudget)
		defer cancel()

		if err := stop(stopCtx); err != nil {
			p.logger.Warn("⚠️ [Worker] Server did not stop cleanly", "server", name, "error", err)
			return
		}
		p.logger.Info("✅ [Worker] Server stopped", "server", name)
	}()
}

// Errors delivers failures of servers started with SubmitServer
func (p *Pool) Errors() <-chan error {
	return p.errs
}

// Context returns the pool's context
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Shutdown signals all workers to stop and waits up to timeout for them.
// It reports whether every worker finished in time.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	// Signal all workers to stop
	p.stopBudget = timeout
	p.cancel()

	// Wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
		return true
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
		return false
	}
}
