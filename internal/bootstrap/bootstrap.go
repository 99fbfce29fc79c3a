// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Runner is one long-running part of the application. It must return when
// its context is cancelled.
type Runner func(ctx context.Context) error

// App runs several Runners concurrently and stops them all when one fails
// or an OS signal arrives.
type App struct {
	runners []Runner
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Add registers a Runner. Not safe to call after Run.
func (a *App) Add(run Runner) {
	a.runners = append(a.runners, run)
}

// Run starts every registered Runner and blocks until they all return.
// The shared context is cancelled on SIGINT/SIGTERM or on the first Runner
// error; context.Canceled results from the shutdown itself are dropped.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, run := range a.runners {
		wg.Add(1)
		go func(run Runner) {
			defer wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				cancel()
			}
		}(run)
	}
	wg.Wait()

	return errors.Join(errs...)
}
