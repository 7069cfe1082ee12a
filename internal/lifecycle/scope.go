// Package lifecycle provides a scoped resource guard used across scene
// transitions: everything registered on a Scope is released exactly once, in
// reverse registration order, when the Scope closes.
package lifecycle

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Scope owns a dispose list and a context that is cancelled on Close.
type Scope struct {
	name string

	mu       sync.Mutex
	closers  []func() error
	closed   bool
	closeErr error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a root scope derived from parent.
func New(parent context.Context, name string) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{name: name, ctx: ctx, cancel: cancel}
}

// Name returns the scope label.
func (s *Scope) Name() string {
	return s.name
}

// Context is cancelled as soon as Close begins.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Defer registers fn to run on Close. If the scope is already closed fn runs
// immediately.
func (s *Scope) Defer(fn func()) {
	s.DeferErr(func() error {
		fn()
		return nil
	})
}

// DeferErr registers a cleanup that may fail. Errors are joined into the
// result of Close.
func (s *Scope) DeferErr(fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = fn()
		return
	}
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// Add registers an io.Closer.
func (s *Scope) Add(c io.Closer) {
	if c == nil {
		return
	}
	s.DeferErr(c.Close)
}

// Child creates a nested scope that closes with its parent, or earlier on its
// own.
func (s *Scope) Child(name string) *Scope {
	child := New(s.ctx, name)
	s.DeferErr(child.Close)
	return child
}

// Go runs fn on a goroutine tracked by the scope. Close cancels the scope
// context and waits for every tracked goroutine to return.
func (s *Scope) Go(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// Close cancels the context, waits for goroutines started with Go, then runs
// the dispose list last-in first-out. Repeated calls return the first result.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	s.mu.Lock()
	s.closeErr = err
	s.mu.Unlock()
	return err
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
