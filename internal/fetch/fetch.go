// Package fetch adapts the request client to a stateful operation that tracks
// loading, error and data for a single GET endpoint.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apifolio/folio/internal/httpclient"
)

// ErrorReporter receives the message of every failed execution. The
// application store satisfies it.
type ErrorReporter interface {
	ReportError(msg string)
}

// Options configure an Operation.
type Options[T any] struct {
	// Immediate runs one execution in the background as soon as the
	// operation is created or re-targeted.
	Immediate bool
	// OnSuccess runs after data is stored. A returned error is handled like
	// a failed request.
	OnSuccess func(T) error
	OnError   func(error)
	Errors    ErrorReporter
}

// State is the observable outcome of the most recent execution.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

// Operation is a re-runnable GET against a configured path.
type Operation[T any] struct {
	client *httpclient.Client
	opts   Options[T]

	mu       sync.RWMutex
	path     string
	inflight int
	state    State[T]

	pending sync.WaitGroup
}

// New creates an operation for path. With opts.Immediate set, an execution
// starts before New returns; its outcome is visible through State.
func New[T any](ctx context.Context, client *httpclient.Client, path string, opts Options[T]) *Operation[T] {
	op := &Operation[T]{
		client: client,
		opts:   opts,
		path:   path,
	}
	if opts.Immediate {
		op.trigger(ctx)
	}
	return op
}

// Path returns the configured target.
func (o *Operation[T]) Path() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.path
}

// SetPath re-targets the operation, re-running it when Immediate is set.
func (o *Operation[T]) SetPath(ctx context.Context, path string) {
	o.mu.Lock()
	changed := o.path != path
	o.path = path
	o.mu.Unlock()
	if changed && o.opts.Immediate {
		o.trigger(ctx)
	}
}

// State returns a copy of the current state.
func (o *Operation[T]) State() State[T] {
	o.mu.RLock()
	defer o.mu.RUnlock()
	st := o.state
	st.Loading = o.inflight > 0
	return st
}

// Execute fetches the configured path.
func (o *Operation[T]) Execute(ctx context.Context) (T, error) {
	return o.run(ctx, o.Path())
}

// ExecuteURL fetches override instead of the configured path for this call
// only. An empty override uses the configured path.
func (o *Operation[T]) ExecuteURL(ctx context.Context, override string) (T, error) {
	if override == "" {
		override = o.Path()
	}
	return o.run(ctx, override)
}

// Refetch re-runs the operation against the configured path, regardless of
// any override used earlier.
func (o *Operation[T]) Refetch(ctx context.Context) (T, error) {
	return o.Execute(ctx)
}

func (o *Operation[T]) trigger(ctx context.Context) {
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		_, _ = o.Execute(ctx)
	}()
}

func (o *Operation[T]) run(ctx context.Context, path string) (T, error) {
	var zero T

	o.mu.Lock()
	o.inflight++
	o.state.Err = nil
	o.mu.Unlock()
	// Runs on every exit, including a panicking callback.
	defer func() {
		o.mu.Lock()
		o.inflight--
		o.mu.Unlock()
	}()

	if o.client == nil {
		return zero, o.fail(errors.New("fetch: client is nil"))
	}

	result, err := httpclient.Get[T](ctx, o.client, path, nil)
	if err == nil {
		o.mu.Lock()
		o.state.Data = result
		o.state.HasData = true
		o.mu.Unlock()

		if o.opts.OnSuccess == nil {
			return result, nil
		}
		if err = o.opts.OnSuccess(result); err == nil {
			return result, nil
		}
		err = fmt.Errorf("success callback: %w", err)
	}
	return zero, o.fail(err)
}

func (o *Operation[T]) fail(err error) error {
	var zero T
	o.mu.Lock()
	o.state.Err = err
	o.state.Data = zero
	o.state.HasData = false
	o.mu.Unlock()

	if o.opts.Errors != nil {
		o.opts.Errors.ReportError(err.Error())
	}
	if o.opts.OnError != nil {
		o.opts.OnError(err)
	}
	return err
}
