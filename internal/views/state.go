// Package views holds the client-side view models of the interview console:
// the stats dashboard, the interview session manager and the question bank.
//
// Every view owns its local cache and follows the same state machine:
// idle -> loading -> success | error. The backend response is authoritative;
// a failed request leaves the cache at its last-known-good value and emits
// exactly one toast. Close discards the cache and any result still in flight.
package views

import (
	"context"
	"errors"
	"sync"

	"interview-console/internal/api"
	"interview-console/internal/metrics"
	"interview-console/internal/notify"
)

// ErrClosed is returned by operations on a closed view
var ErrClosed = errors.New("views: view is closed")

// Status is the request state of a view
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Deps are the capabilities injected into every view
type Deps struct {
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
}

// base carries the lifecycle shared by the views. mu guards the embedding
// view's cache as well.
type base struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	gen      uint64
	closed   bool
	inflight int
	outcome  Status

	notifier notify.Notifier
	metrics  *metrics.Metrics
}

func (b *base) init(deps Deps) {
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.outcome = StatusIdle

	b.notifier = deps.Notifier
	if b.notifier == nil {
		b.notifier = notify.Discard
	}
	b.metrics = deps.Metrics
	if b.metrics == nil {
		b.metrics = metrics.NewMetrics()
	}
}

// begin marks a request in flight. The returned context is cancelled when
// either parent or the view is done; gen identifies the view generation the
// result belongs to.
func (b *base) begin(parent context.Context) (ctx context.Context, done func(), gen uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, 0, ErrClosed
	}

	b.inflight++
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(b.ctx, cancel)
	return ctx, func() { stop(); cancel() }, b.gen, nil
}

// live reports whether a result of generation gen may still be applied.
// Callers hold b.mu.
func (b *base) live(gen uint64) bool {
	return !b.closed && gen == b.gen
}

// end records the outcome of a live request. Callers hold b.mu.
func (b *base) end(err error) {
	if b.inflight > 0 {
		b.inflight--
	}
	if err != nil {
		b.outcome = StatusError
		return
	}
	b.outcome = StatusSuccess
}

// Status returns the current request state of the view
func (b *base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statusLocked()
}

func (b *base) statusLocked() Status {
	if b.inflight > 0 {
		return StatusLoading
	}
	return b.outcome
}

// close bumps the generation and cancels everything in flight. Callers hold
// b.mu and reset their own cache.
func (b *base) close() {
	if b.closed {
		return
	}
	b.closed = true
	b.gen++
	b.inflight = 0
	b.outcome = StatusIdle
	b.cancel()
}

func (b *base) notify(ctx context.Context, toast notify.Toast) {
	b.metrics.IncrementNotificationsSent()
	b.notifier.Notify(ctx, toast)
}

// errorDetail is the user-facing part of a request failure
func errorDetail(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Detail()
	}
	if err != nil {
		return err.Error()
	}
	return "Unknown error"
}
