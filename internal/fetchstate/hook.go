package fetchstate

import (
	"context"
	"log/slog"
	"sync"
)

const (
	failurePrefix  = "Failed to retrieve data: "
	unknownFailure = "Unknown error"
)

// Producer fetches the data held by a Hook.
type Producer[T any] func(ctx context.Context) (T, error)

// WithParam binds p to a one-argument producer.
func WithParam[P, T any](fn func(ctx context.Context, p P) (T, error), p P) Producer[T] {
	return func(ctx context.Context) (T, error) {
		return fn(ctx, p)
	}
}

// Hook runs a producer and tracks its State.
//
// Calls are neither queued nor coalesced: every Refetch starts a new producer call and
// whichever resolves last determines the final state.
type Hook[T any] struct {
	producer Producer[T]
	logger   *slog.Logger

	// notifyMu serializes transitions so subscribers observe them in order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State[T]
	activated bool
	subs      map[int]func(State[T])
	nextSub   int

	inflight sync.WaitGroup
}

// Option configures a Hook.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for producer failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an idle Hook. Nothing runs until Activate or Refetch.
func New[T any](producer Producer[T], opts ...Option) *Hook[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Hook[T]{
		producer: producer,
		logger:   o.logger,
		subs:     make(map[int]func(State[T])),
	}
}

// State returns the current snapshot.
func (h *Hook[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Activate fetches on the first call only and reports whether it started a fetch.
func (h *Hook[T]) Activate(ctx context.Context) bool {
	h.mu.Lock()
	if h.activated {
		h.mu.Unlock()
		return false
	}
	h.activated = true
	h.mu.Unlock()

	h.Refetch(ctx)
	return true
}

// Refetch starts a producer call. Loading is already true when it returns.
func (h *Hook[T]) Refetch(ctx context.Context) {
	h.mu.Lock()
	h.activated = true
	h.mu.Unlock()

	h.apply(Started[T]())

	h.inflight.Add(1)
	go h.run(ctx)
}

func (h *Hook[T]) run(ctx context.Context) {
	defer h.inflight.Done()

	data, panicked, err := h.call(ctx)
	switch {
	case panicked:
		h.logger.Error("fetch producer panicked")
		h.apply(Failed[T](failurePrefix + unknownFailure))
	case err != nil:
		h.logger.Warn("fetch failed", slog.String("error", err.Error()))
		h.apply(Failed[T](failurePrefix + err.Error()))
	default:
		h.apply(Succeeded(data))
	}
}

func (h *Hook[T]) call(ctx context.Context) (data T, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
	}()
	data, err = h.producer(ctx)
	return data, false, err
}

// Wait blocks until every producer call started so far has resolved.
func (h *Hook[T]) Wait() {
	h.inflight.Wait()
}

// Subscribe registers fn to receive every state after a transition.
// fn runs synchronously and must not call Activate or Refetch on the same hook.
func (h *Hook[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hook[T]) apply(e Event[T]) {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.mu.Lock()
	h.state = Reduce(h.state, e)
	next := h.state
	subs := make([]func(State[T]), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
