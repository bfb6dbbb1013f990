// Package fetchstate holds the data, loading flag and error of one asynchronous producer.
//
// The transitions are a pure reducer over State. Hook binds a producer to the reducer
// and schedules it on a goroutine.
package fetchstate

// Status is the coarse phase of a State.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of a fetch. Data is only meaningful when HasData is true.
// An empty Error means no error.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Error   string
}

// Status reports the phase. A call in flight is loading even if an older result is held.
func (s State[T]) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Error != "":
		return StatusError
	case s.HasData:
		return StatusSuccess
	default:
		return StatusIdle
	}
}

// EventKind identifies a transition.
type EventKind int

const (
	EventStarted EventKind = iota + 1
	EventSucceeded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one transition fed to Reduce.
type Event[T any] struct {
	Kind    EventKind
	Data    T
	Message string
}

func Started[T any]() Event[T] {
	return Event[T]{Kind: EventStarted}
}

func Succeeded[T any](data T) Event[T] {
	return Event[T]{Kind: EventSucceeded, Data: data}
}

func Failed[T any](message string) Event[T] {
	return Event[T]{Kind: EventFailed, Message: message}
}

// Reduce applies e to s and returns the next state.
// A failure keeps the previous data. Unknown events leave s unchanged.
func Reduce[T any](s State[T], e Event[T]) State[T] {
	switch e.Kind {
	case EventStarted:
		s.Loading = true
		s.Error = ""
	case EventSucceeded:
		s.Data = e.Data
		s.HasData = true
		s.Loading = false
		s.Error = ""
	case EventFailed:
		s.Loading = false
		s.Error = e.Message
	}
	return s
}
