package views

// Status is the lifecycle of one server read.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loadable holds the latest result of a read. A failed refetch keeps the
// previous Value so the screen can still show it.
type Loadable[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Begin marks a read as in flight.
func (l *Loadable[T]) Begin() {
	l.Status = StatusPending
	l.Err = nil
}

func (l *Loadable[T]) Resolve(v T) {
	l.Status = StatusReady
	l.Value = v
	l.Err = nil
}

func (l *Loadable[T]) Fail(err error) {
	l.Status = StatusFailed
	l.Err = err
}

func (l Loadable[T]) Ready() bool { return l.Status == StatusReady }

// Map derives a Loadable of another type carrying the same status and error.
func Map[T, U any](l Loadable[T], fn func(T) U) Loadable[U] {
	return Loadable[U]{Status: l.Status, Value: fn(l.Value), Err: l.Err}
}
