package model

// Status distinguishes an in-flight fetch from missing data and from a failed fetch.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusAbsent  Status = "absent"
	StatusFailed  Status = "failed"
)

// Result carries a value together with how it was obtained.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func Ready[T any](value T) Result[T] {
	return Result[T]{Status: StatusReady, Value: value}
}

func Pending[T any]() Result[T] {
	return Result[T]{Status: StatusPending}
}

func Absent[T any]() Result[T] {
	return Result[T]{Status: StatusAbsent}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// OK reports whether the value is usable.
func (r Result[T]) OK() bool {
	return r.Status == StatusReady
}
