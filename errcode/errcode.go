// Package errcode defines the discrete failure codes produced by the
// envelope and queue packages. Every failure path in those packages returns
// one of these codes wrapped in an *Error, so callers can either match on
// the code directly or use errors.Is/errors.As against the package-level
// sentinels exposed by envelope and queue.
package errcode

import (
	"errors"
	"fmt"
)

// Code identifies the class of failure. The numeric values are not part
// of the contract; only the identity (via errors.Is) and the String()
// text are.
type Code int

const (
	// NullParam indicates a required argument was nil, empty or
	// otherwise invalid (for example a queue capacity below 1). This is
	// a programming error: it is never retried by the library.
	NullParam Code = iota + 1

	// Allocation indicates a resource-exhaustion failure: an oversize
	// payload or a failed allocation. Transient; callers may retry.
	Allocation

	// QueueFull indicates a non-blocking push found the queue at
	// capacity.
	QueueFull

	// QueueEmpty indicates a non-blocking pop found the queue empty.
	QueueEmpty

	// Shutdown indicates the queue has entered its terminal shutdown
	// state. Callers must cease use of the queue.
	Shutdown

	// Timeout indicates a timed operation's deadline elapsed before the
	// operation could complete.
	Timeout

	// NotFound is reserved for a higher routing layer that composes
	// multiple queues by topic; the envelope and queue packages never
	// produce it. internal/config uses it when a config file cannot be
	// read.
	NotFound

	// InvalidTopic indicates a topic string that does not fit the
	// envelope's length bound.
	InvalidTopic

	// ThreadCreate is reserved for a higher layer that spawns worker
	// goroutines; it is never produced by this module.
	ThreadCreate

	// MutexInit indicates construction-time synchronization-primitive
	// setup failed. Fatal: no queue is produced.
	MutexInit

	// CondInit indicates construction-time condition-variable setup
	// failed. Fatal: no queue is produced.
	CondInit
)

// String returns the human-readable name for the code, matching the
// semantics of the source library's pubsub_error_string table.
func (c Code) String() string {
	switch c {
	case NullParam:
		return "null parameter"
	case Allocation:
		return "allocation failed"
	case QueueFull:
		return "queue is full"
	case QueueEmpty:
		return "queue is empty"
	case Shutdown:
		return "queue is shut down"
	case Timeout:
		return "operation timed out"
	case NotFound:
		return "not found"
	case InvalidTopic:
		return "invalid topic name"
	case ThreadCreate:
		return "failed to create thread"
	case MutexInit:
		return "failed to initialize mutex"
	case CondInit:
		return "failed to initialize condition variable"
	default:
		return "unknown error"
	}
}

// Error wraps a Code with a contextual message. It implements the error
// interface and a custom Is so a caller can do either:
//
//	if code, ok := errcode.CodeOf(err); ok && code == errcode.Shutdown { ... }
//	if errors.Is(err, queue.ErrShutdown) { ... }
type Error struct {
	code Code
	msg  string
}

// New constructs an *Error for the given code with a contextual message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Errorf constructs an *Error for the given code using fmt-style
// formatting for the message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Code returns the discrete failure code carried by this error.
func (e *Error) Code() Code {
	return e.code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.msg == "" {
		return e.code.String()
	}

	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Is reports whether target is an *Error with the same Code, so that
// errors.Is(err, errcode.New(errcode.Shutdown, "")) works regardless of
// message text.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.code == other.code
}

// CodeOf extracts the Code from err if it is (or wraps) an *Error,
// returning ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.code, true
}
