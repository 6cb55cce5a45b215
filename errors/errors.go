package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseLifecycle Phase = "lifecycle" // adapter transitions
	PhaseTransport Phase = "transport" // host to runtime sends
	PhaseDecode    Phase = "decode"    // runtime to host payloads
	PhaseSurface   Phase = "surface"   // surface attach/detach
	PhaseEngine    Phase = "engine"    // embedded runtime operations
	PhaseConfig    Phase = "config"    // deployment manifest
)

// Kind categorizes the error
type Kind string

const (
	KindAlreadyAttached Kind = "already_attached"
	KindIllegalState    Kind = "illegal_state"
	KindTransportFailed Kind = "transport_failed"
	KindInvalidData     Kind = "invalid_data"
	KindNotInitialized  Kind = "not_initialized"
	KindInvalidInput    Kind = "invalid_input"
	KindNotIsolated     Kind = "not_isolated"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string // operation that failed, e.g. "resume"
	State  string // lifecycle state at the time of failure, if known
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.State != "" {
		b.WriteString(" (state ")
		b.WriteString(e.State)
		b.WriteByte(')')
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two bridge errors match when
// their Phase and Kind agree; Op, State and Detail are context, not identity.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for the bridge's error taxonomy

// AlreadyAttached is returned when a second attach is requested while a
// runtime handle is still live.
func AlreadyAttached(detail string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindAlreadyAttached,
		Detail: detail,
	}
}

// IllegalState is returned for operations requested after Destroyed (or
// before the component they need exists). Recoverable by re-attaching.
func IllegalState(phase Phase, op, state string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindIllegalState,
		Op:    op,
		State: state,
	}
}

// Transport wraps a failed send to the runtime. The caller may retry or
// drop; the bridge itself stays usable.
func Transport(op string, cause error) *Error {
	return &Error{
		Phase: PhaseTransport,
		Kind:  KindTransportFailed,
		Op:    op,
		Cause: cause,
	}
}

// Decode describes a malformed runtime-to-host payload. Decode errors are
// logged and discarded by the bridge, never surfaced to subscribers.
func Decode(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotIsolated is returned when deployment configuration places an engine
// that may terminate its process inside the host's primary process.
func NotIsolated(detail string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindNotIsolated,
		Detail: detail,
	}
}

// Engine wraps a failure reported by the embedded runtime itself
func Engine(op string, cause error) *Error {
	return &Error{
		Phase: PhaseEngine,
		Kind:  KindInvalidData,
		Op:    op,
		Cause: cause,
	}
}

// Config wraps a deployment manifest loading or parsing failure
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with phase and kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Matchers for the taxonomy checks callers branch on

// IsAlreadyAttached reports whether err is an already-attached error.
func IsAlreadyAttached(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == KindAlreadyAttached
}

// IsIllegalState reports whether err is an illegal-state error.
func IsIllegalState(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == KindIllegalState
}

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == KindTransportFailed
}
