// Package errors provides structured error types for the runtime bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the failing operation, the lifecycle
// state at the time of failure, and a cause chain.
//
// The bridge's taxonomy maps onto four caller-visible failure classes:
//
//	AlreadyAttached  second attach while a handle is live (programmer error)
//	IllegalState     operation after Destroyed (recover by re-attaching)
//	Transport        send to the runtime failed (retry or drop)
//	Decode           malformed runtime payload (logged and swallowed)
//
// Use the convenience constructors:
//
//	err := errors.IllegalState(errors.PhaseLifecycle, "resume", "destroyed")
//	err := errors.Transport("invoke", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
