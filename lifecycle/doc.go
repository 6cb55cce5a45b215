// Package lifecycle reconciles the host container's lifecycle with the
// embedded runtime's.
//
// The two sides do not share a termination model: the host delivers
// Start/Resume/Pause/Stop/Destroy signals that may skip or repeat, while
// the runtime expects its transitions exactly once and in order. The
// Adapter sits between them, clamping host events onto the monotone state
// machine
//
//	Uninitialized → Started → Resumed → Paused → Stopped → Destroyed
//
// so that for any host event sequence the resulting state is the furthest
// state the sequence implies, and no runtime call is issued out of order
// or twice.
package lifecycle
