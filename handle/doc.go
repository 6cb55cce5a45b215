// Package handle owns the single live instance of the embedded runtime.
//
// A Handle wraps an Engine and guards it against use after destruction.
// The runtime is a process-wide singleton resource: New fails while another
// handle is live, and the slot is released only by Destroy. Detaching an
// adapter without destroying leaves the runtime warm and the slot held.
package handle
