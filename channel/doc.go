// Package channel carries opaque string messages across the host/runtime
// boundary in both directions.
//
// The Bridge owns one sequencing goroutine, the host's designated
// event-processing context. Raw strings arriving from runtime-owned
// goroutines are queued, decoded there in arrival order, and fanned out to
// every active Subscription. Host commands travel the other way through an
// Invoker as a (target, method, payload) string triple.
//
// Delivery is deliberately lossy at the edges: no subscriber, no delivery;
// late subscribers miss history; malformed payloads are logged and dropped.
// Within those bounds each direction is FIFO and each registered
// subscription sees each event exactly once.
//
// The package-level Receive function is the process-wide static callback
// handed to runtime integration layers that can only address a single
// global name; the Dispatcher behind it is created on first use and never
// torn down.
package channel
