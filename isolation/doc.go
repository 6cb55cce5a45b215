// Package isolation expresses the process boundary the bridge depends on
// but cannot enforce.
//
// Some embedded runtimes terminate their own OS process as their normal
// shutdown path. Nothing in-process can intercept that; the only defense is
// deployment: host such a runtime in a process separate from the host's
// primary one, so its termination tears down only itself. This package
// models that rule as a validated manifest rather than an unstated
// convention.
//
// Recovery is deliberately manual. When the isolated process disappears,
// the host observes the runtime handle as destroyed on next access and
// must re-attach from scratch; nothing here resurrects the runtime
// automatically.
package isolation
