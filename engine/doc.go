// Package engine provides the reference implementation of the embedded
// runtime contract, hosting the runtime as a WebAssembly guest under
// wazero.
//
// The guest opts into lifecycle transitions by exporting hooks:
//
//	on-start, on-resume, on-pause, on-stop    niladic, all optional
//	on-focus(focused: i32)                    optional
//	on-message(ptr: i32, len: i32)            host-to-runtime messages
//	alloc(size: i32) -> i32                   allocator for inbound payloads
//
// and emits runtime-to-host strings through the imported host function
// host.emit(ptr, len). The engine never interprets either direction's
// payload; it moves bytes and reports failures.
//
// A guest that calls proc_exit (or traps with an exit) has terminated
// itself. Inside this process that only tears down the wazero sandbox; the
// engine marks itself destroyed and every later call fails with an
// illegal-state error, which is exactly how the host observes a vanished
// isolated runtime process.
package engine
