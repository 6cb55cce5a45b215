// Package runtimebridge hosts an embedded, externally supplied runtime
// inside a Go application and bridges the two lifecycles.
//
// The embedded runtime is heavyweight, owns its own threads and rendering
// surface, and does not share the host's termination model. This library
// reconciles the host container's lifecycle with the runtime's, and carries
// an ordered, multi-subscriber event stream across the boundary in both
// directions.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	runtimebridge/   Root package with the Engine and Surface contracts
//	├── lifecycle/   Maps host container events onto runtime transitions
//	├── handle/      The single live handle owning the runtime instance
//	├── channel/     Duplex event bridge with multi-subscriber fan-out
//	├── surface/     Attaches the runtime's surface to the host visual tree
//	├── isolation/   Deployment manifest for process-per-runtime isolation
//	├── engine/      wazero-backed reference engine implementation
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Attach a runtime and subscribe to its events:
//
//	eng, err := engine.New(ctx, engine.Config{Module: wasmBytes})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	adapter := lifecycle.NewAdapter(eng)
//	if err := adapter.Attach(ctx, container); err != nil {
//	    log.Fatal(err)
//	}
//
//	bridge := channel.NewBridge(adapter.Handle())
//	defer bridge.Close()
//	eng.SetReceiver(bridge.Receive)
//
//	sub := bridge.Subscribe()
//	defer sub.Cancel()
//	for ev := range sub.Events() {
//	    fmt.Println(ev.Name)
//	}
//
// # Lifecycle Model
//
// The runtime's state advances monotonically through
//
//	Uninitialized → Started → Resumed → Paused → Stopped → Destroyed
//
// Host events are applied idempotently and never move the state backward;
// an event that arrives ahead of order (Resume before Start) fills in the
// missing transitions rather than being dropped. After Destroyed the handle
// is dead and the host must re-attach from scratch.
//
// # Delivery Guarantees
//
// Each direction of the bridge is FIFO; no ordering holds across directions,
// nor between lifecycle calls and messages issued around the same time.
// Runtime events are fanned out exactly once to every subscription
// registered at delivery time. There is no buffering for absent subscribers
// and no replay for late ones.
//
// # Process Isolation
//
// An engine advertising CapTerminatesProcess may kill its hosting OS process
// at any time. That cannot be intercepted in-process; the isolation package
// expresses the resulting deployment precondition (run the runtime in its
// own process) as a validated manifest.
package runtimebridge
