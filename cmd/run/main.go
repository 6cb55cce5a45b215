package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/channel"
	"github.com/wippyai/runtime-bridge/engine"
	"github.com/wippyai/runtime-bridge/isolation"
	"github.com/wippyai/runtime-bridge/lifecycle"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to guest wasm file (omit for an inert engine)")
		manifest    = flag.String("manifest", "", "Path to deployment manifest (yaml)")
		name        = flag.String("name", "engine", "Engine name")
		wasi        = flag.Bool("wasi", false, "Mount WASI preview1 for the guest")
		send        = flag.String("send", "", "Payload to send to the runtime after resume")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "interactive mode needs a terminal")
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(log)
	}

	eng, err := buildEngine(*wasmFile, *name, *wasi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *manifest != "" {
		m, err := isolation.Load(*manifest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := m.Validate(eng.Capabilities()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if err := runInteractive(eng, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(eng, log, *send); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildEngine(wasmFile, name string, wasi bool) (runtimebridge.Engine, error) {
	if wasmFile == "" {
		return engine.NewNop(), nil
	}
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read wasm file: %w", err)
	}
	return engine.New(context.Background(), engine.Config{
		Module: data,
		Name:   name,
		WASI:   wasi,
	})
}

// run drives one full lifecycle pass and prints every runtime event seen
// along the way.
func run(eng runtimebridge.Engine, log *zap.Logger, send string) error {
	ctx := context.Background()

	adapter := lifecycle.NewAdapter(eng, lifecycle.WithLogger(log))
	container := lifecycle.NewManualContainer()
	if err := adapter.Attach(ctx, container); err != nil {
		return err
	}

	bridge := channel.NewBridge(adapter.Handle(), channel.WithLogger(log))
	defer bridge.Close()

	channel.DefaultDispatcher().Bind(bridge)
	defer channel.DefaultDispatcher().Unbind(bridge)
	eng.SetReceiver(channel.Receive)

	sub := bridge.Subscribe()
	defer sub.Cancel()
	go func() {
		for ev := range sub.Events() {
			fmt.Printf("event: %s %s\n", ev.Name, string(ev.Data))
		}
	}()

	fmt.Printf("state: %s\n", adapter.State())
	container.Emit(lifecycle.EventResume)
	fmt.Printf("state: %s\n", adapter.State())

	if send != "" {
		if err := bridge.SendToRuntime(ctx, "app", "handle-message", send); err != nil {
			fmt.Printf("send failed: %v\n", err)
		}
	}

	// Give asynchronous fan-out a moment before winding down.
	time.Sleep(200 * time.Millisecond)

	for _, ev := range []lifecycle.HostEvent{lifecycle.EventPause, lifecycle.EventStop, lifecycle.EventDestroy} {
		container.Emit(ev)
		fmt.Printf("state: %s\n", adapter.State())
	}
	return nil
}
