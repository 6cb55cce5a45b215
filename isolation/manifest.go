package isolation

import (
	"os"

	"gopkg.in/yaml.v3"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
)

// ProcessMode says which OS process hosts the embedded runtime.
type ProcessMode string

const (
	// ProcessIsolated runs the runtime in its own process. Required for
	// engines that may terminate their hosting process.
	ProcessIsolated ProcessMode = "isolated"

	// ProcessShared runs the runtime inside the host's primary process.
	// Only safe for engines that never self-terminate.
	ProcessShared ProcessMode = "shared"
)

// Manifest is the deployment configuration for one embedded runtime.
//
//	runtime:
//	  name: media-engine
//	  process_mode: isolated
type Manifest struct {
	Runtime RuntimeConfig `yaml:"runtime"`
}

// RuntimeConfig describes how the runtime component is deployed.
type RuntimeConfig struct {
	Name        string      `yaml:"name"`
	ProcessMode ProcessMode `yaml:"process_mode"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read manifest", err)
	}
	return Parse(data)
}

// Parse parses manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Config("parse manifest", err)
	}
	if m.Runtime.ProcessMode == "" {
		m.Runtime.ProcessMode = ProcessShared
	}
	return &m, nil
}

// Validate checks the manifest against the engine's advertised
// capabilities. An engine that may terminate its own process is only
// deployable isolated: in a shared process its self-termination would be
// indistinguishable from a host crash.
func (m *Manifest) Validate(caps runtimebridge.Capability) error {
	switch m.Runtime.ProcessMode {
	case ProcessIsolated, ProcessShared:
	default:
		return errors.InvalidInput(errors.PhaseConfig,
			"unknown process_mode "+string(m.Runtime.ProcessMode))
	}

	if caps.Has(runtimebridge.CapTerminatesProcess) && m.Runtime.ProcessMode != ProcessIsolated {
		return errors.NotIsolated(
			"engine may terminate its hosting process; set runtime.process_mode: isolated")
	}
	return nil
}
