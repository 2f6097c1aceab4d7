package engine

import (
	"time"

	"github.com/kyokaz/quickvis-go/engine/depsgraph"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the update loop rate in ticks per second.
// The depsgraph update and tick callback run at this rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - tps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		if tps <= 0 {
			tps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(tps)
	}
}

// WithScene sets a pre-built scene for the engine to use rather than allowing
// the engine to create an empty one internally.
//
// Parameters:
//   - s: a pre-configured Scene instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scn = s
	}
}

// WithDepsgraph sets a pre-built depsgraph for the engine to use. The
// depsgraph must be attached to the same scene passed via WithScene.
//
// Parameters:
//   - dg: a pre-configured Depsgraph instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDepsgraph(dg depsgraph.Depsgraph) EngineBuilderOption {
	return func(e *engine) {
		e.dg = dg
	}
}
