package engine

import (
	"log"
	"sync"
	"time"

	"github.com/kyokaz/quickvis-go/engine/binding"
	"github.com/kyokaz/quickvis-go/engine/depsgraph"
	"github.com/kyokaz/quickvis-go/engine/profiler"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

// engine implements the Engine interface.
// Coordinates the scene registry, depsgraph, and binding manager, and runs the
// fixed-rate update loop that propagates property changes to visibility flags.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	scn scene.Scene
	dg  depsgraph.Depsgraph
	mgr binding.Manager
}

// Engine is the main entry point.
// It owns the scene, depsgraph, and binding manager, and orchestrates the
// update loop that keeps driven visibility flags in sync with their driving
// custom properties.
type Engine interface {
	// Scene returns the scene registry.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// Depsgraph returns the dependency graph.
	//
	// Returns:
	//   - depsgraph.Depsgraph: the depsgraph instance
	Depsgraph() depsgraph.Depsgraph

	// Bindings returns the binding manager.
	//
	// Returns:
	//   - binding.Manager: the binding manager instance
	Bindings() binding.Manager

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the update loop rate in ticks per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - tps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// SetTickCallback registers the function called each engine tick, after
	// the depsgraph update. Use this for host-side processing such as UI
	// refresh or input polling.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// LoadScene replaces the current scene with one loaded from a file. The
	// depsgraph is rebuilt, every driver is evaluated to settle visibility
	// flags, and the binding manager rescans its records.
	//
	// Parameters:
	//   - path: the scene file path
	//
	// Returns:
	//   - error: error if reading or decoding fails
	LoadScene(path string) error

	// SaveScene writes the current scene to a file.
	//
	// Parameters:
	//   - path: the destination file path
	//
	// Returns:
	//   - error: error if encoding or writing fails
	SaveScene(path string) error

	// Run starts the update loop and blocks until Quit is called.
	Run()

	// Start launches the update loop without blocking. Use Run for the
	// common blocking form.
	Start()

	// Quit signals the update loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Builds the scene, depsgraph, and binding manager with sensible defaults
// unless overridden. Options are applied directly to the engine struct via the
// option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, scene, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.scn == nil {
		e.scn = scene.NewScene("Scene")
	}
	if e.dg == nil {
		e.dg = depsgraph.NewDepsgraph(e.scn)
	}
	e.mgr = binding.NewManager(e.scn, e.dg)

	return e
}

func (e *engine) Scene() scene.Scene {
	return e.scn
}

func (e *engine) Depsgraph() depsgraph.Depsgraph {
	return e.dg
}

func (e *engine) Bindings() binding.Manager {
	return e.mgr
}

func (e *engine) Run() {
	e.Start()
	e.wg.Wait()
}

func (e *engine) Start() {
	if e.running {
		return
	}
	e.running = true
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
}

// Quit signals the update loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate update loop in its own goroutine.
// Each tick drains the depsgraph's dirty set and fires the tick callback, and
// listens for dynamic rate changes via tickRateChannel. Recovers from panics
// to avoid crashing the process and signals quit on recovery. Exits when the
// quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("update goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			evaluated := e.dg.Update()

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick(evaluated)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the update loop rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(tps float64) {
	if tps <= 0 {
		tps = 60
	}
	newRate := time.Second / time.Duration(tps)

	if e.running {
		// Send to channel for immediate update in running update loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) LoadScene(path string) error {
	loaded, err := scene.LoadFile(path)
	if err != nil {
		return err
	}

	e.scn.Clear()
	for _, obj := range loaded.Objects() {
		e.scn.Add(obj)
	}
	e.scn.SetName(loaded.Name())

	e.dg.Rebuild()
	e.dg.EvaluateAll()
	e.mgr.Rescan()
	return nil
}

func (e *engine) SaveScene(path string) error {
	return scene.SaveFile(e.scn, path)
}
