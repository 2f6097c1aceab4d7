package depsgraph

import (
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/kyokaz/quickvis-go/engine/driver"
	"github.com/kyokaz/quickvis-go/engine/object"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

// depKey addresses one custom property on one holder object.
type depKey struct {
	holderID uint64
	property string
}

// depEntry is one driver that reads the keyed property.
type depEntry struct {
	drivenID uint64
	d        driver.Driver
}

// Depsgraph tracks which drivers read which custom properties and propagates
// property changes to the driven objects' visibility flags. The index is
// rebuilt from the scene's drivers on demand; change propagation is
// tag-then-update: mutations call Tag, and the next Update evaluates every
// driver dependent on a tagged property.
// Thread-safe for concurrent access.
type Depsgraph interface {
	// Scene returns the scene this depsgraph evaluates against.
	//
	// Returns:
	//   - scene.Scene: the attached scene
	Scene() scene.Scene

	// Rebuild rescans the scene's drivers into the dependency index. Call
	// after structurally changing drivers (add/remove/retarget); plain
	// property value changes only need Tag.
	Rebuild()

	// Tag marks a custom property dirty so its dependent drivers are
	// re-evaluated on the next Update.
	//
	// Parameters:
	//   - holderID: the property holder's object ID
	//   - property: the custom property name
	Tag(holderID uint64, property string)

	// Update evaluates all drivers dependent on tagged properties and writes
	// the results to the driven objects' visibility flags, then clears the
	// tags. Drivers whose targets no longer resolve are skipped, leaving the
	// driven channel unchanged.
	//
	// Returns:
	//   - int: the number of drivers evaluated
	Update() int

	// EvaluateAll evaluates every driver in the scene regardless of tags.
	// Used after loading a scene file to settle all visibility flags.
	//
	// Returns:
	//   - int: the number of drivers evaluated
	EvaluateAll() int

	// DependentObjects returns the objects whose visibility is driven by the
	// given custom property, in ascending ID order.
	//
	// Parameters:
	//   - holderID: the property holder's object ID
	//   - property: the custom property name
	//
	// Returns:
	//   - []object.Object: the dependent driven objects
	DependentObjects(holderID uint64, property string) []object.Object
}

type depsgraph struct {
	mu *sync.RWMutex

	scn   scene.Scene
	index map[depKey][]depEntry
	dirty map[depKey]struct{}

	// evalPool manages a bounded set of reusable goroutines for driver
	// evaluation fan-out. Workers persist across updates; a WaitGroup provides
	// the per-update barrier.
	evalPool    worker.DynamicWorkerPool
	evalWorkers int
}

var _ Depsgraph = &depsgraph{}

// NewDepsgraph creates a Depsgraph attached to the given scene and builds the
// initial dependency index. Panics if the scene is nil.
//
// Parameters:
//   - s: the scene to evaluate against (must not be nil)
//   - options: functional options to further configure the depsgraph
//
// Returns:
//   - Depsgraph: the newly created depsgraph
func NewDepsgraph(s scene.Scene, options ...DepsgraphBuilderOption) Depsgraph {
	if s == nil {
		panic("depsgraph: NewDepsgraph requires a non-nil Scene")
	}

	dg := &depsgraph{
		mu:          &sync.RWMutex{},
		scn:         s,
		index:       make(map[depKey][]depEntry),
		dirty:       make(map[depKey]struct{}),
		evalWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(dg)
	}

	// Initialize the pool after options so WithEvalWorkers can override the
	// default. Queue size of 256 accommodates typical driver counts with headroom.
	dg.evalPool = worker.NewDynamicWorkerPool(dg.evalWorkers, 256, 1*time.Second)

	dg.Rebuild()
	return dg
}

func (dg *depsgraph) Scene() scene.Scene {
	return dg.scn
}

func (dg *depsgraph) Rebuild() {
	index := make(map[depKey][]depEntry)
	for _, obj := range dg.scn.Objects() {
		for _, d := range obj.Drivers() {
			for _, v := range d.Variables() {
				property, ok := driver.PropertyFromDataPath(v.DataPath)
				if !ok {
					log.Printf("depsgraph: skipping variable %q on object %d: malformed data path %q", v.Name, obj.ID(), v.DataPath)
					continue
				}
				key := depKey{holderID: v.TargetID, property: property}
				index[key] = append(index[key], depEntry{drivenID: obj.ID(), d: d})
			}
		}
	}

	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.index = index
}

func (dg *depsgraph) Tag(holderID uint64, property string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.dirty[depKey{holderID: holderID, property: property}] = struct{}{}
}

func (dg *depsgraph) Update() int {
	dg.mu.Lock()
	if len(dg.dirty) == 0 {
		dg.mu.Unlock()
		return 0
	}

	// Collect affected drivers, deduplicated: a driver reading two dirty
	// properties still evaluates once.
	affected := make(map[driver.Driver]uint64)
	for key := range dg.dirty {
		for _, entry := range dg.index[key] {
			affected[entry.d] = entry.drivenID
		}
	}
	dg.dirty = make(map[depKey]struct{})
	dg.mu.Unlock()

	return dg.evaluate(affected)
}

func (dg *depsgraph) EvaluateAll() int {
	affected := make(map[driver.Driver]uint64)
	for _, obj := range dg.scn.Objects() {
		for _, d := range obj.Drivers() {
			affected[d] = obj.ID()
		}
	}

	dg.mu.Lock()
	dg.dirty = make(map[depKey]struct{})
	dg.mu.Unlock()

	return dg.evaluate(affected)
}

// evaluate fans driver evaluation out to the worker pool and writes results to
// the driven objects. Each task resolves against the live scene; a driver whose
// target vanished reports an error and leaves its channel untouched.
func (dg *depsgraph) evaluate(affected map[driver.Driver]uint64) int {
	if len(affected) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	taskID := 0
	for d, drivenID := range affected {
		driven := dg.scn.Get(drivenID)
		if driven == nil || !driven.Enabled() {
			continue
		}

		wg.Add(1)
		dCap := d // capture for closure
		drivenCap := driven
		id := taskID
		taskID++
		dg.evalPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()

				hidden, err := dCap.Evaluate(dg.scn)
				if err != nil {
					log.Printf("depsgraph: driver on %q (%s) not evaluated: %v", drivenCap.Name(), dCap.Channel(), err)
					return nil, err
				}
				drivenCap.SetHidden(dCap.Channel(), hidden)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return taskID
}

func (dg *depsgraph) DependentObjects(holderID uint64, property string) []object.Object {
	dg.mu.RLock()
	entries := dg.index[depKey{holderID: holderID, property: property}]
	ids := make([]uint64, 0, len(entries))
	seen := make(map[uint64]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.drivenID]; dup {
			continue
		}
		seen[entry.drivenID] = struct{}{}
		ids = append(ids, entry.drivenID)
	}
	dg.mu.RUnlock()

	out := make([]object.Object, 0, len(ids))
	for _, id := range ids {
		if obj := dg.scn.Get(id); obj != nil {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
