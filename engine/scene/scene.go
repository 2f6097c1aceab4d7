package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/driver"
	"github.com/kyokaz/quickvis-go/engine/object"
)

// Scene is the host scene graph: a registry of Objects indexed by ID and by
// name, with monotonic ID assignment. The scene owns the objects and their
// custom properties; driver bookkeeping layered on top (the depsgraph and the
// binding manager) owns only association metadata.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Count returns the number of Objects in the registry.
	//
	// Returns:
	//   - int: count of registered Objects
	Count() int

	// Add adds an Object to the scene. Objects without an ID are assigned the
	// next free one; an empty or already-taken name is replaced with a unique
	// one (numeric ".001" style suffix).
	//
	// Parameters:
	//   - obj: the Object to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj object.Object) uint64

	// Get retrieves an Object by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - object.Object: the object or nil
	Get(id uint64) object.Object

	// GetByName retrieves an Object by its scene-unique name.
	// Returns nil if not found.
	//
	// Parameters:
	//   - name: the object name
	//
	// Returns:
	//   - object.Object: the object or nil
	GetByName(name string) object.Object

	// Remove removes an Object from the registry by ID. The object's drivers
	// leave the scene with it; drivers on other objects that referenced it
	// will fail to resolve and leave their channels untouched.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects from the scene.
	Clear()

	// Objects returns all registered Objects in ascending ID order.
	//
	// Returns:
	//   - []object.Object: the scene's objects
	Objects() []object.Object

	// CreateEmpty creates a new empty object (no geometry, property carrier
	// only), adds it to the scene, and returns it.
	//
	// Parameters:
	//   - name: the empty's name; uniquified if taken
	//
	// Returns:
	//   - object.Object: the newly created empty
	CreateEmpty(name string) object.Object

	// PropertyValue resolves a custom property on the object with the given
	// ID. Implements driver.PropertyResolver so drivers evaluate against the
	// live registry.
	//
	// Parameters:
	//   - id: the holder object's ID
	//   - property: the custom property name
	//
	// Returns:
	//   - common.Value: the property value
	//   - bool: false if the object or property does not exist
	PropertyValue(id uint64, property string) (common.Value, bool)
}

type scn struct {
	mu *sync.RWMutex

	name string

	registry map[uint64]object.Object
	byName   map[string]uint64
	nextID   uint64
}

var _ Scene = &scn{}
var _ driver.PropertyResolver = &scn{}

// NewScene creates a new Scene with the given name and options.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scn{
		mu:       &sync.RWMutex{},
		name:     name,
		registry: make(map[uint64]object.Object),
		byName:   make(map[string]uint64),
		nextID:   1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scn) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scn) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scn) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scn) Add(obj object.Object) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

// addLocked registers an object, assigning an ID and a unique name as needed.
// Caller must hold s.mu write lock.
func (s *scn) addLocked(obj object.Object) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}

	obj.SetName(s.uniqueNameLocked(obj.Name(), obj.Kind()))

	s.registry[obj.ID()] = obj
	s.byName[obj.Name()] = obj.ID()
	return obj.ID()
}

// uniqueNameLocked resolves name collisions the way the host application does:
// an empty name falls back to the kind, a taken name gets a ".001" style
// suffix. Caller must hold s.mu write lock.
func (s *scn) uniqueNameLocked(name string, kind object.Kind) string {
	name = common.Coalesce(name, string(kind))
	if _, taken := s.byName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := s.byName[candidate]; !taken {
			return candidate
		}
	}
}

func (s *scn) Get(id uint64) object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scn) GetByName(name string) object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil
	}
	return s.registry[id]
}

func (s *scn) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.registry[id]
	if !exists {
		return
	}
	delete(s.registry, id)
	delete(s.byName, obj.Name())
}

func (s *scn) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]object.Object)
	s.byName = make(map[string]uint64)
}

func (s *scn) Objects() []object.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]object.Object, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	// Ascending ID order keeps panel listings stable across calls.
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *scn) CreateEmpty(name string) object.Object {
	empty := object.NewObject(
		object.WithName(name),
		object.WithKind(object.KindEmpty),
	)
	s.Add(empty)
	return empty
}

func (s *scn) PropertyValue(id uint64, property string) (common.Value, bool) {
	s.mu.RLock()
	obj, exists := s.registry[id]
	s.mu.RUnlock()
	if !exists {
		return common.Value{}, false
	}
	return obj.Property(property)
}
