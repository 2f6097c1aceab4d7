package binding

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/depsgraph"
	"github.com/kyokaz/quickvis-go/engine/driver"
	"github.com/kyokaz/quickvis-go/engine/object"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

// ControllerPrefix names auto-created controller empties; the property name is
// appended.
const ControllerPrefix = "Visibility_Controller_"

// Binding links a driven object's visibility to a driver source's custom
// property, together with the per-object value slot: the property value at
// which this driven object is the visible one.
type Binding struct {
	// SourceID is the property holder's object ID.
	SourceID uint64
	// DrivenID is the driven object's ID.
	DrivenID uint64
	// Property is the driving custom property's name.
	Property string
	// VisibleValue is the source property value at which the driven object
	// shows. Swapping the source to this slot makes the object visible.
	VisibleValue common.Value
}

// SourceRef identifies one property driving an object, as shown in the panel's
// "driven by" section.
type SourceRef struct {
	// SourceID is the holder object's ID.
	SourceID uint64
	// SourceName is the holder object's name.
	SourceName string
	// Property is the driving custom property's name.
	Property string
}

// Manager owns the association between driver sources (an object or a
// controller empty holding a custom property) and the driven objects whose
// visibility reads that property. The scene owns the objects and properties;
// the manager owns only the binding metadata and the per-source ordered value
// slots used for swapping.
// Thread-safe for concurrent access.
type Manager interface {
	// CreateBinding wires a driven object's visibility to a custom property.
	// The property holder is resolved from the source kind: the driven object
	// itself, a freshly created controller empty, or the given existing
	// object. The custom property is created with UI metadata if missing,
	// drivers are installed on both visibility channels, and the binding is
	// recorded with its value slot. An existing binding on the driven object
	// is replaced.
	//
	// Parameters:
	//   - driven: the object whose visibility is driven (must be in the scene)
	//   - kind: where the driving property lives
	//   - source: the existing holder; required for SourceExistingEmpty, ignored otherwise
	//   - opts: per-call settings (property name/kind, default visibility, switch value)
	//
	// Returns:
	//   - Binding: the recorded binding
	//   - error: *InvalidTargetError if the source reference is missing, not in
	//     the scene, or forms a cycle with the driven object
	CreateBinding(driven object.Object, kind SourceKind, source object.Object, opts ...BindOption) (Binding, error)

	// Rebind atomically repoints a driven object from its current source to a
	// new one: the old drivers and binding records are removed and the new
	// ones installed under one lock, so the object never observes a state
	// referencing the old source.
	//
	// Parameters:
	//   - driven: the object to repoint
	//   - kind: where the new driving property lives
	//   - source: the new existing holder; required for SourceExistingEmpty
	//   - opts: per-call settings
	//
	// Returns:
	//   - Binding: the new recorded binding
	//   - error: *InvalidTargetError on a bad source reference
	Rebind(driven object.Object, kind SourceKind, source object.Object, opts ...BindOption) (Binding, error)

	// Unbind removes the visibility drivers and binding records from a driven
	// object. The custom property stays on its holder.
	//
	// Parameters:
	//   - driven: the object to unbind
	//
	// Returns:
	//   - bool: true if any driver was removed
	Unbind(driven object.Object) bool

	// SwapActiveValue sets the source's custom property to the value recorded
	// at the given slot index, making that slot's driven object the visible
	// one. The change propagates through the depsgraph immediately.
	//
	// Parameters:
	//   - source: the driver source holding the property
	//   - index: the slot index, in slot order
	//
	// Returns:
	//   - error: *IndexOutOfRangeError if no slot exists at index; the source
	//     property is left unchanged
	SwapActiveValue(source object.Object, index int) error

	// Slots returns a copy of the source's recorded value slots in order.
	//
	// Parameters:
	//   - source: the driver source
	//
	// Returns:
	//   - []Binding: the recorded bindings, in slot order
	Slots(source object.Object) []Binding

	// ListBoundObjects returns a lazy, restartable sequence over the driven
	// objects currently bound to the source, in slot order. The sequence
	// reflects live binding state at iteration time.
	//
	// Parameters:
	//   - source: the driver source
	//
	// Returns:
	//   - iter.Seq[object.Object]: the bound driven objects
	ListBoundObjects(source object.Object) iter.Seq[object.Object]

	// ReverseObject inverts the visibility logic of one driven object by
	// rewriting its driver expressions, then re-evaluates and refreshes the
	// binding records.
	//
	// Parameters:
	//   - driven: the object whose logic to invert
	//
	// Returns:
	//   - error: error if the object has no visibility drivers
	ReverseObject(driven object.Object) error

	// ReverseConnected flips every custom property on the source that has
	// dependent driven objects, toggling which objects show.
	//
	// Parameters:
	//   - source: the driver source whose properties to flip
	//
	// Returns:
	//   - int: the number of affected driven objects
	//   - error: *InvalidTargetError if the source is nil or not in the scene
	ReverseConnected(source object.Object) (int, error)

	// RemoveProperty deletes a custom property from its holder. Drivers that
	// referenced it stop resolving and leave their channels unchanged; the
	// binding records are refreshed.
	//
	// Parameters:
	//   - holder: the object carrying the property
	//   - name: the property name
	//
	// Returns:
	//   - error: error if the holder or property does not exist
	RemoveProperty(holder object.Object, name string) error

	// ConnectedObjects returns the driven objects whose visibility reads the
	// given property on the source.
	//
	// Parameters:
	//   - source: the property holder
	//   - property: the custom property name
	//
	// Returns:
	//   - []object.Object: the dependent driven objects, ascending ID order
	ConnectedObjects(source object.Object, property string) []object.Object

	// DrivingSources returns the properties driving the given object's
	// visibility, deduplicated, as shown in the panel's "driven by" section.
	//
	// Parameters:
	//   - driven: the driven object
	//
	// Returns:
	//   - []SourceRef: the driving holder/property pairs
	DrivingSources(driven object.Object) []SourceRef

	// Rescan rebuilds the binding records and value slots purely from the
	// drivers present in the scene. Called after loading a scene file so
	// manager state reconstitutes without separate persistence.
	Rescan()
}

type mgr struct {
	mu *sync.RWMutex

	scn scene.Scene
	dg  depsgraph.Depsgraph

	// slots holds each source's recorded bindings in slot order.
	slots map[uint64][]Binding
}

var _ Manager = &mgr{}

// NewManager creates a binding Manager over the given scene and depsgraph and
// reconstitutes binding records from any drivers already in the scene.
// Panics if either is nil.
//
// Parameters:
//   - s: the scene registry (must not be nil)
//   - dg: the depsgraph propagating property changes (must not be nil)
//
// Returns:
//   - Manager: the newly created manager
func NewManager(s scene.Scene, dg depsgraph.Depsgraph) Manager {
	if s == nil {
		panic("binding: NewManager requires a non-nil Scene")
	}
	if dg == nil {
		panic("binding: NewManager requires a non-nil Depsgraph")
	}
	m := &mgr{
		mu:    &sync.RWMutex{},
		scn:   s,
		dg:    dg,
		slots: make(map[uint64][]Binding),
	}
	m.Rescan()
	return m
}

func (m *mgr) CreateBinding(driven object.Object, kind SourceKind, source object.Object, opts ...BindOption) (Binding, error) {
	cfg := defaultBindConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(driven, kind, source, cfg)
}

func (m *mgr) Rebind(driven object.Object, kind SourceKind, source object.Object, opts ...BindOption) (Binding, error) {
	return m.CreateBinding(driven, kind, source, opts...)
}

// createLocked performs the full binding sequence: resolve the holder, ensure
// the property, install the channel drivers, record the slot, and propagate.
// Caller must hold m.mu write lock.
func (m *mgr) createLocked(driven object.Object, kind SourceKind, source object.Object, cfg bindConfig) (Binding, error) {
	if driven == nil {
		return Binding{}, &InvalidTargetError{Reason: "no driven object given"}
	}
	if m.scn.Get(driven.ID()) == nil {
		return Binding{}, &InvalidTargetError{Reason: fmt.Sprintf("driven object %q is not in the scene", driven.Name())}
	}

	holder, err := m.resolveHolder(driven, kind, source, cfg)
	if err != nil {
		return Binding{}, err
	}

	// Only create the property if it doesn't exist; a shared holder keeps its
	// current value so already-bound objects don't flicker.
	if !holder.HasProperty(cfg.propertyName) {
		switch cfg.propertyKind {
		case common.ValueKindBool:
			holder.SetProperty(cfg.propertyName, common.NewBool(true))
			holder.SetPropertyMeta(cfg.propertyName, common.BoolPropertyMeta("Controls visibility of objects (Boolean)", true))
		default:
			holder.SetProperty(cfg.propertyName, common.NewInt(1))
			holder.SetPropertyMeta(cfg.propertyName, common.IntPropertyMeta("Controls visibility of objects (Integer)", 1))
		}
	}

	// An existing property dictates the expression shape regardless of the
	// requested kind.
	current, _ := holder.Property(cfg.propertyName)
	kindInUse := current.Kind()

	var expression string
	var visibleValue common.Value
	switch kindInUse {
	case common.ValueKindBool:
		if cfg.defaultVisible {
			expression = fmt.Sprintf("not %s", cfg.propertyName)
		} else {
			expression = cfg.propertyName
		}
		visibleValue = common.NewBool(cfg.defaultVisible)
	default:
		expression = fmt.Sprintf("not (%s == %d)", cfg.propertyName, cfg.visibleValue)
		visibleValue = common.NewInt(cfg.visibleValue)
	}

	// Replace any existing visibility drivers on both channels.
	for _, channel := range driver.VisibilityChannels {
		d, err := driver.NewDriver(
			driver.WithChannel(channel),
			driver.WithExpression(expression),
			driver.WithSingleProperty(cfg.propertyName, holder.ID(), holder.Name()),
		)
		if err != nil {
			return Binding{}, fmt.Errorf("binding: building %s driver: %w", channel, err)
		}
		driven.AddDriver(d)
	}

	b := Binding{
		SourceID:     holder.ID(),
		DrivenID:     driven.ID(),
		Property:     cfg.propertyName,
		VisibleValue: visibleValue,
	}
	m.removeRecordsLocked(driven.ID())
	m.slots[holder.ID()] = append(m.slots[holder.ID()], b)

	m.dg.Rebuild()
	m.dg.Tag(holder.ID(), cfg.propertyName)
	m.dg.Update()

	return b, nil
}

// resolveHolder picks the object that will carry the custom property.
func (m *mgr) resolveHolder(driven object.Object, kind SourceKind, source object.Object, cfg bindConfig) (object.Object, error) {
	switch kind {
	case SourceSelf:
		return driven, nil
	case SourceNewEmpty:
		return m.scn.CreateEmpty(ControllerPrefix + cfg.propertyName), nil
	case SourceExistingEmpty:
		if source == nil {
			return nil, &InvalidTargetError{Reason: "no existing object specified"}
		}
		if m.scn.Get(source.ID()) == nil {
			return nil, &InvalidTargetError{Reason: fmt.Sprintf("object %q no longer exists", source.Name())}
		}
		if source.ID() == driven.ID() {
			return nil, &InvalidTargetError{Reason: "existing object would form a cycle with the driven object; use the self source kind instead"}
		}
		return source, nil
	default:
		return nil, &InvalidTargetError{Reason: fmt.Sprintf("unknown source kind %d", kind)}
	}
}

// removeRecordsLocked drops all binding records for a driven object.
// Caller must hold m.mu write lock.
func (m *mgr) removeRecordsLocked(drivenID uint64) {
	for sourceID, list := range m.slots {
		kept := list[:0]
		for _, b := range list {
			if b.DrivenID != drivenID {
				kept = append(kept, b)
			}
		}
		if len(kept) == 0 {
			delete(m.slots, sourceID)
		} else {
			m.slots[sourceID] = kept
		}
	}
}

func (m *mgr) Unbind(driven object.Object) bool {
	if driven == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := false
	for _, channel := range driver.VisibilityChannels {
		if driven.RemoveDriver(channel) {
			removed = true
		}
	}
	if removed {
		m.removeRecordsLocked(driven.ID())
		m.dg.Rebuild()
	}
	return removed
}

func (m *mgr) SwapActiveValue(source object.Object, index int) error {
	if source == nil {
		return &InvalidTargetError{Reason: "no driver source given"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.slots[source.ID()]
	if index < 0 || index >= len(list) {
		return &IndexOutOfRangeError{Index: index, Count: len(list)}
	}

	b := list[index]
	source.SetProperty(b.Property, b.VisibleValue)
	m.dg.Tag(source.ID(), b.Property)
	m.dg.Update()
	return nil
}

func (m *mgr) Slots(source object.Object) []Binding {
	if source == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.slots[source.ID()]
	out := make([]Binding, len(list))
	copy(out, list)
	return out
}

func (m *mgr) ListBoundObjects(source object.Object) iter.Seq[object.Object] {
	return func(yield func(object.Object) bool) {
		for _, b := range m.Slots(source) {
			obj := m.scn.Get(b.DrivenID)
			if obj == nil {
				continue
			}
			if !yield(obj) {
				return
			}
		}
	}
}

func (m *mgr) ReverseObject(driven object.Object) error {
	if driven == nil {
		return &InvalidTargetError{Reason: "no driven object given"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reversed := 0
	for _, channel := range driver.VisibilityChannels {
		d := driven.DriverFor(channel)
		if d == nil {
			continue
		}
		if err := d.Invert(); err != nil {
			return fmt.Errorf("binding: reversing %s driver on %q: %w", channel, driven.Name(), err)
		}
		for _, v := range d.Variables() {
			if property, ok := driver.PropertyFromDataPath(v.DataPath); ok {
				m.dg.Tag(v.TargetID, property)
			}
		}
		reversed++
	}
	if reversed == 0 {
		return fmt.Errorf("binding: no visibility drivers found on %q", driven.Name())
	}

	m.dg.Update()
	m.rescanLocked()
	return nil
}

func (m *mgr) ReverseConnected(source object.Object) (int, error) {
	if source == nil {
		return 0, &InvalidTargetError{Reason: "no driver source given"}
	}
	if m.scn.Get(source.ID()) == nil {
		return 0, &InvalidTargetError{Reason: fmt.Sprintf("object %q no longer exists", source.Name())}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	affected := 0
	for _, name := range source.PropertyNames() {
		dependents := m.dg.DependentObjects(source.ID(), name)
		if len(dependents) == 0 {
			continue
		}
		current, _ := source.Property(name)
		source.SetProperty(name, current.Flipped())
		m.dg.Tag(source.ID(), name)
		affected += len(dependents)
	}
	if affected > 0 {
		m.dg.Update()
	}
	return affected, nil
}

func (m *mgr) RemoveProperty(holder object.Object, name string) error {
	if holder == nil {
		return &InvalidTargetError{Reason: "no property holder given"}
	}
	if m.scn.Get(holder.ID()) == nil {
		return &InvalidTargetError{Reason: fmt.Sprintf("object %q no longer exists", holder.Name())}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !holder.RemoveProperty(name) {
		return fmt.Errorf("binding: property %q not found on %q", name, holder.Name())
	}
	m.rescanLocked()
	return nil
}

func (m *mgr) ConnectedObjects(source object.Object, property string) []object.Object {
	if source == nil {
		return nil
	}
	return m.dg.DependentObjects(source.ID(), property)
}

func (m *mgr) DrivingSources(driven object.Object) []SourceRef {
	if driven == nil {
		return nil
	}

	var out []SourceRef
	seen := make(map[SourceRef]struct{})
	for _, d := range driven.Drivers() {
		for _, v := range d.Variables() {
			property, ok := driver.PropertyFromDataPath(v.DataPath)
			if !ok {
				continue
			}
			holder := m.scn.Get(v.TargetID)
			if holder == nil {
				continue
			}
			ref := SourceRef{SourceID: holder.ID(), SourceName: holder.Name(), Property: property}
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

func (m *mgr) Rescan() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rescanLocked()
}

// rescanLocked rebuilds the binding records from the drivers present in the
// scene. The value slot for each binding is recovered by probing the driver's
// expression: the candidate property value under which the object is not
// hidden is the slot's visible value. Caller must hold m.mu write lock.
func (m *mgr) rescanLocked() {
	slots := make(map[uint64][]Binding)

	objects := m.scn.Objects()
	sort.Slice(objects, func(i, j int) bool { return objects[i].ID() < objects[j].ID() })

	for _, obj := range objects {
		d := obj.DriverFor(driver.ChannelHideViewport)
		if d == nil {
			d = obj.DriverFor(driver.ChannelHideRender)
		}
		if d == nil {
			continue
		}
		vars := d.Variables()
		if len(vars) == 0 {
			continue
		}

		v := vars[0]
		property, ok := driver.PropertyFromDataPath(v.DataPath)
		if !ok {
			continue
		}
		holderValue, ok := m.scn.PropertyValue(v.TargetID, property)
		if !ok {
			continue
		}

		visibleValue, found := probeVisibleValue(d, m.scn, v.TargetID, property, holderValue.Kind())
		if !found {
			continue
		}
		slots[v.TargetID] = append(slots[v.TargetID], Binding{
			SourceID:     v.TargetID,
			DrivenID:     obj.ID(),
			Property:     property,
			VisibleValue: visibleValue,
		})
	}

	m.slots = slots
}

// probeResolver overlays one property value on top of a base resolver so a
// driver expression can be evaluated against hypothetical property states.
type probeResolver struct {
	base     driver.PropertyResolver
	holderID uint64
	property string
	value    common.Value
}

func (p probeResolver) PropertyValue(id uint64, property string) (common.Value, bool) {
	if id == p.holderID && property == p.property {
		return p.value, true
	}
	return p.base.PropertyValue(id, property)
}

// probeVisibleValue finds the property value under which the driver leaves its
// object visible.
func probeVisibleValue(d driver.Driver, base driver.PropertyResolver, holderID uint64, property string, kind common.ValueKind) (common.Value, bool) {
	var candidates []common.Value
	if kind == common.ValueKindBool {
		candidates = []common.Value{common.NewBool(true), common.NewBool(false)}
	} else {
		candidates = []common.Value{common.NewInt(1), common.NewInt(0)}
	}

	for _, candidate := range candidates {
		hidden, err := d.Evaluate(probeResolver{base: base, holderID: holderID, property: property, value: candidate})
		if err != nil {
			return common.Value{}, false
		}
		if !hidden {
			return candidate, true
		}
	}
	return common.Value{}, false
}
