package object

import (
	"sync"
	"sync/atomic"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/driver"
)

// Kind identifies what a scene object is.
type Kind string

const (
	// KindMesh is a renderable geometry object.
	KindMesh Kind = "mesh"
	// KindEmpty is an object with no geometry, used purely as a property carrier.
	KindEmpty Kind = "empty"
	// KindLight is a light source object.
	KindLight Kind = "light"
	// KindCamera is a camera object.
	KindCamera Kind = "camera"
)

type obj struct {
	mu *sync.RWMutex

	id      uint64
	name    string
	kind    Kind
	enabled atomic.Bool

	hideViewport atomic.Bool
	hideRender   atomic.Bool

	position [3]float32
	scale    [3]float32
	rotation [3]float32

	// Custom property table. propOrder preserves panel display order; values
	// and meta are keyed by property name.
	propOrder []string
	values    map[string]common.Value
	meta      map[string]common.PropertyMeta

	drivers []driver.Driver
}

// Object is a scene entity: a mesh, empty, light, or camera with a transform,
// per-channel visibility flags, a table of user-defined custom properties, and
// the drivers attached to its visibility channels.
// Thread-safe for concurrent access.
type Object interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the object's scene-unique name.
	//
	// Returns:
	//   - string: the object name
	Name() string

	// SetName sets the object's name.
	//
	// Parameters:
	//   - name: the name to assign
	SetName(name string)

	// Kind returns what the object is.
	//
	// Returns:
	//   - Kind: the object kind
	Kind() Kind

	// Enabled returns whether this object participates in evaluation.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether this object participates in evaluation.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// HideViewport returns the viewport-hide flag.
	//
	// Returns:
	//   - bool: true if hidden in the viewport
	HideViewport() bool

	// SetHideViewport sets the viewport-hide flag. Normally written by driver
	// evaluation rather than called directly.
	//
	// Parameters:
	//   - hidden: true to hide in the viewport
	SetHideViewport(hidden bool)

	// HideRender returns the render-hide flag.
	//
	// Returns:
	//   - bool: true if hidden in renders
	HideRender() bool

	// SetHideRender sets the render-hide flag. Normally written by driver
	// evaluation rather than called directly.
	//
	// Parameters:
	//   - hidden: true to hide in renders
	SetHideRender(hidden bool)

	// Hidden returns the hide flag for the given visibility channel.
	//
	// Parameters:
	//   - channel: the visibility channel to read
	//
	// Returns:
	//   - bool: true if hidden on that channel
	Hidden(channel driver.Channel) bool

	// SetHidden sets the hide flag for the given visibility channel.
	//
	// Parameters:
	//   - channel: the visibility channel to write
	//   - hidden: true to hide on that channel
	SetHidden(channel driver.Channel, hidden bool)

	// Position returns the object's position.
	Position() (x, y, z float32)

	// SetPosition sets the object's position.
	SetPosition(x, y, z float32)

	// Scale returns the object's scale.
	Scale() (sx, sy, sz float32)

	// SetScale sets the object's scale.
	SetScale(sx, sy, sz float32)

	// Rotation returns the object's rotation.
	Rotation() (rx, ry, rz float32)

	// SetRotation sets the object's rotation.
	SetRotation(rx, ry, rz float32)

	// Property returns a custom property's value by name.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - common.Value: the value
	//   - bool: false if the property does not exist
	Property(name string) (common.Value, bool)

	// SetProperty creates or updates a custom property. New properties append
	// to the display order; existing ones keep their slot.
	//
	// Parameters:
	//   - name: the property name
	//   - value: the value to store
	SetProperty(name string, value common.Value)

	// HasProperty reports whether a custom property exists.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - bool: true if the property exists
	HasProperty(name string) bool

	// RemoveProperty deletes a custom property and its metadata.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - bool: true if the property existed
	RemoveProperty(name string) bool

	// PropertyNames returns the custom property names in display order.
	//
	// Returns:
	//   - []string: ordered property names
	PropertyNames() []string

	// PropertyMeta returns the UI metadata for a custom property.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - common.PropertyMeta: the metadata
	//   - bool: false if no metadata is recorded
	PropertyMeta(name string) (common.PropertyMeta, bool)

	// SetPropertyMeta records UI metadata for a custom property.
	//
	// Parameters:
	//   - name: the property name
	//   - meta: the metadata to record
	SetPropertyMeta(name string, meta common.PropertyMeta)

	// Drivers returns a copy of the object's driver list.
	//
	// Returns:
	//   - []driver.Driver: the attached drivers
	Drivers() []driver.Driver

	// AddDriver attaches a driver, replacing any existing driver on the same
	// channel.
	//
	// Parameters:
	//   - d: the driver to attach
	AddDriver(d driver.Driver)

	// RemoveDriver detaches the driver on the given channel.
	//
	// Parameters:
	//   - channel: the channel whose driver to detach
	//
	// Returns:
	//   - bool: true if a driver was detached
	RemoveDriver(channel driver.Channel) bool

	// DriverFor returns the driver attached to the given channel, or nil.
	//
	// Parameters:
	//   - channel: the channel to look up
	//
	// Returns:
	//   - driver.Driver: the attached driver or nil
	DriverFor(channel driver.Channel) driver.Driver
}

var _ Object = &obj{}

// NewObject creates a new Object configured with the given options.
// Defaults: kind mesh, enabled, unit scale, both visibility channels shown.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - Object: the newly created object
func NewObject(options ...ObjectBuilderOption) Object {
	o := &obj{
		mu:     &sync.RWMutex{},
		kind:   KindMesh,
		scale:  [3]float32{1, 1, 1},
		values: make(map[string]common.Value),
		meta:   make(map[string]common.PropertyMeta),
	}
	o.enabled.Store(true)
	for _, option := range options {
		option(o)
	}
	return o
}

func (o *obj) ID() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.id
}

func (o *obj) SetID(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.id = id
}

func (o *obj) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.name
}

func (o *obj) SetName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.name = name
}

func (o *obj) Kind() Kind {
	return o.kind
}

func (o *obj) Enabled() bool {
	return o.enabled.Load()
}

func (o *obj) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *obj) HideViewport() bool {
	return o.hideViewport.Load()
}

func (o *obj) SetHideViewport(hidden bool) {
	o.hideViewport.Store(hidden)
}

func (o *obj) HideRender() bool {
	return o.hideRender.Load()
}

func (o *obj) SetHideRender(hidden bool) {
	o.hideRender.Store(hidden)
}

func (o *obj) Hidden(channel driver.Channel) bool {
	if channel == driver.ChannelHideRender {
		return o.hideRender.Load()
	}
	return o.hideViewport.Load()
}

func (o *obj) SetHidden(channel driver.Channel, hidden bool) {
	if channel == driver.ChannelHideRender {
		o.hideRender.Store(hidden)
		return
	}
	o.hideViewport.Store(hidden)
}

func (o *obj) Position() (x, y, z float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.position[0], o.position[1], o.position[2]
}

func (o *obj) SetPosition(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = [3]float32{x, y, z}
}

func (o *obj) Scale() (sx, sy, sz float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scale[0], o.scale[1], o.scale[2]
}

func (o *obj) SetScale(sx, sy, sz float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = [3]float32{sx, sy, sz}
}

func (o *obj) Rotation() (rx, ry, rz float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rotation[0], o.rotation[1], o.rotation[2]
}

func (o *obj) SetRotation(rx, ry, rz float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = [3]float32{rx, ry, rz}
}

func (o *obj) Property(name string) (common.Value, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[name]
	return v, ok
}

func (o *obj) SetProperty(name string, value common.Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.values[name]; !exists {
		o.propOrder = append(o.propOrder, name)
	}
	o.values[name] = value
}

func (o *obj) HasProperty(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.values[name]
	return ok
}

func (o *obj) RemoveProperty(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.values[name]; !exists {
		return false
	}
	delete(o.values, name)
	delete(o.meta, name)
	for i, n := range o.propOrder {
		if n == name {
			o.propOrder = append(o.propOrder[:i], o.propOrder[i+1:]...)
			break
		}
	}
	return true
}

func (o *obj) PropertyNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, len(o.propOrder))
	copy(out, o.propOrder)
	return out
}

func (o *obj) PropertyMeta(name string) (common.PropertyMeta, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.meta[name]
	return m, ok
}

func (o *obj) SetPropertyMeta(name string, meta common.PropertyMeta) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.meta[name] = meta
}

func (o *obj) Drivers() []driver.Driver {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]driver.Driver, len(o.drivers))
	copy(out, o.drivers)
	return out
}

func (o *obj) AddDriver(d driver.Driver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.drivers {
		if existing.Channel() == d.Channel() {
			o.drivers[i] = d
			return
		}
	}
	o.drivers = append(o.drivers, d)
}

func (o *obj) RemoveDriver(channel driver.Channel) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.drivers {
		if existing.Channel() == channel {
			o.drivers = append(o.drivers[:i], o.drivers[i+1:]...)
			return true
		}
	}
	return false
}

func (o *obj) DriverFor(channel driver.Channel) driver.Driver {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, existing := range o.drivers {
		if existing.Channel() == channel {
			return existing
		}
	}
	return nil
}
