package object

import (
	"github.com/kyokaz/quickvis-go/common"
)

// ObjectBuilderOption is a functional option for configuring an Object during construction.
type ObjectBuilderOption func(*obj)

// WithID sets the ID of the Object.
//
// Parameters:
//   - id: unique identifier for the Object
//
// Returns:
//   - ObjectBuilderOption: functional option to set the ID
func WithID(id uint64) ObjectBuilderOption {
	return func(o *obj) {
		o.id = id
	}
}

// WithName sets the name of the Object.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - ObjectBuilderOption: functional option to set the name
func WithName(name string) ObjectBuilderOption {
	return func(o *obj) {
		o.name = name
	}
}

// WithKind sets what the Object is (mesh, empty, light, camera).
//
// Parameters:
//   - kind: the object kind
//
// Returns:
//   - ObjectBuilderOption: functional option to set the kind
func WithKind(kind Kind) ObjectBuilderOption {
	return func(o *obj) {
		o.kind = kind
	}
}

// WithEnabled sets whether the Object participates in evaluation.
//
// Parameters:
//   - enabled: true to enable the object
//
// Returns:
//   - ObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) ObjectBuilderOption {
	return func(o *obj) {
		o.enabled.Store(enabled)
	}
}

// WithPosition sets the initial position of the Object.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - ObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) ObjectBuilderOption {
	return func(o *obj) {
		o.position = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale of the Object.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - ObjectBuilderOption: functional option to set the scale
func WithScale(sx, sy, sz float32) ObjectBuilderOption {
	return func(o *obj) {
		o.scale = [3]float32{sx, sy, sz}
	}
}

// WithRotation sets the initial rotation of the Object.
//
// Parameters:
//   - rx: the x rotation angle
//   - ry: the y rotation angle
//   - rz: the z rotation angle
//
// Returns:
//   - ObjectBuilderOption: functional option to set the rotation
func WithRotation(rx, ry, rz float32) ObjectBuilderOption {
	return func(o *obj) {
		o.rotation = [3]float32{rx, ry, rz}
	}
}

// WithHidden sets both visibility channels' hide flags.
//
// Parameters:
//   - hidden: true to hide in viewport and renders
//
// Returns:
//   - ObjectBuilderOption: functional option to set the hide flags
func WithHidden(hidden bool) ObjectBuilderOption {
	return func(o *obj) {
		o.hideViewport.Store(hidden)
		o.hideRender.Store(hidden)
	}
}

// WithProperty adds a custom property during construction.
//
// Parameters:
//   - name: the property name
//   - value: the property value
//
// Returns:
//   - ObjectBuilderOption: functional option to add the property
func WithProperty(name string, value common.Value) ObjectBuilderOption {
	return func(o *obj) {
		if _, exists := o.values[name]; !exists {
			o.propOrder = append(o.propOrder, name)
		}
		o.values[name] = value
	}
}
