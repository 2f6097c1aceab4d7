package binding

import (
	"github.com/kyokaz/quickvis-go/common"
)

// SourceKind selects where the driving custom property lives.
type SourceKind int

const (
	// SourceSelf places the custom property on the driven object itself.
	SourceSelf SourceKind = iota
	// SourceNewEmpty creates a fresh controller empty to hold the property.
	SourceNewEmpty
	// SourceExistingEmpty uses an existing scene object as the holder.
	SourceExistingEmpty
)

// String returns the panel spelling of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceSelf:
		return "Selected Object"
	case SourceNewEmpty:
		return "New Empty"
	case SourceExistingEmpty:
		return "Existing Object"
	default:
		return "Unknown"
	}
}

// bindConfig carries the per-call settings for CreateBinding and Rebind.
type bindConfig struct {
	propertyName   string
	propertyKind   common.ValueKind
	defaultVisible bool
	visibleValue   int64
}

// defaultBindConfig mirrors the panel defaults: a boolean property named
// "visible", objects visible by default, integer switch value 1.
func defaultBindConfig() bindConfig {
	return bindConfig{
		propertyName:   "visible",
		propertyKind:   common.ValueKindBool,
		defaultVisible: true,
		visibleValue:   1,
	}
}

// BindOption is a functional option for a single CreateBinding or Rebind call.
type BindOption func(*bindConfig)

// WithPropertyName sets the name of the driving custom property.
// An empty name falls back to the default ("visible").
//
// Parameters:
//   - name: the custom property name
//
// Returns:
//   - BindOption: option function to apply
func WithPropertyName(name string) BindOption {
	return func(c *bindConfig) {
		c.propertyName = common.Coalesce(name, c.propertyName)
	}
}

// WithPropertyKind sets the kind of custom property to create: boolean toggle
// or integer switch limited to 0/1.
//
// Parameters:
//   - kind: the property kind
//
// Returns:
//   - BindOption: option function to apply
func WithPropertyKind(kind common.ValueKind) BindOption {
	return func(c *bindConfig) {
		c.propertyKind = kind
	}
}

// WithDefaultVisible sets whether the driven object is visible when a boolean
// property is True (default) or inverted.
//
// Parameters:
//   - visible: true for visible-when-True, false for the inverted behavior
//
// Returns:
//   - BindOption: option function to apply
func WithDefaultVisible(visible bool) BindOption {
	return func(c *bindConfig) {
		c.defaultVisible = visible
	}
}

// WithVisibleValue sets the integer switch value at which the driven object is
// visible. Only meaningful for integer properties; clamped to 0..1.
//
// Parameters:
//   - value: the property value at which the object shows
//
// Returns:
//   - BindOption: option function to apply
func WithVisibleValue(value int64) BindOption {
	return func(c *bindConfig) {
		if value < 0 {
			value = 0
		}
		if value > 1 {
			value = 1
		}
		c.visibleValue = value
	}
}
