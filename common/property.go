package common

// PropertyMeta holds the UI metadata attached to a custom property: the limits,
// default, and display hints the host surfaces next to the raw value. A visibility
// switch property carries hard 0..1 limits so the panel renders it as a toggle.
type PropertyMeta struct {
	// Description is the tooltip text shown for the property.
	Description string `yaml:"description,omitempty"`
	// Default is the value the property resets to.
	Default Value `yaml:"default"`
	// Min and Max are the hard limits for integer properties.
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
	// SoftMin and SoftMax are the slider limits, kept in lockstep with the hard
	// limits for visibility switches.
	SoftMin int64 `yaml:"soft_min"`
	SoftMax int64 `yaml:"soft_max"`
	// Step is the slider increment for integer properties.
	Step int64 `yaml:"step,omitempty"`
	// Subtype is a display hint; empty means plain display.
	Subtype string `yaml:"subtype,omitempty"`
}

// BoolPropertyMeta returns the metadata used for a boolean visibility property.
//
// Parameters:
//   - description: the tooltip text
//   - def: the default toggle state
//
// Returns:
//   - PropertyMeta: metadata with boolean defaults
func BoolPropertyMeta(description string, def bool) PropertyMeta {
	return PropertyMeta{
		Description: description,
		Default:     NewBool(def),
		Min:         0,
		Max:         1,
		SoftMin:     0,
		SoftMax:     1,
		Step:        1,
	}
}

// IntPropertyMeta returns the metadata used for an integer visibility switch,
// hard-limited to the 0..1 range.
//
// Parameters:
//   - description: the tooltip text
//   - def: the default switch value
//
// Returns:
//   - PropertyMeta: metadata with 0..1 limits
func IntPropertyMeta(description string, def int64) PropertyMeta {
	return PropertyMeta{
		Description: description,
		Default:     NewInt(def),
		Min:         0,
		Max:         1,
		SoftMin:     0,
		SoftMax:     1,
		Step:        1,
	}
}

// ClampValue clamps an integer property value into the metadata's hard limits.
// Boolean values pass through unchanged.
//
// Parameters:
//   - v: the value to clamp
//   - meta: the property metadata providing the limits
//
// Returns:
//   - Value: the clamped value
func ClampValue(v Value, meta PropertyMeta) Value {
	if v.Kind() != ValueKindInt {
		return v
	}
	i := v.Int()
	if i < meta.Min {
		i = meta.Min
	}
	if i > meta.Max {
		i = meta.Max
	}
	return NewInt(i)
}
