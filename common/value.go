// package common contains common types that are used throughout this toolkit. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies the concrete type held by a Value.
type ValueKind int

const (
	// ValueKindBool is a true/false toggle property.
	ValueKindBool ValueKind = iota
	// ValueKindInt is an integer property, constrained to 0 or 1 when used as a visibility switch.
	ValueKindInt
)

// String returns the scene-file spelling of the kind ("bool" or "int").
func (k ValueKind) String() string {
	switch k {
	case ValueKindBool:
		return "bool"
	case ValueKindInt:
		return "int"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// ParseValueKind converts a scene-file kind spelling back into a ValueKind.
//
// Parameters:
//   - s: the kind name, "bool" or "int"
//
// Returns:
//   - ValueKind: the parsed kind
//   - error: error if the name is not a known kind
func ParseValueKind(s string) (ValueKind, error) {
	switch s {
	case "bool":
		return ValueKindBool, nil
	case "int":
		return ValueKindInt, nil
	default:
		return 0, fmt.Errorf("common: unknown value kind %q", s)
	}
}

// Value is a tagged variant holding a custom property's payload. Properties are
// dynamically typed from the user's point of view, so the concrete kind travels
// with the value instead of relying on duck-typed storage.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
}

// NewBool creates a boolean Value.
//
// Parameters:
//   - b: the boolean payload
//
// Returns:
//   - Value: the boolean value
func NewBool(b bool) Value {
	return Value{kind: ValueKindBool, b: b}
}

// NewInt creates an integer Value.
//
// Parameters:
//   - i: the integer payload
//
// Returns:
//   - Value: the integer value
func NewInt(i int64) Value {
	return Value{kind: ValueKindInt, i: i}
}

// Kind returns the concrete kind held by this Value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Bool returns the boolean payload. For integer values it reports truthiness.
func (v Value) Bool() bool {
	if v.kind == ValueKindBool {
		return v.b
	}
	return v.i != 0
}

// Int returns the integer payload. Boolean values report 1 for true and 0 for false.
func (v Value) Int() int64 {
	if v.kind == ValueKindInt {
		return v.i
	}
	if v.b {
		return 1
	}
	return 0
}

// Truthy reports whether the value is true in a driver expression context.
// Integers are truthy when non-zero, mirroring the host expression language.
func (v Value) Truthy() bool {
	return v.Bool()
}

// Equal reports numeric equality across kinds: true equals 1 and false equals 0,
// so a boolean property compares cleanly against an integer slot value.
//
// Parameters:
//   - other: the value to compare against
//
// Returns:
//   - bool: true if the two values are numerically equal
func (v Value) Equal(other Value) bool {
	return v.Int() == other.Int()
}

// Flipped returns the reversed value: booleans negate, integers swap 0 and 1.
// Any other integer collapses to 0, matching the host's reverse behavior for
// out-of-range visibility switches.
//
// Returns:
//   - Value: the reversed value, same kind as the receiver
func (v Value) Flipped() Value {
	switch v.kind {
	case ValueKindBool:
		return NewBool(!v.b)
	default:
		if v.i == 0 {
			return NewInt(1)
		}
		return NewInt(0)
	}
}

// String renders the value the way the panel displays it.
func (v Value) String() string {
	if v.kind == ValueKindBool {
		if v.b {
			return "True"
		}
		return "False"
	}
	return fmt.Sprintf("%d", v.i)
}

// valueDoc is the scene-file shape of a Value.
type valueDoc struct {
	Type string `yaml:"type"`
	Bool bool   `yaml:"bool,omitempty"`
	Int  int64  `yaml:"int,omitempty"`
}

// MarshalYAML implements yaml.Marshaler for the scene file format.
func (v Value) MarshalYAML() (any, error) {
	doc := valueDoc{Type: v.kind.String()}
	switch v.kind {
	case ValueKindBool:
		doc.Bool = v.b
	case ValueKindInt:
		doc.Int = v.i
	}
	return doc, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for the scene file format.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var doc valueDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	kind, err := ParseValueKind(doc.Type)
	if err != nil {
		return err
	}
	switch kind {
	case ValueKindBool:
		*v = NewBool(doc.Bool)
	case ValueKindInt:
		*v = NewInt(doc.Int)
	}
	return nil
}
