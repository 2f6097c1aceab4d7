package driver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kyokaz/quickvis-go/common"
)

// Channel identifies the driven visibility property on an object.
type Channel string

const (
	// ChannelHideViewport drives the viewport-hide flag.
	ChannelHideViewport Channel = "hide_viewport"
	// ChannelHideRender drives the render-hide flag.
	ChannelHideRender Channel = "hide_render"
)

// VisibilityChannels lists both channels the visibility tooling drives in lockstep.
var VisibilityChannels = []Channel{ChannelHideViewport, ChannelHideRender}

// Variable is a single-property driver input: it binds an expression identifier
// to a custom property on a target object, addressed by ID and data path.
type Variable struct {
	// Name is the identifier the expression refers to.
	Name string `yaml:"name"`
	// TargetID is the ID of the object holding the property. Resolved by name
	// when loading a scene file.
	TargetID uint64 `yaml:"-"`
	// TargetName carries the holder's name in the scene file.
	TargetName string `yaml:"target"`
	// DataPath addresses the property on the target, in the `["prop"]` form.
	DataPath string `yaml:"data_path"`
}

// DataPathFor returns the data path addressing a custom property by name.
//
// Parameters:
//   - property: the custom property name
//
// Returns:
//   - string: the data path in `["prop"]` form
func DataPathFor(property string) string {
	return fmt.Sprintf("[%q]", property)
}

// PropertyFromDataPath extracts the custom property name from a `["prop"]`
// data path.
//
// Parameters:
//   - dataPath: the data path to parse
//
// Returns:
//   - string: the property name
//   - bool: false if the path is not in the `["prop"]` form
func PropertyFromDataPath(dataPath string) (string, bool) {
	inner, ok := strings.CutPrefix(dataPath, `["`)
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, `"]`)
	if !ok || inner == "" {
		return "", false
	}
	return inner, true
}

// PropertyResolver resolves a driver variable's target property to its current
// value. The scene registry implements this.
type PropertyResolver interface {
	// PropertyValue returns the named custom property on the object with the
	// given ID.
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

type drv struct {
	mu *sync.RWMutex

	channel    Channel
	expression string
	compiled   *Expression
	variables  []Variable
}

// Driver computes a visibility channel's value from custom properties on other
// objects through a scripted expression. A driver owns its expression and its
// variable list; evaluation resolves variables through a PropertyResolver so
// the driver stays decoupled from the scene registry.
// Thread-safe for concurrent access.
type Driver interface {
	// Channel returns the visibility channel this driver writes.
	//
	// Returns:
	//   - Channel: the driven channel
	Channel() Channel

	// Expression returns the scripted expression text.
	//
	// Returns:
	//   - string: the expression source
	Expression() string

	// SetExpression replaces the scripted expression. The new source is
	// compiled eagerly so a malformed expression is rejected without
	// disturbing the current one.
	//
	// Parameters:
	//   - source: the new expression text
	//
	// Returns:
	//   - error: error if the source does not parse
	SetExpression(source string) error

	// Invert reverses the driver's logic by rewriting its expression: a leading
	// "not " is stripped, otherwise the expression is wrapped in "not (...)".
	//
	// Returns:
	//   - error: error if the rewritten expression does not compile
	Invert() error

	// Variables returns a copy of the driver's variable list.
	//
	// Returns:
	//   - []Variable: the variables
	Variables() []Variable

	// AddVariable appends a variable binding an expression identifier to a
	// target object property.
	//
	// Parameters:
	//   - v: the variable to add
	AddVariable(v Variable)

	// SetVariables replaces the driver's variable list.
	//
	// Parameters:
	//   - vars: the new variables
	SetVariables(vars []Variable)

	// ReferencesTarget reports whether any variable targets the given object.
	//
	// Parameters:
	//   - id: the object ID to look for
	//
	// Returns:
	//   - bool: true if a variable targets the object
	ReferencesTarget(id uint64) bool

	// Evaluate resolves all variables through the resolver and computes the
	// expression. The result is the value to write to the driven channel.
	//
	// Parameters:
	//   - resolver: resolves variable targets to property values
	//
	// Returns:
	//   - bool: the computed channel value (true = hidden)
	//   - error: error if a variable's target or property no longer exists
	Evaluate(resolver PropertyResolver) (bool, error)
}

var _ Driver = &drv{}

// NewDriver creates a new Driver configured with the given options. The
// expression defaults to "False" (never hide) until one is set.
//
// Parameters:
//   - options: functional options to configure the driver
//
// Returns:
//   - Driver: the newly created driver
//   - error: error if a configured expression does not compile
func NewDriver(options ...DriverBuilderOption) (Driver, error) {
	d := &drv{
		mu:         &sync.RWMutex{},
		channel:    ChannelHideViewport,
		expression: "False",
	}
	for _, option := range options {
		option(d)
	}

	compiled, err := ParseExpression(d.expression)
	if err != nil {
		return nil, err
	}
	d.compiled = compiled
	return d, nil
}

func (d *drv) Channel() Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.channel
}

func (d *drv) Expression() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.expression
}

func (d *drv) SetExpression(source string) error {
	compiled, err := ParseExpression(source)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.expression = source
	d.compiled = compiled
	return nil
}

func (d *drv) Invert() error {
	d.mu.RLock()
	inverted := InvertExpression(d.expression)
	d.mu.RUnlock()
	return d.SetExpression(inverted)
}

func (d *drv) Variables() []Variable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Variable, len(d.variables))
	copy(out, d.variables)
	return out
}

func (d *drv) AddVariable(v Variable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.variables = append(d.variables, v)
}

func (d *drv) SetVariables(vars []Variable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.variables = make([]Variable, len(vars))
	copy(d.variables, vars)
}

func (d *drv) ReferencesTarget(id uint64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, v := range d.variables {
		if v.TargetID == id {
			return true
		}
	}
	return false
}

func (d *drv) Evaluate(resolver PropertyResolver) (bool, error) {
	d.mu.RLock()
	compiled := d.compiled
	variables := d.variables
	d.mu.RUnlock()

	env := make(map[string]common.Value, len(variables))
	for _, v := range variables {
		property, ok := PropertyFromDataPath(v.DataPath)
		if !ok {
			return false, fmt.Errorf("driver: variable %q has malformed data path %q", v.Name, v.DataPath)
		}
		value, ok := resolver.PropertyValue(v.TargetID, property)
		if !ok {
			return false, fmt.Errorf("driver: variable %q target %d has no property %q", v.Name, v.TargetID, property)
		}
		env[v.Name] = value
	}
	return compiled.Evaluate(env)
}
