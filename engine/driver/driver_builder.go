package driver

// DriverBuilderOption is a functional option for configuring a Driver during construction.
type DriverBuilderOption func(*drv)

// WithChannel sets the visibility channel the driver writes.
//
// Parameters:
//   - channel: the driven channel
//
// Returns:
//   - DriverBuilderOption: functional option to set the channel
func WithChannel(channel Channel) DriverBuilderOption {
	return func(d *drv) {
		d.channel = channel
	}
}

// WithExpression sets the scripted expression text. The expression is compiled
// when NewDriver runs; a malformed expression fails construction.
//
// Parameters:
//   - source: the expression text
//
// Returns:
//   - DriverBuilderOption: functional option to set the expression
func WithExpression(source string) DriverBuilderOption {
	return func(d *drv) {
		d.expression = source
	}
}

// WithVariable appends a variable binding an expression identifier to a target
// object property.
//
// Parameters:
//   - v: the variable to add
//
// Returns:
//   - DriverBuilderOption: functional option to append the variable
func WithVariable(v Variable) DriverBuilderOption {
	return func(d *drv) {
		d.variables = append(d.variables, v)
	}
}

// WithSingleProperty is a convenience option that wires the common case: one
// variable named after the property, targeting the holder object's custom
// property by data path.
//
// Parameters:
//   - name: the variable (and property) name
//   - targetID: the holder object's ID
//   - targetName: the holder object's name, carried in the scene file
//
// Returns:
//   - DriverBuilderOption: functional option to append the variable
func WithSingleProperty(name string, targetID uint64, targetName string) DriverBuilderOption {
	return func(d *drv) {
		d.variables = append(d.variables, Variable{
			Name:       name,
			TargetID:   targetID,
			TargetName: targetName,
			DataPath:   DataPathFor(name),
		})
	}
}
