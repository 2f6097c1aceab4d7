package depsgraph

// DepsgraphBuilderOption is a functional option for configuring a Depsgraph.
// Use the With* functions to create options.
type DepsgraphBuilderOption func(dg *depsgraph)

// WithEvalWorkers sets the number of worker goroutines used for driver
// evaluation fan-out. Defaults to runtime.NumCPU()-1. Higher values may
// improve throughput on scenes with many driven objects; lower values reduce
// scheduling overhead for small scenes.
//
// Parameters:
//   - n: the number of evaluation workers (minimum 1)
//
// Returns:
//   - DepsgraphBuilderOption: option function to apply
func WithEvalWorkers(n int) DepsgraphBuilderOption {
	return func(dg *depsgraph) {
		if n < 1 {
			n = 1
		}
		dg.evalWorkers = n
	}
}
