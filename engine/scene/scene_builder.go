package scene

import (
	"github.com/kyokaz/quickvis-go/engine/object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scn)

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs; names are uniquified.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...object.Object) SceneBuilderOption {
	return func(s *scn) {
		for _, obj := range objects {
			s.addLocked(obj)
		}
	}
}
