package depsgraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/driver"
	"github.com/kyokaz/quickvis-go/engine/object"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

// rig builds a scene with one controller empty driving two meshes through an
// integer switch property: Outfit_A shows at 1, Outfit_B shows at 0.
func rig(t *testing.T) (scene.Scene, object.Object, object.Object, object.Object) {
	t.Helper()

	s := scene.NewScene("Rig")
	controller := object.NewObject(
		object.WithName("Controller"),
		object.WithKind(object.KindEmpty),
		object.WithProperty("outfit", common.NewInt(1)),
	)
	s.Add(controller)

	attach := func(name string, visibleAt int64) object.Object {
		mesh := object.NewObject(object.WithName(name))
		s.Add(mesh)
		for _, channel := range driver.VisibilityChannels {
			d, err := driver.NewDriver(
				driver.WithChannel(channel),
				driver.WithExpression(fmt.Sprintf("not (outfit == %d)", visibleAt)),
				driver.WithSingleProperty("outfit", controller.ID(), controller.Name()),
			)
			require.NoError(t, err)
			mesh.AddDriver(d)
		}
		return mesh
	}

	return s, controller, attach("Outfit_A", 1), attach("Outfit_B", 0)
}

func TestDepsgraphPanicsOnNilScene(t *testing.T) {
	assert.Panics(t, func() { NewDepsgraph(nil) })
}

func TestDepsgraphUpdatePropagates(t *testing.T) {
	s, controller, a, b := rig(t)
	dg := NewDepsgraph(s)

	dg.Tag(controller.ID(), "outfit")
	evaluated := dg.Update()
	assert.Equal(t, 4, evaluated)

	assert.False(t, a.HideViewport())
	assert.False(t, a.HideRender())
	assert.True(t, b.HideViewport())
	assert.True(t, b.HideRender())

	controller.SetProperty("outfit", common.NewInt(0))
	dg.Tag(controller.ID(), "outfit")
	dg.Update()

	assert.True(t, a.HideViewport())
	assert.False(t, b.HideViewport())
}

func TestDepsgraphUpdateWithoutTagsIsNoop(t *testing.T) {
	s, _, _, _ := rig(t)
	dg := NewDepsgraph(s)
	assert.Equal(t, 0, dg.Update())
}

func TestDepsgraphTagUnrelatedProperty(t *testing.T) {
	s, controller, a, _ := rig(t)
	dg := NewDepsgraph(s)

	dg.Tag(controller.ID(), "unrelated")
	assert.Equal(t, 0, dg.Update())
	assert.False(t, a.HideViewport())
}

func TestDepsgraphEvaluateAll(t *testing.T) {
	s, _, a, b := rig(t)
	dg := NewDepsgraph(s)

	evaluated := dg.EvaluateAll()
	assert.Equal(t, 4, evaluated)
	assert.False(t, a.HideViewport())
	assert.True(t, b.HideViewport())
}

func TestDepsgraphDanglingTargetLeavesChannelUnchanged(t *testing.T) {
	s, controller, a, _ := rig(t)
	dg := NewDepsgraph(s)
	dg.EvaluateAll()
	require.False(t, a.HideViewport())

	// Remove the controller: the driver can no longer resolve, so the mesh
	// keeps its last evaluated state instead of flickering.
	s.Remove(controller.ID())
	dg.Tag(controller.ID(), "outfit")
	dg.Update()
	assert.False(t, a.HideViewport())
}

func TestDepsgraphSkipsDisabledObjects(t *testing.T) {
	s, controller, _, b := rig(t)
	dg := NewDepsgraph(s)
	b.SetEnabled(false)

	dg.Tag(controller.ID(), "outfit")
	dg.Update()
	assert.False(t, b.HideViewport())
}

func TestDepsgraphRebuildPicksUpNewDrivers(t *testing.T) {
	s, controller, _, _ := rig(t)
	dg := NewDepsgraph(s)

	late := object.NewObject(object.WithName("Late"))
	s.Add(late)
	d, err := driver.NewDriver(
		driver.WithExpression("not (outfit == 1)"),
		driver.WithSingleProperty("outfit", controller.ID(), controller.Name()),
	)
	require.NoError(t, err)
	late.AddDriver(d)

	// Not indexed until Rebuild.
	dg.Tag(controller.ID(), "outfit")
	dg.Update()
	assert.NotContains(t, names(dg.DependentObjects(controller.ID(), "outfit")), "Late")

	dg.Rebuild()
	assert.Contains(t, names(dg.DependentObjects(controller.ID(), "outfit")), "Late")
}

func TestDepsgraphDependentObjects(t *testing.T) {
	s, controller, a, b := rig(t)
	dg := NewDepsgraph(s)

	dependents := dg.DependentObjects(controller.ID(), "outfit")
	assert.Equal(t, []string{a.Name(), b.Name()}, names(dependents))

	assert.Empty(t, dg.DependentObjects(controller.ID(), "ghost"))
}

func TestDepsgraphWithEvalWorkers(t *testing.T) {
	s, controller, a, _ := rig(t)
	dg := NewDepsgraph(s, WithEvalWorkers(1))

	dg.Tag(controller.ID(), "outfit")
	assert.Equal(t, 4, dg.Update())
	assert.False(t, a.HideViewport())
}

func names(objects []object.Object) []string {
	out := make([]string, 0, len(objects))
	for _, obj := range objects {
		out = append(out, obj.Name())
	}
	return out
}
