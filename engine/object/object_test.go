package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/driver"
)

func TestNewObjectDefaults(t *testing.T) {
	o := NewObject()
	assert.Equal(t, KindMesh, o.Kind())
	assert.True(t, o.Enabled())
	assert.False(t, o.HideViewport())
	assert.False(t, o.HideRender())

	sx, sy, sz := o.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
}

func TestObjectPropertyOrder(t *testing.T) {
	o := NewObject()
	o.SetProperty("visible", common.NewBool(true))
	o.SetProperty("outfit", common.NewInt(1))
	o.SetProperty("visible", common.NewBool(false)) // update keeps slot

	assert.Equal(t, []string{"visible", "outfit"}, o.PropertyNames())

	v, ok := o.Property("visible")
	require.True(t, ok)
	assert.Equal(t, common.NewBool(false), v)
}

func TestObjectRemoveProperty(t *testing.T) {
	o := NewObject(WithProperty("visible", common.NewBool(true)))
	o.SetPropertyMeta("visible", common.BoolPropertyMeta("toggle", true))

	assert.True(t, o.RemoveProperty("visible"))
	assert.False(t, o.HasProperty("visible"))
	_, ok := o.PropertyMeta("visible")
	assert.False(t, ok)
	assert.Empty(t, o.PropertyNames())

	assert.False(t, o.RemoveProperty("visible"))
}

func TestObjectHiddenPerChannel(t *testing.T) {
	o := NewObject()
	o.SetHidden(driver.ChannelHideViewport, true)
	assert.True(t, o.Hidden(driver.ChannelHideViewport))
	assert.False(t, o.Hidden(driver.ChannelHideRender))

	o.SetHidden(driver.ChannelHideRender, true)
	assert.True(t, o.HideRender())
}

func TestObjectAddDriverReplacesChannel(t *testing.T) {
	o := NewObject()

	first, err := driver.NewDriver(driver.WithExpression("True"))
	require.NoError(t, err)
	second, err := driver.NewDriver(driver.WithExpression("False"))
	require.NoError(t, err)
	render, err := driver.NewDriver(
		driver.WithChannel(driver.ChannelHideRender),
		driver.WithExpression("False"),
	)
	require.NoError(t, err)

	o.AddDriver(first)
	o.AddDriver(render)
	o.AddDriver(second) // same channel as first

	assert.Len(t, o.Drivers(), 2)
	assert.Equal(t, "False", o.DriverFor(driver.ChannelHideViewport).Expression())
	assert.NotNil(t, o.DriverFor(driver.ChannelHideRender))
}

func TestObjectRemoveDriver(t *testing.T) {
	o := NewObject()
	d, err := driver.NewDriver(driver.WithExpression("True"))
	require.NoError(t, err)
	o.AddDriver(d)

	assert.True(t, o.RemoveDriver(driver.ChannelHideViewport))
	assert.Nil(t, o.DriverFor(driver.ChannelHideViewport))
	assert.False(t, o.RemoveDriver(driver.ChannelHideViewport))
}
