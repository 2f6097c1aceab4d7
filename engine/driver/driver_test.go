package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyokaz/quickvis-go/common"
)

// mapResolver resolves property lookups from a static table.
type mapResolver map[uint64]map[string]common.Value

func (m mapResolver) PropertyValue(id uint64, property string) (common.Value, bool) {
	props, ok := m[id]
	if !ok {
		return common.Value{}, false
	}
	v, ok := props[property]
	return v, ok
}

func TestDataPathRoundTrip(t *testing.T) {
	path := DataPathFor("show_helmet")
	assert.Equal(t, `["show_helmet"]`, path)

	name, ok := PropertyFromDataPath(path)
	require.True(t, ok)
	assert.Equal(t, "show_helmet", name)
}

func TestPropertyFromDataPathMalformed(t *testing.T) {
	for _, path := range []string{"", "show_helmet", `["show_helmet"`, `show_helmet"]`, `[""]`} {
		_, ok := PropertyFromDataPath(path)
		assert.False(t, ok, "path %q", path)
	}
}

func TestNewDriverDefaults(t *testing.T) {
	d, err := NewDriver()
	require.NoError(t, err)
	assert.Equal(t, ChannelHideViewport, d.Channel())
	assert.Equal(t, "False", d.Expression())

	hidden, err := d.Evaluate(mapResolver{})
	require.NoError(t, err)
	assert.False(t, hidden)
}

func TestNewDriverRejectsBadExpression(t *testing.T) {
	_, err := NewDriver(WithExpression("not ("))
	assert.Error(t, err)
}

func TestDriverEvaluate(t *testing.T) {
	resolver := mapResolver{
		7: {"visible": common.NewBool(true)},
	}

	d, err := NewDriver(
		driverOptions("not visible", 7, "Controller")...,
	)
	require.NoError(t, err)

	hidden, err := d.Evaluate(resolver)
	require.NoError(t, err)
	assert.False(t, hidden)

	resolver[7]["visible"] = common.NewBool(false)
	hidden, err = d.Evaluate(resolver)
	require.NoError(t, err)
	assert.True(t, hidden)
}

func TestDriverEvaluateMissingTarget(t *testing.T) {
	d, err := NewDriver(driverOptions("not visible", 42, "Gone")...)
	require.NoError(t, err)

	_, err = d.Evaluate(mapResolver{})
	assert.Error(t, err)
}

func TestDriverSetExpressionKeepsOldOnError(t *testing.T) {
	d, err := NewDriver(WithExpression("not visible"))
	require.NoError(t, err)

	assert.Error(t, d.SetExpression("=="))
	assert.Equal(t, "not visible", d.Expression())
}

func TestDriverInvert(t *testing.T) {
	resolver := mapResolver{
		3: {"visible": common.NewBool(true)},
	}
	d, err := NewDriver(driverOptions("not visible", 3, "Cube")...)
	require.NoError(t, err)

	require.NoError(t, d.Invert())
	assert.Equal(t, "visible", d.Expression())

	hidden, err := d.Evaluate(resolver)
	require.NoError(t, err)
	assert.True(t, hidden)
}

func TestDriverReferencesTarget(t *testing.T) {
	d, err := NewDriver(driverOptions("not visible", 9, "Empty")...)
	require.NoError(t, err)
	assert.True(t, d.ReferencesTarget(9))
	assert.False(t, d.ReferencesTarget(10))
}

func driverOptions(expression string, targetID uint64, targetName string) []DriverBuilderOption {
	return []DriverBuilderOption{
		WithExpression(expression),
		WithSingleProperty("visible", targetID, targetName),
	}
}
