package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueKinds(t *testing.T) {
	b := NewBool(true)
	assert.Equal(t, ValueKindBool, b.Kind())
	assert.True(t, b.Bool())
	assert.Equal(t, int64(1), b.Int())
	assert.Equal(t, "True", b.String())

	i := NewInt(0)
	assert.Equal(t, ValueKindInt, i.Kind())
	assert.False(t, i.Truthy())
	assert.Equal(t, "0", i.String())
}

func TestValueEqualAcrossKinds(t *testing.T) {
	assert.True(t, NewBool(true).Equal(NewInt(1)))
	assert.True(t, NewBool(false).Equal(NewInt(0)))
	assert.False(t, NewBool(true).Equal(NewInt(0)))
}

func TestValueFlipped(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"bool true", NewBool(true), NewBool(false)},
		{"bool false", NewBool(false), NewBool(true)},
		{"int zero", NewInt(0), NewInt(1)},
		{"int one", NewInt(1), NewInt(0)},
		{"int out of range collapses", NewInt(5), NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Flipped())
		})
	}
}

func TestValueYAMLRoundTrip(t *testing.T) {
	for _, v := range []Value{NewBool(true), NewBool(false), NewInt(0), NewInt(1)} {
		data, err := yaml.Marshal(v)
		require.NoError(t, err)

		var out Value
		require.NoError(t, yaml.Unmarshal(data, &out))
		assert.Equal(t, v, out)
	}
}

func TestParseValueKind(t *testing.T) {
	k, err := ParseValueKind("bool")
	require.NoError(t, err)
	assert.Equal(t, ValueKindBool, k)

	k, err = ParseValueKind("int")
	require.NoError(t, err)
	assert.Equal(t, ValueKindInt, k)

	_, err = ParseValueKind("float")
	assert.Error(t, err)
}

func TestClampValue(t *testing.T) {
	meta := IntPropertyMeta("switch", 1)
	assert.Equal(t, NewInt(1), ClampValue(NewInt(7), meta))
	assert.Equal(t, NewInt(0), ClampValue(NewInt(-3), meta))
	assert.Equal(t, NewBool(true), ClampValue(NewBool(true), meta))
}
