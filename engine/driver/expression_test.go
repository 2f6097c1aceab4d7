package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyokaz/quickvis-go/common"
)

func TestExpressionEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		vars   map[string]common.Value
		want   bool
	}{
		{"bare bool property", "visible", map[string]common.Value{"visible": common.NewBool(true)}, true},
		{"negated bool property", "not visible", map[string]common.Value{"visible": common.NewBool(true)}, false},
		{"int truthiness", "switch", map[string]common.Value{"switch": common.NewInt(0)}, false},
		{"int equality match", "not (switch == 1)", map[string]common.Value{"switch": common.NewInt(1)}, false},
		{"int equality miss", "not (switch == 1)", map[string]common.Value{"switch": common.NewInt(0)}, true},
		{"bool against int literal", "visible == 1", map[string]common.Value{"visible": common.NewBool(true)}, true},
		{"literal true", "True", nil, true},
		{"literal false", "not False", nil, true},
		{"double negation", "not not visible", map[string]common.Value{"visible": common.NewBool(true)}, true},
		{"nested parens", "not ((switch == 0))", map[string]common.Value{"switch": common.NewInt(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseExpression(tt.source)
			require.NoError(t, err)

			got, err := expr.Evaluate(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpressionParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"single equals", "switch = 1"},
		{"unbalanced paren", "not (switch == 1"},
		{"trailing input", "visible visible"},
		{"dangling operator", "switch =="},
		{"bad character", "visible && hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpression(tt.source)
			assert.Error(t, err)
		})
	}
}

func TestExpressionUndefinedVariable(t *testing.T) {
	expr, err := ParseExpression("not ghost")
	require.NoError(t, err)

	_, err = expr.Evaluate(map[string]common.Value{})
	assert.ErrorContains(t, err, "ghost")
}

func TestExpressionVariableNames(t *testing.T) {
	expr, err := ParseExpression("not (outfit == 1)")
	require.NoError(t, err)
	assert.Equal(t, []string{"outfit"}, expr.VariableNames())
	assert.Equal(t, "not (outfit == 1)", expr.Source())
}

func TestInvertExpression(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"not visible", "visible"},
		{"visible", "not (visible)"},
		{"not (switch == 1)", "(switch == 1)"},
		{"switch == 1", "not (switch == 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, InvertExpression(tt.source))
		})
	}
}

func TestInvertExpressionRoundTrip(t *testing.T) {
	// Inverting twice must flip the result back for every shape the binding
	// manager emits.
	vars := map[string]common.Value{
		"visible": common.NewBool(true),
		"switch":  common.NewInt(1),
	}
	for _, source := range []string{"not visible", "visible", "not (switch == 1)"} {
		once := InvertExpression(source)
		twice := InvertExpression(once)

		orig, err := ParseExpression(source)
		require.NoError(t, err)
		back, err := ParseExpression(twice)
		require.NoError(t, err)

		wantRes, err := orig.Evaluate(vars)
		require.NoError(t, err)
		gotRes, err := back.Evaluate(vars)
		require.NoError(t, err)
		assert.Equal(t, wantRes, gotRes, "source %q", source)

		flipped, err := ParseExpression(once)
		require.NoError(t, err)
		flippedRes, err := flipped.Evaluate(vars)
		require.NoError(t, err)
		assert.Equal(t, !wantRes, flippedRes, "inverted %q", source)
	}
}
