package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{"plain", "hello", []Segment{{Text: "hello"}}},
		{"single var", "${user}", []Segment{{Text: "user", Var: true}}},
		{"mixed", "Hi ${user}, bye", []Segment{
			{Text: "Hi "},
			{Text: "user", Var: true},
			{Text: ", bye"},
		}},
		{"adjacent vars", "${a}${b}", []Segment{
			{Text: "a", Var: true},
			{Text: "b", Var: true},
		}},
		{"unterminated stays literal", "cost ${price", []Segment{{Text: "cost ${price"}}},
		{"empty braces stay literal", "${}", []Segment{{Text: "${}"}}},
		{"malformed run before var", "${a${b}", []Segment{
			{Text: "${a"},
			{Text: "b", Var: true},
		}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.in))
		})
	}
}

func TestSegment_Key(t *testing.T) {
	name, ok := Segment{Text: "KEY_ENTER", Var: true}.Key()
	require.True(t, ok)
	assert.Equal(t, "ENTER", name)

	_, ok = Segment{Text: "KEY_ENTER"}.Key()
	assert.False(t, ok, "literal segment is not a key")

	_, ok = Segment{Text: "user", Var: true}.Key()
	assert.False(t, ok, "ordinary variable is not a key")
}

func TestHasVars(t *testing.T) {
	assert.True(t, HasVars("a ${b}"))
	assert.False(t, HasVars("plain"))
	assert.False(t, HasVars("${unclosed"))
}
