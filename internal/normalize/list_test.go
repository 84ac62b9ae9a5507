package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDelimitedList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"empty string", "", []string{""}},
		{"missing", nil, []string{""}},
		{"comma and", "A, B and C", []string{"A", "B", "C"}},
		{"semicolon pipe", "A;B|C", []string{"A", "B", "C"}},
		{"ampersand", "Var 1 & Var 2", []string{"Var 1", "Var 2"}},
		{"ampersand without spaces kept", "R&D line", []string{"R&D line"}},
		{"and inside word kept", "Sandoval, Andes", []string{"Sandoval", "Andes"}},
		{"drops empties", "A,, ;B", []string{"A", "B"}},
		{"only delimiters", " , ; ", []string{""}},
		{"numeric cell", 12.0, []string{"12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitDelimitedList(tt.input))
		})
	}
}
