package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTreatment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input any
		want  string
	}{
		{"50 Gy gamma", "GAMMA"},
		{"", ""},
		{nil, ""},
		{"12", "GAMMA"},
		{150.0, "GAMMA"},
		{"electron beam 200 Gy", "ELECTRON"},
		{"x-ray", "X-RAY"},
		{"EMS 0.5%", "EMS"},
		{"beam then gamma", "GAMMA"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(Text(tt.input), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyTreatment(tt.input))
		})
	}
}
