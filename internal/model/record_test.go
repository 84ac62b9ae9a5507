package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumnRole(t *testing.T) {
	t.Parallel()

	columns := []string{"Entry No.", "Date Received", "Plant Name", "Material / Variety", "Address", "Dose (Gy)"}

	tests := []struct {
		name     string
		keywords []string
		want     string
		wantOK   bool
	}{
		{"single keyword", []string{"material"}, "Material / Variety", true},
		{"two keywords", []string{"date", "received"}, "Date Received", true},
		{"entry number", []string{"entry", "no"}, "Entry No.", true},
		{"plant name", []string{"plant", "name"}, "Plant Name", true},
		{"no match", []string{"shrinkwrap"}, "", false},
		{"no keywords", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveColumnRole(columns, tt.keywords)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumnRole_FirstMatchWins(t *testing.T) {
	t.Parallel()

	got, ok := ResolveColumnRole([]string{"Sender address", "Return address"}, []string{"address"})
	assert.True(t, ok)
	assert.Equal(t, "Sender address", got)
}

func TestResolveColumns_MissingRole(t *testing.T) {
	t.Parallel()

	cols := ResolveColumns([]string{"Address", "Dose"})
	assert.Equal(t, "Address", cols[RoleAddress])
	assert.Equal(t, "Dose", cols[RoleDose])
	assert.Empty(t, cols[RoleMaterial])

	rec := SourceRecord{Columns: []string{"Address", "Dose"}, Values: []any{"Vienna", "100 Gy"}}
	assert.Nil(t, cols.Value(rec, RoleMaterial))
	assert.Equal(t, "100 Gy", cols.Value(rec, RoleDose))
}

func TestSourceRecord_GetShortRow(t *testing.T) {
	t.Parallel()

	rec := SourceRecord{Columns: []string{"A", "B"}, Values: []any{"x"}}
	assert.Equal(t, "x", rec.Get("A"))
	assert.Nil(t, rec.Get("B"))
	assert.Nil(t, rec.Get("C"))
}

func TestSourceRecord_NonEmpty(t *testing.T) {
	t.Parallel()

	rec := SourceRecord{
		Columns: []string{"A", "B", "C", "D"},
		Values:  []any{"x", nil, "  ", 12.5},
	}
	assert.Equal(t, []Cell{{Column: "A", Value: "x"}, {Column: "D", Value: 12.5}}, rec.NonEmpty())
}
