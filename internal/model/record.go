package model

import "strings"

// SourceRecord is one input row: an ordered mapping from column name to a
// loosely-typed cell value (nil, string, float64, int64, bool or time.Time).
type SourceRecord struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column, or nil when the column is
// absent or the row is short.
func (r SourceRecord) Get(column string) any {
	if column == "" {
		return nil
	}
	for i, c := range r.Columns {
		if c == column {
			if i < len(r.Values) {
				return r.Values[i]
			}
			return nil
		}
	}
	return nil
}

// Cell is a single non-empty column/value pair.
type Cell struct {
	Column string
	Value  any
}

// NonEmpty returns the row's non-empty cells in column order.
func (r SourceRecord) NonEmpty() []Cell {
	var cells []Cell
	for i, c := range r.Columns {
		if i >= len(r.Values) || IsEmpty(r.Values[i]) {
			continue
		}
		cells = append(cells, Cell{Column: c, Value: r.Values[i]})
	}
	return cells
}

// Role names a semantic column of the input file.
type Role string

const (
	RoleMaterial     Role = "material"
	RoleDateReceived Role = "date_received"
	RoleEntryNo      Role = "entry_no"
	RoleAddress      Role = "address"
	RolePlantName    Role = "plant_name"
	RoleDose         Role = "dose"
)

// RoleKeywords lists, per role, the substrings a header must all contain.
var RoleKeywords = map[Role][]string{
	RoleMaterial:     {"material"},
	RoleDateReceived: {"date", "received"},
	RoleEntryNo:      {"entry", "no"},
	RoleAddress:      {"address"},
	RolePlantName:    {"plant", "name"},
	RoleDose:         {"dose"},
}

// Roles is the order in which roles are resolved and reported.
var Roles = []Role{RoleMaterial, RoleDateReceived, RoleEntryNo, RoleAddress, RolePlantName, RoleDose}

// ResolveColumnRole returns the first column, in declaration order, whose
// lowercased name contains every keyword. ok is false when none matches.
func ResolveColumnRole(columns []string, keywords []string) (column string, ok bool) {
	if len(keywords) == 0 {
		return "", false
	}
	for _, c := range columns {
		lower := strings.ToLower(c)
		matched := true
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return c, true
		}
	}
	return "", false
}

// Columns maps each semantic role to the input column selected for it.
// A missing role maps to "".
type Columns map[Role]string

// ResolveColumns selects at most one column per role.
func ResolveColumns(columns []string) Columns {
	out := make(Columns, len(Roles))
	for _, role := range Roles {
		if c, ok := ResolveColumnRole(columns, RoleKeywords[role]); ok {
			out[role] = c
		}
	}
	return out
}

// Value returns rec's cell for role, or nil if the role has no column.
func (c Columns) Value(rec SourceRecord, role Role) any {
	return rec.Get(c[role])
}
