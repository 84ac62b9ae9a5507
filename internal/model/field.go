package model

import (
	"strconv"
	"strings"
)

// Output field names. The order of the output table is given by Schema.
const (
	FieldDateReceived     = "Date received"
	FieldIDAssigned       = "ID assigned"
	FieldFirstName        = "First name"
	FieldLastName         = "Last name"
	FieldPhone            = "Phone"
	FieldEmail            = "Email"
	FieldOrganizationName = "Name of organization"
	FieldOrganizationType = "Type of organization"
	FieldStreet           = "Street"
	FieldPOBox            = "P.O. Box"
	FieldCity             = "City"
	FieldCountry          = "Country"
	FieldTreatment        = "Treatment"
	FieldMaterialType     = "Type of material"
	FieldCommonName       = "Common name"
	FieldLatinName        = "Latin name"
	FieldVariety          = "Variety name species"
	FieldShrinkwrap       = "choose Shrinkwrap"
	FieldTotalBags        = "Total number of bags"
	FieldTargetTraits     = "Target trait(s)"
	FieldSamplesQuantity  = "Samples quantity species"
)

// MaxDoses is the number of dose slots in the output schema.
const MaxDoses = 10

// DoseField returns the column name of the i-th dose slot (1-based).
func DoseField(i int) string {
	return "dose " + strconv.Itoa(i)
}

// Schema is the fixed, ordered output column list.
var Schema = func() []string {
	cols := []string{
		FieldDateReceived,
		FieldIDAssigned,
		FieldFirstName,
		FieldLastName,
		FieldPhone,
		FieldEmail,
		FieldOrganizationName,
		FieldOrganizationType,
		FieldStreet,
		FieldPOBox,
		FieldCity,
		FieldCountry,
		FieldTreatment,
		FieldMaterialType,
		FieldCommonName,
		FieldLatinName,
		FieldVariety,
	}
	for i := 1; i <= MaxDoses; i++ {
		cols = append(cols, DoseField(i))
	}
	// Passthroughs, never populated.
	return append(cols,
		FieldShrinkwrap,
		FieldTotalBags,
		FieldTargetTraits,
		FieldSamplesQuantity,
	)
}()

// Fields is a partial or complete output record keyed by field name.
// Values are nil, string, int64, float64 or bool.
type Fields map[string]any

// Set stores v under key unless v is empty.
func (f Fields) Set(key string, v any) {
	if IsEmpty(v) {
		return
	}
	f[key] = v
}

// Has reports whether key holds a non-empty value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && !IsEmpty(v)
}

// Merge copies every key explicitly set in other into f, overwriting.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// HasDose reports whether any dose slot is set.
func (f Fields) HasDose() bool {
	for i := 1; i <= MaxDoses; i++ {
		if f.Has(DoseField(i)) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether a loosely-typed cell value counts as missing.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
