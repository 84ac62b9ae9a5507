package normalize

import (
	"strings"
	"unicode"
)

// treatmentKeywords is scanned in order; the first keyword found anywhere in
// the text wins regardless of where it occurs.
var treatmentKeywords = []string{
	"GAMMA",
	"ELECTRON",
	"X-RAY",
	"NEUTRON",
	"PROTON",
	"BETA",
	"ALPHA",
	"ION",
	"BEAM",
	"RADIATION",
	"IRRADIATION",
	"EMS",
	"CHEMICAL",
}

// defaultTreatment is assumed when the dose text carries a number but names
// no mutagen.
const defaultTreatment = "GAMMA"

// ClassifyTreatment derives the mutagenic treatment from dose text.
func ClassifyTreatment(v any) string {
	upper := strings.ToUpper(Text(v))
	if upper == "" {
		return ""
	}
	for _, kw := range treatmentKeywords {
		if strings.Contains(upper, kw) {
			return kw
		}
	}
	if strings.ContainsFunc(upper, unicode.IsDigit) {
		return defaultTreatment
	}
	return ""
}
