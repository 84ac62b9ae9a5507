package extract

import (
	"strings"

	"github.com/sells-group/germplasm-cli/internal/model"
	"github.com/sells-group/germplasm-cli/internal/normalize"
)

const instructions = `You are normalizing a germplasm shipment record for a mutation breeding laboratory.
The record below lists the non-empty cells of one spreadsheet row as "column: value" lines.

Extract the requester, organization, location, treatment and species details and respond with a
single JSON object and nothing else. Use exactly these keys, with an empty string for anything
that is not present:
  "First_name", "Last_name", "Phone", "Email",
  "Name_of_organization", "Type_of_organization" (Academic, Research, Government, Commercial or Non-profit),
  "Street", "PO_Box", "City", "Country",
  "Treatment" (the mutagen, e.g. GAMMA, ELECTRON, X-RAY, EMS),
  "Common_name", "Latin_name", "Variety_name_species",
  "Type_of_material" (Seed, Cutting, Leaf, Root/Tuber, Fruit, Pollen or Tissue Culture),
  "Doses" (an array of numeric doses without units, at most 10).

Record:
`

// responseKeys maps response keys onto output field names.
var responseKeys = []struct {
	key   string
	field string
}{
	{"First_name", model.FieldFirstName},
	{"Last_name", model.FieldLastName},
	{"Phone", model.FieldPhone},
	{"Email", model.FieldEmail},
	{"Name_of_organization", model.FieldOrganizationName},
	{"Type_of_organization", model.FieldOrganizationType},
	{"Street", model.FieldStreet},
	{"PO_Box", model.FieldPOBox},
	{"City", model.FieldCity},
	{"Country", model.FieldCountry},
	{"Treatment", model.FieldTreatment},
	{"Common_name", model.FieldCommonName},
	{"Latin_name", model.FieldLatinName},
	{"Variety_name_species", model.FieldVariety},
	{"Type_of_material", model.FieldMaterialType},
}

const dosesKey = "Doses"

// BuildPrompt serializes rec's non-empty cells into the extraction prompt.
func BuildPrompt(rec model.SourceRecord) string {
	var b strings.Builder
	b.WriteString(instructions)
	for _, cell := range rec.NonEmpty() {
		b.WriteString(cell.Column)
		b.WriteString(": ")
		b.WriteString(strings.ReplaceAll(normalize.Text(cell.Value), "\n", " "))
		b.WriteString("\n")
	}
	return b.String()
}

// mapResponse converts a decoded response into output fields. Non-scalar
// values other than the dose array are ignored.
func mapResponse(obj map[string]any) model.Fields {
	f := model.Fields{}
	for _, rk := range responseKeys {
		f.Set(rk.field, scalar(obj[rk.key]))
	}

	switch doses := obj[dosesKey].(type) {
	case []any:
		var set model.DoseSet
		i := 0
		for _, d := range doses {
			v := normalize.StripDoseUnit(scalar(d))
			if model.IsEmpty(v) {
				continue
			}
			if i >= model.MaxDoses {
				break
			}
			set[i] = v
			i++
		}
		f.Merge(set.Fields())
	case string, float64:
		f.Merge(normalize.SplitDoseList(doses).Fields())
	}
	return f
}

func scalar(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return normalize.Text(t)
	default:
		return nil
	}
}
