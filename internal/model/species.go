package model

// Species is the standardized identity of a plant entry.
type Species struct {
	LatinName   string `json:"latin_name"`
	CommonName  string `json:"common_name"`
	VarietyName string `json:"variety_name"`
}

// Fields returns the non-empty species fields keyed by output field name.
func (s Species) Fields() Fields {
	f := Fields{}
	f.Set(FieldLatinName, s.LatinName)
	f.Set(FieldCommonName, s.CommonName)
	f.Set(FieldVariety, s.VarietyName)
	return f
}
