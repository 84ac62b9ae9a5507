package address

import (
	_ "embed"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

type countryTables struct {
	Countries  []string `yaml:"countries"`
	Common     []string `yaml:"common"`
	Connectors []string `yaml:"connectors"`
}

var (
	// countryTokens holds every word of every country name, standalone or
	// taken from a multi-word name, minus connector words.
	countryTokens map[string]bool
	// commonCountries is the short list used for a lone leftover part.
	commonCountries []string
)

func init() {
	var tables countryTables
	if err := yaml.Unmarshal(countriesYAML, &tables); err != nil {
		panic("address: parse countries.yaml: " + err.Error())
	}

	connectors := make(map[string]bool, len(tables.Connectors))
	for _, c := range tables.Connectors {
		connectors[c] = true
	}

	countryTokens = make(map[string]bool, len(tables.Countries)*2)
	for _, name := range tables.Countries {
		for _, tok := range strings.Fields(name) {
			tok = foldWord(tok)
			if tok != "" && !connectors[tok] {
				countryTokens[tok] = true
			}
		}
	}
	commonCountries = tables.Common
}

// titles are honorifics dropped from names and organization names.
var titles = map[string]bool{
	"dr":        true,
	"prof":      true,
	"mr":        true,
	"mrs":       true,
	"ms":        true,
	"professor": true,
	"doctor":    true,
}

type orgKeyword struct {
	keyword string
	orgType string
}

// orgKeywords is scanned in order; the first keyword contained in a part
// decides the organization type.
var orgKeywords = []orgKeyword{
	{"university", "Academic"},
	{"institute", "Research"},
	{"research", "Research"},
	{"laboratory", "Research"},
	{"lab", "Research"},
	{"center", "Research"},
	{"centre", "Research"},
	{"college", "Academic"},
	{"school", "Academic"},
	{"department", "Government"},
	{"ministry", "Government"},
	{"company", "Commercial"},
	{"corp", "Commercial"},
	{"ltd", "Commercial"},
	{"inc", "Commercial"},
	{"foundation", "Non-profit"},
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldWord lowercases w, strips diacritics, and trims surrounding
// punctuation so "Türkiye," compares equal to "turkiye".
func foldWord(w string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(w))
	if err != nil {
		folded = strings.ToLower(w)
	}
	return strings.TrimFunc(folded, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
