package species

import (
	"context"
	_ "embed"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/germplasm-cli/internal/model"
)

//go:embed species.yaml
var speciesYAML []byte

type entry struct {
	Name  string `yaml:"name"`
	Latin string `yaml:"latin"`
}

var table = func() []entry {
	var entries []entry
	if err := yaml.Unmarshal(speciesYAML, &entries); err != nil {
		panic("species: parse species.yaml: " + err.Error())
	}
	return entries
}()

// Static resolves species from a fixed, ordered lookup table. It never fails.
type Static struct{}

// NewStatic returns the lookup-table resolver.
func NewStatic() *Static {
	return &Static{}
}

// Resolve implements Resolver.
func (s *Static) Resolve(_ context.Context, plantName, varietyName string) (model.Species, error) {
	return s.Lookup(plantName, varietyName), nil
}

// Lookup returns the first table entry contained in plantName. Without a
// match the plant name is passed through as the common name.
func (s *Static) Lookup(plantName, varietyName string) model.Species {
	plantName = strings.TrimSpace(plantName)
	lower := strings.ToLower(plantName)
	for _, e := range table {
		if strings.Contains(lower, e.Name) {
			return model.Species{
				LatinName:   e.Latin,
				CommonName:  cases.Title(language.English).String(e.Name),
				VarietyName: varietyName,
			}
		}
	}
	return model.Species{
		CommonName:  plantName,
		VarietyName: varietyName,
	}
}
