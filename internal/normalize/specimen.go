package normalize

import "strings"

// Material types returned by ClassifySpecimenType.
const (
	MaterialSeed          = "Seed"
	MaterialCutting       = "Cutting"
	MaterialLeaf          = "Leaf"
	MaterialRootTuber     = "Root/Tuber"
	MaterialFruit         = "Fruit"
	MaterialPollen        = "Pollen"
	MaterialTissueCulture = "Tissue Culture"
)

type specimenGroup struct {
	material string
	keywords []string
}

// specimenGroups is in priority order.
var specimenGroups = []specimenGroup{
	{MaterialSeed, []string{"seed", "grain", "kernel", "caryopsis"}},
	{MaterialCutting, []string{"cutting", "scion", "stem", "budwood", "sett"}},
	{MaterialLeaf, []string{"leaf", "leaves", "foliage"}},
	{MaterialRootTuber, []string{"root", "tuber", "rhizome", "bulb", "corm", "stolon"}},
	{MaterialFruit, []string{"fruit", "berry", "pod"}},
	{MaterialPollen, []string{"pollen"}},
	{MaterialTissueCulture, []string{"tissue culture", "in vitro", "in-vitro", "plantlet", "callus", "explant"}},
}

// ClassifySpecimenType infers the kind of plant material shipped from the
// plant-name and material cells. It defaults to Seed.
func ClassifySpecimenType(plant, material any) string {
	combined := strings.ToLower(Text(plant)) + " | " + strings.ToLower(Text(material))
	for _, g := range specimenGroups {
		for _, kw := range g.keywords {
			if strings.Contains(combined, kw) {
				return g.material
			}
		}
	}
	return MaterialSeed
}
