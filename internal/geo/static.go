package geo

import "strings"

// Place is a known settlement with pre-resolved coordinates and adm4 code.
type Place struct {
	Name       string
	Lat        float64
	Lon        float64
	RegionCode string
}

// staticPlaces is the fast path for the settlements subscribers ask for most.
// Keys are normalized names.
var staticPlaces = map[string]Place{
	"banda aceh":   {Name: "Banda Aceh", Lat: 5.5483, Lon: 95.3238, RegionCode: "11.71.01.1001"},
	"sabang":       {Name: "Sabang", Lat: 5.8926, Lon: 95.3192, RegionCode: "11.72.01.1001"},
	"lhokseumawe":  {Name: "Lhokseumawe", Lat: 5.1801, Lon: 97.1507, RegionCode: "11.73.01.1001"},
	"langsa":       {Name: "Langsa", Lat: 4.4683, Lon: 97.9683, RegionCode: "11.74.01.1001"},
	"meulaboh":     {Name: "Meulaboh", Lat: 4.1363, Lon: 96.1285, RegionCode: "11.05.01.1001"},
	"sigli":        {Name: "Sigli", Lat: 5.3848, Lon: 95.9609, RegionCode: "11.07.01.1001"},
	"takengon":     {Name: "Takengon", Lat: 4.6231, Lon: 96.8432, RegionCode: "11.04.01.1001"},
	"subulussalam": {Name: "Subulussalam", Lat: 2.6422, Lon: 98.0042, RegionCode: "11.75.01.1001"},
}

// lookupStatic matches a normalized name against the static table, first
// exactly, then by containment in either direction.
func lookupStatic(norm string) (Place, bool) {
	if p, ok := staticPlaces[norm]; ok {
		return p, true
	}
	for key, p := range staticPlaces {
		if strings.Contains(norm, key) || strings.Contains(key, norm) {
			return p, true
		}
	}
	return Place{}, false
}
