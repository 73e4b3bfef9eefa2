// Package zone holds the biome classification consumed by structure
// generation: zone names, density multipliers, and the zone-to-style tables
// each builder resolves exactly once at creation time.
package zone

import "structureforge/internal/gen/seeded"

type Name string

const (
	Forest      Name = "Forest"
	Desert      Name = "Desert"
	Mountains   Name = "Mountains"
	Ruins       Name = "Ruins"
	DarkSanctum Name = "Dark Sanctum"
	Swamp       Name = "Swamp"
	Terrant     Name = "Terrant"
)

// Default is returned whenever classification is unavailable or yields an
// unrecognized name.
const Default = Terrant

// Classifier maps a world position to a zone. Implemented by the terrain
// subsystem; absent in tests and in dataOnly pre-generation.
type Classifier interface {
	ZoneAt(x, z float64) Name
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(x, z float64) Name

func (f ClassifierFunc) ZoneAt(x, z float64) Name { return f(x, z) }

// At classifies through c, tolerating a nil classifier and unknown names by
// falling back to Default.
func At(c Classifier, x, z float64) Name {
	if c == nil {
		return Default
	}
	n := c.ZoneAt(x, z)
	if !known(n) {
		return Default
	}
	return n
}

func known(n Name) bool {
	switch n {
	case Forest, Desert, Mountains, Ruins, DarkSanctum, Swamp, Terrant:
		return true
	}
	return false
}

// Multipliers scales structure density per zone. Missing zones scale by 1.
type Multipliers map[Name]float64

func DefaultMultipliers() Multipliers {
	return Multipliers{
		Forest:      1.2,
		Desert:      0.7,
		Mountains:   0.5,
		Ruins:       1.5,
		DarkSanctum: 0.8,
	}
}

func (m Multipliers) For(n Name) float64 {
	if v, ok := m[n]; ok {
		return v
	}
	return 1.0
}

// StyleTable resolves a discrete style variant from a zone. Resolution
// happens once at creation and the result is committed into the record;
// reload never re-rolls it. Zones listed in RandomPool pick uniformly from
// the pool instead of the fixed mapping.
type StyleTable struct {
	ByZone     map[Name]string
	RandomPool map[Name][]string
	Fallback   string
}

func (t StyleTable) Resolve(n Name, rng *seeded.Source) string {
	if pool, ok := t.RandomPool[n]; ok && len(pool) > 0 {
		return rng.Pick(pool)
	}
	if s, ok := t.ByZone[n]; ok {
		return s
	}
	return t.Fallback
}

// BridgeStyles is the canonical bridge palette mapping.
func BridgeStyles() StyleTable {
	return StyleTable{
		ByZone: map[Name]string{
			Forest:      "wooden",
			Desert:      "sandstone",
			Mountains:   "stone",
			Swamp:       "wooden",
			Ruins:       "ancient",
			DarkSanctum: "obsidian",
		},
		RandomPool: map[Name][]string{
			Terrant: {"stone", "wooden"},
		},
		Fallback: "wooden",
	}
}

// HouseStyles covers village buildings and free-standing houses.
func HouseStyles() StyleTable {
	return StyleTable{
		ByZone: map[Name]string{
			Forest:      "timber",
			Desert:      "adobe",
			Mountains:   "stone",
			Swamp:       "stilt",
			Ruins:       "ancient",
			DarkSanctum: "obsidian",
		},
		Fallback: "timber",
	}
}

// TowerStyles covers watchtowers, both free-standing and village-attached.
func TowerStyles() StyleTable {
	return StyleTable{
		ByZone: map[Name]string{
			Desert:      "sandstone",
			Mountains:   "stone",
			Ruins:       "ancient",
			DarkSanctum: "obsidian",
		},
		Fallback: "stone",
	}
}

// RuinsStyles covers collapsed structures.
func RuinsStyles() StyleTable {
	return StyleTable{
		ByZone: map[Name]string{
			Desert:      "sunken",
			Swamp:       "overgrown",
			DarkSanctum: "scorched",
		},
		Fallback: "weathered",
	}
}
