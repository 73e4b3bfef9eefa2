package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// RuinsParams are the committed parameters of a collapsed structure.
type RuinsParams struct {
	Radius   float64 `json:"radius"`
	Pieces   int     `json:"pieces"`
	Collapse float64 `json:"collapse"` // 0 = mostly standing, 1 = rubble
}

func PlanRuins(zn zone.Name, rng *seeded.Source) (string, RuinsParams) {
	style := zone.RuinsStyles().Resolve(zn, rng)
	return style, RuinsParams{
		Radius:   rng.Between(5, 12),
		Pieces:   rng.IntBetween(3, 9),
		Collapse: rng.Between(0.2, 0.9),
	}
}

func BuildRuins(style string, p RuinsParams) scene.Node {
	return node("ruins", style, p.Radius*2, p.Radius*2, p.Pieces)
}
