package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// TowerParams are the committed parameters of a watchtower.
type TowerParams struct {
	Height float64 `json:"height"`
	Levels int     `json:"levels"`
	Radius float64 `json:"radius"`
}

func PlanTower(zn zone.Name, rng *seeded.Source) (string, TowerParams) {
	style := zone.TowerStyles().Resolve(zn, rng)
	levels := rng.IntBetween(2, 5)
	return style, TowerParams{
		Height: float64(levels) * rng.Between(3.5, 5),
		Levels: levels,
		Radius: rng.Between(3, 5),
	}
}

func BuildTower(style string, p TowerParams) scene.Node {
	// One shaft segment per level plus the battlement cap.
	return node("tower", style, p.Radius*2, p.Radius*2, p.Levels+1)
}
