package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// HouseDims are the committed dimensions of a house, rolled once at
// placement and persisted.
type HouseDims struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// PlanHouse rolls the committed parameters for a house in the given zone.
func PlanHouse(zn zone.Name, rng *seeded.Source) (style string, dims HouseDims) {
	style = zone.HouseStyles().Resolve(zn, rng)
	dims = HouseDims{
		Width:  rng.Between(6, 14),
		Depth:  rng.Between(6, 14),
		Height: rng.Between(4, 10),
	}
	return style, dims
}

// BuildHouse constructs the node for committed house parameters. Position is
// set by the caller once terrain height is resolved.
func BuildHouse(style string, d HouseDims) scene.Node {
	// Walls, roof, door; taller houses get an upper floor.
	parts := 3
	if d.Height >= 7 {
		parts++
	}
	return node("house", style, d.Width, d.Depth, parts)
}
