package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
)

// MountainParams are the committed parameters of a mountain formation. The
// noise seed and roughness drive the terrain-like mesh perturbation, so a
// reloaded mountain deforms identically to the one that was saved.
type MountainParams struct {
	Radius    float64 `json:"radius"`
	Height    float64 `json:"height"`
	NoiseSeed int64   `json:"noiseSeed"`
	Roughness float64 `json:"roughness"`
	Rings     int     `json:"rings"`
}

func PlanMountain(rng *seeded.Source) MountainParams {
	return MountainParams{
		Radius:    rng.Between(20, 45),
		Height:    rng.Between(25, 60),
		NoiseSeed: int64(rng.Uint64()),
		Roughness: rng.Between(0.2, 0.5),
		Rings:     rng.IntBetween(4, 7),
	}
}

// Mountains carry no zone style; the rock palette follows the zone at render
// time and is not a committed parameter.
func BuildMountain(p MountainParams) scene.Node {
	return node("mountain", "rock", p.Radius*2, p.Radius*2, p.Rings)
}
