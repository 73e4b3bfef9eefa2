package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
)

// SanctumParams are the committed parameters of a Dark Sanctum landmark.
type SanctumParams struct {
	Radius float64 `json:"radius"`
	BossID string  `json:"bossId"`
}

var sanctumBosses = []string{"hollow_king", "ash_matriarch", "veil_warden"}

func PlanSanctum(rng *seeded.Source) SanctumParams {
	return SanctumParams{
		Radius: rng.Between(15, 25),
		BossID: rng.Pick(sanctumBosses),
	}
}

// BuildSanctum constructs the landmark node. Placing a sanctum spawns its
// boss encounter trigger and a treasure chest through the decorator; both
// are skipped when no decorator is wired.
func BuildSanctum(p SanctumParams, x, z float64, dec Decorator) scene.Node {
	if dec != nil {
		dec.CreateBossSpawnPoint(x, z, p.BossID)
		dec.CreateTreasureChest(x, z)
	}
	// Central altar, four pillars, perimeter wall, two braziers.
	return node("darkSanctum", "obsidian", p.Radius*2, p.Radius*2, 8)
}
