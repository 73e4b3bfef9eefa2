package catalog

import (
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// BridgeParams are the committed parameters of a bridge span.
type BridgeParams struct {
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
	Arched  bool    `json:"arched"`
	Heading float64 `json:"heading"` // radians on the X-Z plane
}

func PlanBridge(zn zone.Name, rng *seeded.Source) (string, BridgeParams) {
	style := zone.BridgeStyles().Resolve(zn, rng)
	return style, BridgeParams{
		Length:  rng.Between(12, 30),
		Width:   rng.Between(3, 6),
		Arched:  rng.Float64() < 0.4,
		Heading: rng.Between(0, 6.283185307179586),
	}
}

func BuildBridge(style string, p BridgeParams) scene.Node {
	// Deck, two railings, two abutments; arches add supports.
	parts := 5
	if p.Arched {
		parts += 2
	}
	return node("bridge", style, p.Length, p.Width, parts)
}
