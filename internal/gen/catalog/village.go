package catalog

import (
	"math"
	"sort"

	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// Village layout strategies.
const (
	LayoutCircular = "circular"
	LayoutGrid     = "grid"
	LayoutRandom   = "random"
)

// Sub-structure kinds inside a village. Only villages nest these; they are
// not top-level structure kinds.
const (
	SubHouse  = "house"
	SubWell   = "well"
	SubMarket = "market"
	SubTower  = "tower"
)

// VillageSub is one committed sub-placement, offset from the village center.
type VillageSub struct {
	Kind     string     `json:"kind"`
	DX       float64    `json:"dx"`
	DZ       float64    `json:"dz"`
	Style    string     `json:"style"`
	House    *HouseDims `json:"dimensions,omitempty"`
	Landmark bool       `json:"landmark,omitempty"`
}

// VillageParams are the committed parameters of a village. Path segments are
// deliberately absent: they are regenerated from the sub positions whenever
// the village is rebuilt.
type VillageParams struct {
	Layout string       `json:"layout"`
	Radius float64      `json:"radius"`
	Subs   []VillageSub `json:"subs"`
}

// PlanVillage rolls the committed village composition: a layout strategy,
// 4-8 houses arranged by it, and optional well / market / tower landmarks.
func PlanVillage(zn zone.Name, rng *seeded.Source) (string, VillageParams) {
	style := zone.HouseStyles().Resolve(zn, rng)
	layout := rng.Pick([]string{LayoutCircular, LayoutGrid, LayoutRandom})
	radius := rng.Between(18, 30)
	count := rng.IntBetween(4, 8)

	p := VillageParams{Layout: layout, Radius: radius}
	for i := 0; i < count; i++ {
		dx, dz := subOffset(layout, radius, i, count, rng)
		dims := HouseDims{
			Width:  rng.Between(5, 9),
			Depth:  rng.Between(5, 9),
			Height: rng.Between(4, 7),
		}
		p.Subs = append(p.Subs, VillageSub{
			Kind:  SubHouse,
			DX:    dx,
			DZ:    dz,
			Style: style,
			House: &dims,
		})
	}
	if rng.Float64() < 0.6 {
		p.Subs = append(p.Subs, VillageSub{Kind: SubWell, Style: "stone", Landmark: true})
	}
	if rng.Float64() < 0.4 {
		dx, dz := subOffset(LayoutRandom, radius*0.5, 0, 1, rng)
		p.Subs = append(p.Subs, VillageSub{Kind: SubMarket, DX: dx, DZ: dz, Style: style, Landmark: true})
	}
	if rng.Float64() < 0.3 {
		towerStyle := zone.TowerStyles().Resolve(zn, rng)
		p.Subs = append(p.Subs, VillageSub{Kind: SubTower, DX: radius, DZ: 0, Style: towerStyle, Landmark: true})
	}
	return style, p
}

func subOffset(layout string, radius float64, i, count int, rng *seeded.Source) (float64, float64) {
	switch layout {
	case LayoutCircular:
		angle := 2 * math.Pi * float64(i) / float64(count)
		r := radius * rng.Between(0.8, 1.0)
		return r * math.Cos(angle), r * math.Sin(angle)
	case LayoutGrid:
		cols := int(math.Ceil(math.Sqrt(float64(count))))
		spacing := 2 * radius / float64(cols+1)
		col := i % cols
		row := i / cols
		jx := rng.Between(-2, 2)
		jz := rng.Between(-2, 2)
		return -radius + spacing*float64(col+1) + jx, -radius + spacing*float64(row+1) + jz
	default: // LayoutRandom
		angle := rng.Between(0, 2*math.Pi)
		r := radius * math.Sqrt(rng.Float64())
		return r * math.Cos(angle), r * math.Sin(angle)
	}
}

// BuildVillage constructs the village node from committed parameters and
// emits connective path segments through the decorator. Paths are decoration
// only and regenerate deterministically from the sub positions.
func BuildVillage(style string, p VillageParams, x, z float64, dec Decorator) scene.Node {
	parts := 0
	for _, sub := range p.Subs {
		switch sub.Kind {
		case SubHouse:
			parts += 3
		case SubTower:
			parts += 4
		default:
			parts += 2
		}
		if dec != nil {
			switch sub.Kind {
			case SubWell:
				dec.CreateQuestMarker(x+sub.DX, z+sub.DZ, "village_well")
			case SubMarket:
				dec.CreateTreasureChest(x+sub.DX, z+sub.DZ)
			}
		}
	}
	if dec != nil {
		for _, seg := range VillagePaths(p) {
			dec.CreatePathSegment(x+seg[0], z+seg[1], x+seg[2], z+seg[3])
			parts++
		}
	}
	return node("village", style, p.Radius*2, p.Radius*2, parts)
}

// VillagePaths connects each sub-structure to its two nearest neighbors,
// with landmark subs (well, market, tower) taken as connection targets ahead
// of any distance ordering. Segments are center-relative [x1 z1 x2 z2],
// deduplicated as undirected pairs.
func VillagePaths(p VillageParams) [][4]float64 {
	n := len(p.Subs)
	if n < 2 {
		return nil
	}
	type edge struct{ a, b int }
	seen := map[edge]bool{}
	var out [][4]float64

	for i := 0; i < n; i++ {
		targets := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				targets = append(targets, j)
			}
		}
		si := p.Subs[i]
		sort.SliceStable(targets, func(a, b int) bool {
			ta, tb := p.Subs[targets[a]], p.Subs[targets[b]]
			if ta.Landmark != tb.Landmark {
				return ta.Landmark
			}
			da := dist2(si, ta)
			db := dist2(si, tb)
			if da != db {
				return da < db
			}
			return targets[a] < targets[b]
		})
		limit := 2
		if limit > len(targets) {
			limit = len(targets)
		}
		for _, j := range targets[:limit] {
			e := edge{i, j}
			if j < i {
				e = edge{j, i}
			}
			if seen[e] {
				continue
			}
			seen[e] = true
			sj := p.Subs[j]
			out = append(out, [4]float64{si.DX, si.DZ, sj.DX, sj.DZ})
		}
	}
	return out
}

func dist2(a, b VillageSub) float64 {
	dx := a.DX - b.DX
	dz := a.DZ - b.DZ
	return dx*dx + dz*dz
}
