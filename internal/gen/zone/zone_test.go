package zone

import (
	"testing"

	"structureforge/internal/gen/seeded"
)

func TestAtNilClassifierFallsBack(t *testing.T) {
	if got := At(nil, 10, 10); got != Default {
		t.Fatalf("nil classifier: got %q, want %q", got, Default)
	}
}

func TestAtUnknownNameFallsBack(t *testing.T) {
	c := ClassifierFunc(func(x, z float64) Name { return Name("Lava Fields") })
	if got := At(c, 0, 0); got != Default {
		t.Fatalf("unknown zone: got %q, want %q", got, Default)
	}
}

func TestAtKnownNamePassesThrough(t *testing.T) {
	c := ClassifierFunc(func(x, z float64) Name { return Swamp })
	if got := At(c, 0, 0); got != Swamp {
		t.Fatalf("got %q, want %q", got, Swamp)
	}
}

func TestMultiplierDefaults(t *testing.T) {
	m := DefaultMultipliers()
	cases := []struct {
		zone Name
		want float64
	}{
		{Forest, 1.2},
		{Desert, 0.7},
		{Mountains, 0.5},
		{Ruins, 1.5},
		{DarkSanctum, 0.8},
		{Terrant, 1.0},
		{Name("Unknown"), 1.0},
	}
	for _, c := range cases {
		if got := m.For(c.zone); got != c.want {
			t.Errorf("multiplier for %q: got %v, want %v", c.zone, got, c.want)
		}
	}
}

func TestBridgeStyleMapping(t *testing.T) {
	tbl := BridgeStyles()
	rng := seeded.New(1)
	cases := []struct {
		zone Name
		want string
	}{
		{Forest, "wooden"},
		{Desert, "sandstone"},
		{Mountains, "stone"},
		{Swamp, "wooden"},
		{Ruins, "ancient"},
		{DarkSanctum, "obsidian"},
		{Name("Nowhere"), "wooden"},
	}
	for _, c := range cases {
		if got := tbl.Resolve(c.zone, rng); got != c.want {
			t.Errorf("bridge style for %q: got %q, want %q", c.zone, got, c.want)
		}
	}
}

func TestBridgeStyleTerrantPicksFromPool(t *testing.T) {
	tbl := BridgeStyles()
	rng := seeded.New(99)
	for i := 0; i < 50; i++ {
		got := tbl.Resolve(Terrant, rng)
		if got != "stone" && got != "wooden" {
			t.Fatalf("Terrant bridge style %q not in pool", got)
		}
	}
}

func TestStyleResolutionDeterministic(t *testing.T) {
	tbl := BridgeStyles()
	a := tbl.Resolve(Terrant, seeded.New(4242))
	b := tbl.Resolve(Terrant, seeded.New(4242))
	if a != b {
		t.Fatalf("same seed resolved different styles: %q vs %q", a, b)
	}
}
