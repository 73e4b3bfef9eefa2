package structures

import (
	"encoding/json"
	"testing"

	"structureforge/internal/gen/catalog"
)

func TestKeyRoundTrip(t *testing.T) {
	cases := []struct{ cx, cz int }{
		{0, 0}, {3, -4}, {-17, 22}, {-1, -1}, {1000, -1000},
	}
	for _, c := range cases {
		k := Key(c.cx, c.cz)
		cx, cz, err := ParseKey(k)
		if err != nil {
			t.Fatalf("parse %q: %v", k, err)
		}
		if cx != c.cx || cz != c.cz {
			t.Fatalf("key %q parsed to (%d,%d)", k, cx, cz)
		}
	}
}

func TestKeyFormat(t *testing.T) {
	if got := Key(3, -4); got != "3,-4" {
		t.Fatalf("key format %q, want %q", got, "3,-4")
	}
}

func TestParseKeyMalformed(t *testing.T) {
	for _, bad := range []string{"", "3", "3;4", "a,b", "3,"} {
		if _, _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) should fail", bad)
		}
	}
}

func TestKeyForPosition(t *testing.T) {
	cases := []struct {
		x, z float64
		want string
	}{
		{0, 0, "0,0"},
		{99.9, 99.9, "0,0"},
		{100, 0, "1,0"},
		{-0.5, -0.5, "-1,-1"},
		{-100, -100, "-1,-1"},
		{-100.5, 250, "-2,2"},
	}
	for _, c := range cases {
		if got := KeyForPosition(c.x, c.z, 100); got != c.want {
			t.Errorf("KeyForPosition(%v,%v) = %q, want %q", c.x, c.z, got, c.want)
		}
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	orig := Record{
		Kind:     catalog.KindVillage,
		Position: Position{X: 1, Z: 2},
		ChunkKey: "0,0",
		Style:    "timber",
		Village: &catalog.VillageParams{
			Layout: catalog.LayoutGrid,
			Radius: 20,
			Subs: []catalog.VillageSub{
				{Kind: catalog.SubHouse, DX: 1, DZ: 2, House: &catalog.HouseDims{Width: 6, Depth: 6, Height: 4}},
			},
		},
	}
	c := orig.clone()
	c.Village.Subs[0].House.Width = 99
	c.Village.Radius = 99
	if orig.Village.Subs[0].House.Width != 6 {
		t.Fatalf("clone shares sub-house dims with original")
	}
	if orig.Village.Radius != 20 {
		t.Fatalf("clone shares village params with original")
	}
}

func TestRecordJSONContract(t *testing.T) {
	rec := Record{
		Kind:     catalog.KindHouse,
		Position: Position{X: 10, Z: -20},
		ChunkKey: "0,-1",
		Style:    "adobe",
		House:    &catalog.HouseDims{Width: 8, Depth: 9, Height: 5},
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["type"] != "house" {
		t.Fatalf("type field: %v", raw["type"])
	}
	if raw["chunkKey"] != "0,-1" {
		t.Fatalf("chunkKey field: %v", raw["chunkKey"])
	}
	if _, ok := raw["dimensions"]; !ok {
		t.Fatalf("dimensions field missing: %s", b)
	}
	if _, ok := raw["position"]; !ok {
		t.Fatalf("position field missing: %s", b)
	}
}
