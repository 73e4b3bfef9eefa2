package structures

import (
	"math"
	"reflect"
	"testing"

	"structureforge/internal/gen/catalog"
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/zone"
)

func flatClassifier(n zone.Name) zone.Classifier {
	return zone.ClassifierFunc(func(x, z float64) zone.Name { return n })
}

func TestGenerateDeterministicAcrossInstances(t *testing.T) {
	cfg := Config{Seed: 1337}
	a := New(cfg, nil, nil, flatClassifier(zone.Forest), nil)
	b := New(cfg, nil, nil, flatClassifier(zone.Forest), nil)

	for _, c := range []struct{ cx, cz int }{{0, 0}, {5, 5}, {-3, 7}, {-10, -10}} {
		a.GenerateStructuresForChunk(c.cx, c.cz, true)
		b.GenerateStructuresForChunk(c.cx, c.cz, true)
		key := Key(c.cx, c.cz)
		ra := a.RecordsInChunk(key)
		rb := b.RecordsInChunk(key)
		if !reflect.DeepEqual(ra, rb) {
			t.Fatalf("chunk %s diverged between fresh managers:\n%+v\nvs\n%+v", key, ra, rb)
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	m := New(Config{Seed: 7}, nil, nil, flatClassifier(zone.Ruins), nil)
	m.GenerateStructuresForChunk(2, 3, true)
	first := m.RecordsInChunk(Key(2, 3))
	m.GenerateStructuresForChunk(2, 3, true)
	second := m.RecordsInChunk(Key(2, 3))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second generation changed the chunk:\n%+v\nvs\n%+v", first, second)
	}
	if got := m.Stats().ChunksGenerated; got != 1 {
		t.Fatalf("chunk generated %d times, want 1", got)
	}
}

func TestSparseChunkStillCommitted(t *testing.T) {
	// Zero densities: the pass places nothing but the key must exist so
	// re-entry stays a no-op.
	cfg := Config{
		Seed:      1,
		Densities: Densities{House: 1e-12, Tower: 1e-12, Ruins: 1e-12, Village: 1e-12, Bridge: 1e-12},
	}
	m := New(cfg, nil, nil, nil, nil)
	m.GenerateStructuresForChunk(3, 3, true)
	if !m.HasChunk(Key(3, 3)) {
		t.Fatalf("empty chunk not committed")
	}
	if recs := m.RecordsInChunk(Key(3, 3)); len(recs) != 0 {
		t.Fatalf("expected no placements, got %d", len(recs))
	}
}

func TestMinimumSeparationAdversarial(t *testing.T) {
	// Every chunk is a landmark candidate and the separation threshold spans
	// two chunks, so neighbors fight for placement.
	cfg := Config{
		Seed:                  99,
		LandmarkInterval:      1,
		MinLandmarkSeparation: 200,
	}
	m := New(cfg, nil, nil, nil, nil)
	for cx := -5; cx <= 5; cx++ {
		for cz := -5; cz <= 5; cz++ {
			m.GenerateStructuresForChunk(cx, cz, true)
		}
	}

	special := m.SpecialStructures()
	if len(special) < 2 {
		t.Fatalf("adversarial grid placed %d sanctums, expected several", len(special))
	}
	keys := make([]string, 0, len(special))
	for k := range special {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a, b := special[keys[i]], special[keys[j]]
			d := math.Hypot(a.X-b.X, a.Z-b.Z)
			if d < 200 {
				t.Fatalf("sanctums %s and %s are %.1f apart, want >= 200", keys[i], keys[j], d)
			}
		}
	}
	if m.Stats().LandmarkRejections == 0 {
		t.Fatalf("adversarial grid produced no rejections; separation rule untested")
	}
}

func TestLandmarkSurvivesEviction(t *testing.T) {
	cfg := Config{Seed: 4, LandmarkInterval: 1, LandmarkOriginExclusion: 1, MinLandmarkSeparation: 50}
	m := New(cfg, nil, nil, nil, nil)

	m.GenerateStructuresForChunk(5, 5, true)
	before := m.SpecialStructures()
	if len(before) != 1 {
		t.Fatalf("expected one sanctum, got %d", len(before))
	}

	m.RemoveStructuresInChunk(Key(5, 5), true)
	if len(m.SpecialStructures()) != 1 {
		t.Fatalf("eviction dropped the landmark registry")
	}

	m.GenerateStructuresForChunk(5, 5, true)
	after := m.SpecialStructures()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("regeneration moved the landmark: %+v vs %+v", before, after)
	}
	recs := m.RecordsInChunk(Key(5, 5))
	found := false
	for _, r := range recs {
		if r.Kind == catalog.KindDarkSanctum {
			found = true
			if r.Position.X != before["sanctum_5_5"].X || r.Position.Z != before["sanctum_5_5"].Z {
				t.Fatalf("rebuilt sanctum at %+v, registry says %+v", r.Position, before["sanctum_5_5"])
			}
		}
	}
	if !found {
		t.Fatalf("regenerated chunk lost its sanctum record")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := New(Config{Seed: 11}, nil, nil, flatClassifier(zone.Forest), nil)
	m.Init()
	for cx := 0; cx < 3; cx++ {
		for cz := 0; cz < 3; cz++ {
			m.GenerateStructuresForChunk(cx, cz, true)
		}
	}
	st := m.Save()

	m2 := New(Config{Seed: 11}, nil, nil, nil, nil)
	m2.Load(st)
	st2 := m2.Save()
	if !reflect.DeepEqual(st, st2) {
		t.Fatalf("load(save()) not a fixpoint")
	}
}

func TestLoadTolerantOfPartialState(t *testing.T) {
	m := New(Config{}, nil, nil, nil, nil)
	m.GenerateStructuresForChunk(0, 0, true)

	m.Load(SaveState{}) // both tables absent
	if len(m.LoadedChunkKeys()) != 0 {
		t.Fatalf("empty load should reset placement table")
	}

	m.Load(SaveState{StructuresPlaced: map[string][]Record{
		"not-a-key": {{Kind: catalog.KindHouse}},
		"1,2":       {},
	}})
	keys := m.LoadedChunkKeys()
	if len(keys) != 1 || keys[0] != "1,2" {
		t.Fatalf("malformed key not skipped: %v", keys)
	}
}

func TestEvictionRemovesRecordsAndVisuals(t *testing.T) {
	sc := scene.NewMemory()
	m := New(Config{Seed: 2}, sc, nil, flatClassifier(zone.Ruins), nil)
	m.GenerateStructuresForChunk(1, 1, false)
	key := Key(1, 1)
	if m.ChunkHandleCount(key) == 0 {
		t.Fatalf("no visual objects built")
	}
	built := sc.Count()

	m.RemoveStructuresInChunk(key, true)
	if m.HasChunk(key) {
		t.Fatalf("chunk key survived eviction")
	}
	if m.ChunkHandleCount(key) != 0 {
		t.Fatalf("handles survived eviction")
	}
	if sc.Count() != 0 {
		t.Fatalf("scene still holds %d of %d nodes", sc.Count(), built)
	}
	if sc.DisposedNodes() != built {
		t.Fatalf("disposed %d nodes, want %d", sc.DisposedNodes(), built)
	}

	// Evicting an unknown key is a no-op, not an error.
	m.RemoveStructuresInChunk("44,44", true)
}

func TestDensityScalingExactCount(t *testing.T) {
	// terrainChunkSize=100, house density 0.0008, multiplier 1.0:
	// floor(100*100*0.0008) = 8 houses, deterministically.
	m := New(Config{Seed: 3}, nil, nil, flatClassifier(zone.Terrant), nil)
	m.GenerateStructuresForChunk(4, 4, true)
	houses := 0
	for _, r := range m.RecordsInChunk(Key(4, 4)) {
		if r.Kind == catalog.KindHouse {
			houses++
			if r.House == nil {
				t.Fatalf("house record missing dimensions")
			}
		}
	}
	if houses != 8 {
		t.Fatalf("placed %d houses, want exactly 8", houses)
	}
}

func TestUnknownZoneDefaultsToNeutralMultiplier(t *testing.T) {
	odd := flatClassifier(zone.Name("Chromatic Wastes"))
	m := New(Config{Seed: 3}, nil, nil, odd, nil)
	m.GenerateStructuresForChunk(4, 4, true)
	houses := 0
	for _, r := range m.RecordsInChunk(Key(4, 4)) {
		if r.Kind == catalog.KindHouse {
			houses++
		}
	}
	if houses != 8 {
		t.Fatalf("unknown zone placed %d houses, want 8 (multiplier 1.0)", houses)
	}
}

func TestDataOnlySameRecordsNoVisuals(t *testing.T) {
	scData := scene.NewMemory()
	scFull := scene.NewMemory()
	cfg := Config{Seed: 21}
	mData := New(cfg, scData, nil, flatClassifier(zone.Forest), nil)
	mFull := New(cfg, scFull, nil, flatClassifier(zone.Forest), nil)

	mData.GenerateStructuresForChunk(6, 6, true)
	mFull.GenerateStructuresForChunk(6, 6, false)

	if !reflect.DeepEqual(mData.RecordsInChunk(Key(6, 6)), mFull.RecordsInChunk(Key(6, 6))) {
		t.Fatalf("dataOnly changed the committed records")
	}
	if scData.Count() != 0 {
		t.Fatalf("dataOnly created %d scene nodes", scData.Count())
	}
	if scFull.Count() == 0 {
		t.Fatalf("full generation created no scene nodes")
	}
}

func TestChunkKeyBinding(t *testing.T) {
	m := New(Config{Seed: 13}, nil, nil, flatClassifier(zone.Ruins), nil)
	for cx := -2; cx <= 2; cx++ {
		for cz := -2; cz <= 2; cz++ {
			m.GenerateStructuresForChunk(cx, cz, true)
			key := Key(cx, cz)
			for _, r := range m.RecordsInChunk(key) {
				want := KeyForPosition(r.Position.X, r.Position.Z, 100)
				if r.ChunkKey != want {
					t.Fatalf("record %s at %+v has chunkKey %q, position maps to %q",
						r.Kind, r.Position, r.ChunkKey, want)
				}
			}
		}
	}
}

func TestMountainGroupsShareGroupID(t *testing.T) {
	m := New(Config{Seed: 8}, nil, nil, flatClassifier(zone.Mountains), nil)
	m.GenerateStructuresForChunk(3, -2, true)
	var group string
	count := 0
	for _, r := range m.RecordsInChunk(Key(3, -2)) {
		if r.Kind != catalog.KindMountain {
			continue
		}
		count++
		if group == "" {
			group = r.GroupID
		}
		if r.GroupID == "" || r.GroupID != group {
			t.Fatalf("mountain group ids diverge: %q vs %q", group, r.GroupID)
		}
	}
	if count < 2 || count > 5 {
		t.Fatalf("mountain zone placed %d mountains, want 2..5", count)
	}
}

func TestLoadStructuresForChunkReplaysCommittedParams(t *testing.T) {
	src := New(Config{Seed: 5}, nil, nil, flatClassifier(zone.Desert), nil)
	src.GenerateStructuresForChunk(2, 2, true)
	saved := src.RecordsInChunk(Key(2, 2))
	if len(saved) == 0 {
		t.Fatalf("seed 5 chunk (2,2) placed nothing; pick another fixture")
	}

	sc := scene.NewMemory()
	dst := New(Config{Seed: 999}, sc, nil, nil, nil) // different seed: rolls must not run
	dst.LoadStructuresForChunk(2, 2, saved)
	if !reflect.DeepEqual(dst.RecordsInChunk(Key(2, 2)), saved) {
		t.Fatalf("restored records differ from saved records")
	}
	if sc.Count() != len(saved) {
		t.Fatalf("built %d visuals for %d records", sc.Count(), len(saved))
	}

	// Already-generated chunks are left alone.
	dst.LoadStructuresForChunk(2, 2, nil)
	if !reflect.DeepEqual(dst.RecordsInChunk(Key(2, 2)), saved) {
		t.Fatalf("second load mutated the chunk")
	}
}

func TestTerrainHeightAppliedToNodes(t *testing.T) {
	sc := scene.NewMemory()
	terrain := func(x, z float64) float64 { return 42.5 }
	m := New(Config{Seed: 2}, sc, terrain, flatClassifier(zone.Terrant), nil)
	m.GenerateStructuresForChunk(0, 1, false)
	for h := scene.Handle(1); ; h++ {
		n, ok := sc.Get(h)
		if !ok {
			break
		}
		if n.Y != 42.5 {
			t.Fatalf("node %q at height %v, want 42.5", n.Kind, n.Y)
		}
	}
}

func TestClearResetsEverything(t *testing.T) {
	sc := scene.NewMemory()
	m := New(Config{Seed: 6}, sc, nil, flatClassifier(zone.Forest), nil)
	m.Init()
	m.GenerateStructuresForChunk(0, 0, false)
	m.GenerateStructuresForChunk(5, 5, false)

	m.Clear()
	if len(m.LoadedChunkKeys()) != 0 {
		t.Fatalf("placement table not reset")
	}
	if len(m.SpecialStructures()) != 0 {
		t.Fatalf("landmark registry not reset")
	}
	if sc.Count() != 0 {
		t.Fatalf("scene still holds %d nodes", sc.Count())
	}
}

func TestInitSeedsFixedLandmarks(t *testing.T) {
	m := New(Config{Seed: 77}, nil, nil, nil, nil)
	m.Init()
	special := m.SpecialStructures()
	sp, ok := special["sanctum_origin"]
	if !ok {
		t.Fatalf("init did not register the origin sanctum")
	}
	if sp.Type != catalog.KindDarkSanctum {
		t.Fatalf("origin landmark type %q", sp.Type)
	}

	foundRuins := false
	for _, key := range m.LoadedChunkKeys() {
		for _, r := range m.RecordsInChunk(key) {
			if r.Kind == catalog.KindRuins {
				foundRuins = true
			}
		}
	}
	if !foundRuins {
		t.Fatalf("init did not place the starting ruins")
	}
}

func TestLoadedChunkKeysSorted(t *testing.T) {
	m := New(Config{Seed: 1}, nil, nil, nil, nil)
	for _, c := range []struct{ cx, cz int }{{2, 0}, {-1, 5}, {0, 0}, {-1, -3}} {
		m.GenerateStructuresForChunk(c.cx, c.cz, true)
	}
	want := []string{"-1,-3", "-1,5", "0,0", "2,0"}
	if got := m.LoadedChunkKeys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys %v, want %v", got, want)
	}
}
