// Package structures orchestrates chunk-keyed procedural structure
// placement: deterministic per-chunk rolls against configured densities,
// landmark exclusion rules, and the generate/place/persist/evict lifecycle
// driven by the open-world streaming system.
package structures

import (
	"fmt"
	"sort"
	"sync"

	"structureforge/internal/gen/catalog"
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/seeded"
	"structureforge/internal/gen/zone"
)

// TerrainHeightFunc resolves the authoritative ground height at a world
// position. A nil func degrades to height zero.
type TerrainHeightFunc func(x, z float64) float64

// Stats counts generation activity for diagnostics and the read-model
// index. Never consulted by placement logic.
type Stats struct {
	ChunksGenerated    int
	RecordsPlaced      int
	LandmarkRejections int
	TerrainFallbacks   int
}

// Manager owns the placement bookkeeping: which structures exist per chunk,
// the landmark registry, and the scene handles needed for teardown. All
// methods are safe for concurrent use; generation's check-then-act is
// atomic under the mutex.
type Manager struct {
	mu  sync.Mutex
	cfg Config

	scene   scene.Scene
	terrain TerrainHeightFunc
	zones   zone.Classifier
	dec     catalog.Decorator

	placed  map[string][]Record
	special map[string]SpecialStructure
	handles map[string][]scene.Handle

	stats Stats
}

// New builds a manager. Scene, terrain, zones and dec may each be nil:
// a nil scene suppresses all visual objects, the others degrade to the
// documented defaults.
func New(cfg Config, sc scene.Scene, terrain TerrainHeightFunc, zones zone.Classifier, dec catalog.Decorator) *Manager {
	cfg.applyDefaults()
	return &Manager{
		cfg:     cfg,
		scene:   sc,
		terrain: terrain,
		zones:   zones,
		dec:     dec,
		placed:  map[string][]Record{},
		special: map[string]SpecialStructure{},
		handles: map[string][]scene.Handle{},
	}
}

// Init seeds the fixed starting landmarks at known coordinates, outside the
// chunk-random system: weathered ruins by the spawn and the first Dark
// Sanctum at a fixed offset. The chunks they occupy count as generated.
func (m *Manager) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()

	rng := seeded.New(seeded.Combine(m.cfg.Seed, -1, -1))

	ruinsPos := Position{X: 12, Z: 18}
	style, rp := catalog.PlanRuins(zone.At(m.zones, ruinsPos.X, ruinsPos.Z), rng)
	ruins := Record{
		Kind:     catalog.KindRuins,
		Position: ruinsPos,
		ChunkKey: KeyForPosition(ruinsPos.X, ruinsPos.Z, m.cfg.ChunkSize),
		Style:    style,
		Ruins:    &rp,
	}
	m.commit(ruins, false)

	sanctumPos := Position{X: 4 * m.cfg.ChunkSize, Z: -3 * m.cfg.ChunkSize}
	sp := catalog.PlanSanctum(rng)
	sanctum := Record{
		Kind:     catalog.KindDarkSanctum,
		Position: sanctumPos,
		ChunkKey: KeyForPosition(sanctumPos.X, sanctumPos.Z, m.cfg.ChunkSize),
		Style:    "obsidian",
		Sanctum:  &sp,
	}
	m.special["sanctum_origin"] = SpecialStructure{X: sanctumPos.X, Z: sanctumPos.Z, Type: catalog.KindDarkSanctum}
	m.commit(sanctum, false)
}

// GenerateStructuresForChunk runs the deterministic placement pass for one
// chunk. A chunk key already present in the placement table makes the call a
// no-op, so repeated player re-entry is safe. With dataOnly set, records are
// committed but no visual objects are created.
func (m *Manager) GenerateStructuresForChunk(cx, cz int, dataOnly bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(cx, cz)
	if _, ok := m.placed[key]; ok {
		return
	}
	m.placed[key] = []Record{}
	m.stats.ChunksGenerated++

	cs := m.cfg.ChunkSize
	worldX := float64(cx) * cs
	worldZ := float64(cz) * cs
	rng := seeded.New(seeded.Combine(m.cfg.Seed, cx, cz))
	zn := zone.At(m.zones, worldX+cs/2, worldZ+cs/2)
	mult := m.cfg.Multipliers.For(zn)

	m.rollLandmark(cx, cz, worldX, worldZ, rng, dataOnly)
	m.rollMountains(key, zn, worldX, worldZ, rng, dataOnly)
	m.rollVillage(key, zn, mult, worldX, worldZ, rng, dataOnly)
	m.rollBridge(zn, mult, worldX, worldZ, rng, dataOnly)
	m.rollBulk(zn, mult, worldX, worldZ, rng, dataOnly)
}

// rollLandmark proposes a Dark Sanctum on the sparse landmark grid. A
// candidate inside the minimum separation of any registered sanctum is
// discarded silently: no retry, no relocation. A landmark key that is
// already registered (an evicted chunk regenerating) is accepted at its
// registered position so the separation invariant survives eviction.
func (m *Manager) rollLandmark(cx, cz int, worldX, worldZ float64, rng *seeded.Source, dataOnly bool) {
	k := m.cfg.LandmarkInterval
	if cx%k != 0 || cz%k != 0 {
		return
	}
	ex := m.cfg.LandmarkOriginExclusion
	if abs(cx) <= ex && abs(cz) <= ex {
		return
	}

	cs := m.cfg.ChunkSize
	pos := Position{
		X: worldX + rng.Between(0.2, 0.8)*cs,
		Z: worldZ + rng.Between(0.2, 0.8)*cs,
	}
	params := catalog.PlanSanctum(rng)

	lkey := fmt.Sprintf("sanctum_%d_%d", cx, cz)
	if _, registered := m.special[lkey]; !registered {
		for _, sp := range m.special {
			if sp.Type != catalog.KindDarkSanctum {
				continue
			}
			dx := sp.X - pos.X
			dz := sp.Z - pos.Z
			if dx*dx+dz*dz < m.cfg.MinLandmarkSeparation*m.cfg.MinLandmarkSeparation {
				m.stats.LandmarkRejections++
				return
			}
		}
		m.special[lkey] = SpecialStructure{X: pos.X, Z: pos.Z, Type: catalog.KindDarkSanctum}
	}

	m.commit(Record{
		Kind:     catalog.KindDarkSanctum,
		Position: pos,
		ChunkKey: Key(cx, cz),
		Style:    "obsidian",
		Sanctum:  &params,
	}, dataOnly)
}

func (m *Manager) rollMountains(key string, zn zone.Name, worldX, worldZ float64, rng *seeded.Source, dataOnly bool) {
	if zn != zone.Mountains {
		return
	}
	cs := m.cfg.ChunkSize
	count := rng.IntBetween(m.cfg.MountainMin, m.cfg.MountainMax)
	groupID := "mountains_" + key
	for i := 0; i < count; i++ {
		params := catalog.PlanMountain(rng)
		m.commit(Record{
			Kind:     catalog.KindMountain,
			Position: Position{X: worldX + rng.Float64()*cs, Z: worldZ + rng.Float64()*cs},
			ChunkKey: key,
			GroupID:  groupID,
			Mountain: &params,
		}, dataOnly)
	}
}

func (m *Manager) rollVillage(key string, zn zone.Name, mult, worldX, worldZ float64, rng *seeded.Source, dataOnly bool) {
	if rng.Float64() >= m.cfg.Densities.Village*mult {
		return
	}
	cs := m.cfg.ChunkSize
	style, params := catalog.PlanVillage(zn, rng)
	m.commit(Record{
		Kind: catalog.KindVillage,
		Position: Position{
			X: worldX + cs/2 + rng.Between(-0.15, 0.15)*cs,
			Z: worldZ + cs/2 + rng.Between(-0.15, 0.15)*cs,
		},
		ChunkKey: key,
		Style:    style,
		GroupID:  "village_" + key,
		Village:  &params,
	}, dataOnly)
}

func (m *Manager) rollBridge(zn zone.Name, mult, worldX, worldZ float64, rng *seeded.Source, dataOnly bool) {
	if rng.Float64() >= m.cfg.Densities.Bridge*mult {
		return
	}
	cs := m.cfg.ChunkSize
	style, params := catalog.PlanBridge(zn, rng)
	pos := Position{X: worldX + rng.Float64()*cs, Z: worldZ + rng.Float64()*cs}
	m.commit(Record{
		Kind:     catalog.KindBridge,
		Position: pos,
		ChunkKey: KeyForPosition(pos.X, pos.Z, cs),
		Style:    style,
		Bridge:   &params,
	}, dataOnly)
}

// rollBulk places the density-scaled structure kinds. The count per kind is
// exact (floor of area*density*multiplier); only positions and dimensions
// are random.
func (m *Manager) rollBulk(zn zone.Name, mult, worldX, worldZ float64, rng *seeded.Source, dataOnly bool) {
	cs := m.cfg.ChunkSize
	area := cs * cs

	for i := 0; i < int(area*m.cfg.Densities.House*mult); i++ {
		style, dims := catalog.PlanHouse(zn, rng)
		pos := Position{X: worldX + rng.Float64()*cs, Z: worldZ + rng.Float64()*cs}
		m.commit(Record{
			Kind:     catalog.KindHouse,
			Position: pos,
			ChunkKey: KeyForPosition(pos.X, pos.Z, cs),
			Style:    style,
			House:    &dims,
		}, dataOnly)
	}
	for i := 0; i < int(area*m.cfg.Densities.Tower*mult); i++ {
		style, params := catalog.PlanTower(zn, rng)
		pos := Position{X: worldX + rng.Float64()*cs, Z: worldZ + rng.Float64()*cs}
		m.commit(Record{
			Kind:     catalog.KindTower,
			Position: pos,
			ChunkKey: KeyForPosition(pos.X, pos.Z, cs),
			Style:    style,
			Tower:    &params,
		}, dataOnly)
	}
	for i := 0; i < int(area*m.cfg.Densities.Ruins*mult); i++ {
		style, params := catalog.PlanRuins(zn, rng)
		pos := Position{X: worldX + rng.Float64()*cs, Z: worldZ + rng.Float64()*cs}
		m.commit(Record{
			Kind:     catalog.KindRuins,
			Position: pos,
			ChunkKey: KeyForPosition(pos.X, pos.Z, cs),
			Style:    style,
			Ruins:    &params,
		}, dataOnly)
	}
}

// commit appends the record and, unless dataOnly, builds its visual object.
// Callers hold the mutex.
func (m *Manager) commit(rec Record, dataOnly bool) {
	m.placed[rec.ChunkKey] = append(m.placed[rec.ChunkKey], rec)
	m.stats.RecordsPlaced++
	if !dataOnly {
		m.build(rec)
	}
}

// build dispatches on the record kind and adds the node to the scene.
// Unknown kinds (a newer save) are skipped, never fatal.
func (m *Manager) build(rec Record) {
	if m.scene == nil {
		return
	}
	var n scene.Node
	switch rec.Kind {
	case catalog.KindHouse:
		if rec.House == nil {
			return
		}
		n = catalog.BuildHouse(rec.Style, *rec.House)
	case catalog.KindTower:
		if rec.Tower == nil {
			return
		}
		n = catalog.BuildTower(rec.Style, *rec.Tower)
	case catalog.KindRuins:
		if rec.Ruins == nil {
			return
		}
		n = catalog.BuildRuins(rec.Style, *rec.Ruins)
	case catalog.KindBridge:
		if rec.Bridge == nil {
			return
		}
		n = catalog.BuildBridge(rec.Style, *rec.Bridge)
	case catalog.KindMountain:
		if rec.Mountain == nil {
			return
		}
		n = catalog.BuildMountain(*rec.Mountain)
	case catalog.KindDarkSanctum:
		if rec.Sanctum == nil {
			return
		}
		n = catalog.BuildSanctum(*rec.Sanctum, rec.Position.X, rec.Position.Z, m.dec)
	case catalog.KindVillage:
		if rec.Village == nil {
			return
		}
		n = catalog.BuildVillage(rec.Style, *rec.Village, rec.Position.X, rec.Position.Z, m.dec)
	default:
		return
	}

	n.X = rec.Position.X
	n.Z = rec.Position.Z
	if m.terrain != nil {
		n.Y = m.terrain(rec.Position.X, rec.Position.Z)
	} else {
		m.stats.TerrainFallbacks++
	}
	h := m.scene.Add(n)
	m.handles[rec.ChunkKey] = append(m.handles[rec.ChunkKey], h)
}

// RemoveStructuresInChunk tears down a chunk's structures: detaches every
// tracked visual object (disposing resources when asked) and forgets the
// placement records. Safe to call for a key with nothing in it.
func (m *Manager) RemoveStructuresInChunk(chunkKey string, disposeResources bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scene != nil {
		for _, h := range m.handles[chunkKey] {
			m.scene.Remove(h, disposeResources)
		}
	}
	delete(m.handles, chunkKey)
	delete(m.placed, chunkKey)
	// The landmark registry survives eviction so re-generation stays bound
	// by the separation invariant.
}

// LoadStructuresForChunk restores saved records for one chunk, bypassing the
// roll algorithm entirely and rebuilding each visual object from its
// committed parameters. A chunk that is already generated is left alone.
func (m *Manager) LoadStructuresForChunk(cx, cz int, records []Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(cx, cz)
	if _, ok := m.placed[key]; ok {
		return
	}
	m.placed[key] = []Record{}
	for _, rec := range records {
		rec := rec.clone()
		m.placed[key] = append(m.placed[key], rec)
		if rec.Kind == catalog.KindDarkSanctum {
			lkey := fmt.Sprintf("sanctum_%d_%d", cx, cz)
			if _, ok := m.special[lkey]; !ok {
				m.special[lkey] = SpecialStructure{X: rec.Position.X, Z: rec.Position.Z, Type: rec.Kind}
			}
		}
		m.build(rec)
	}
}

// Save returns a deep plain-data snapshot of the placement tables.
func (m *Manager) Save() SaveState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := SaveState{
		StructuresPlaced:  make(map[string][]Record, len(m.placed)),
		SpecialStructures: make(map[string]SpecialStructure, len(m.special)),
	}
	for k, recs := range m.placed {
		out := make([]Record, len(recs))
		for i, r := range recs {
			out[i] = r.clone()
		}
		st.StructuresPlaced[k] = out
	}
	for k, v := range m.special {
		st.SpecialStructures[k] = v
	}
	return st
}

// Load replaces both tables wholesale. Visual objects from the previous
// state are torn down; the streaming system rebuilds visuals per chunk via
// LoadStructuresForChunk or by regenerating. Missing fields keep the empty
// defaults rather than failing.
func (m *Manager) Load(st SaveState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropAllVisuals()
	m.placed = map[string][]Record{}
	m.special = map[string]SpecialStructure{}

	for k, recs := range st.StructuresPlaced {
		if _, _, err := ParseKey(k); err != nil {
			continue // malformed key, tolerate per-field
		}
		out := make([]Record, 0, len(recs))
		for _, r := range recs {
			out = append(out, r.clone())
		}
		m.placed[k] = out
	}
	for k, v := range st.SpecialStructures {
		m.special[k] = v
	}
}

// Clear detaches and disposes every tracked structure and resets all state
// tables. Used on world reset.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropAllVisuals()
	m.placed = map[string][]Record{}
	m.special = map[string]SpecialStructure{}
}

func (m *Manager) dropAllVisuals() {
	if m.scene != nil {
		for _, hs := range m.handles {
			for _, h := range hs {
				m.scene.Remove(h, true)
			}
		}
	}
	m.handles = map[string][]scene.Handle{}
}

// RecordsInChunk returns a copy of the records committed for a chunk key.
func (m *Manager) RecordsInChunk(chunkKey string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs, ok := m.placed[chunkKey]
	if !ok {
		return nil
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.clone()
	}
	return out
}

// HasChunk reports whether a generation or load pass has committed the key.
func (m *Manager) HasChunk(chunkKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.placed[chunkKey]
	return ok
}

// ChunkHandleCount reports how many visual objects are tracked for a key.
func (m *Manager) ChunkHandleCount(chunkKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles[chunkKey])
}

// SpecialStructures returns a copy of the landmark registry.
func (m *Manager) SpecialStructures() map[string]SpecialStructure {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]SpecialStructure, len(m.special))
	for k, v := range m.special {
		out[k] = v
	}
	return out
}

// LoadedChunkKeys returns the committed chunk keys in (cx, cz) order.
func (m *Manager) LoadedChunkKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.placed))
	for k := range m.placed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		icx, icz, _ := ParseKey(keys[i])
		jcx, jcz, _ := ParseKey(keys[j])
		if icx != jcx {
			return icx < jcx
		}
		return icz < jcz
	})
	return keys
}

// Stats returns a snapshot of the generation counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
