package structures

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"structureforge/internal/gen/catalog"
)

// Position is a world-space placement on the X-Z plane. Ground height is
// resolved through the terrain service at build time and never persisted,
// because terrain may regenerate.
type Position struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Record is the persisted placement decision for one structure instance.
// Exactly one per-kind payload pointer is set, selected by Kind. A record is
// immutable once committed; only removal is supported.
type Record struct {
	Kind     catalog.Kind `json:"type"`
	Position Position     `json:"position"`
	ChunkKey string       `json:"chunkKey"`
	Style    string       `json:"style,omitempty"`
	GroupID  string       `json:"groupId,omitempty"`

	House    *catalog.HouseDims      `json:"dimensions,omitempty"`
	Tower    *catalog.TowerParams    `json:"tower,omitempty"`
	Ruins    *catalog.RuinsParams    `json:"ruins,omitempty"`
	Bridge   *catalog.BridgeParams   `json:"bridge,omitempty"`
	Mountain *catalog.MountainParams `json:"mountain,omitempty"`
	Sanctum  *catalog.SanctumParams  `json:"sanctum,omitempty"`
	Village  *catalog.VillageParams  `json:"village,omitempty"`
}

func (r Record) clone() Record {
	c := r
	if r.House != nil {
		v := *r.House
		c.House = &v
	}
	if r.Tower != nil {
		v := *r.Tower
		c.Tower = &v
	}
	if r.Ruins != nil {
		v := *r.Ruins
		c.Ruins = &v
	}
	if r.Bridge != nil {
		v := *r.Bridge
		c.Bridge = &v
	}
	if r.Mountain != nil {
		v := *r.Mountain
		c.Mountain = &v
	}
	if r.Sanctum != nil {
		v := *r.Sanctum
		c.Sanctum = &v
	}
	if r.Village != nil {
		v := *r.Village
		v.Subs = make([]catalog.VillageSub, len(r.Village.Subs))
		for i, s := range r.Village.Subs {
			sc := s
			if s.House != nil {
				h := *s.House
				sc.House = &h
			}
			v.Subs[i] = sc
		}
		c.Village = &v
	}
	return c
}

// SpecialStructure is one entry in the landmark registry.
type SpecialStructure struct {
	X    float64      `json:"x"`
	Z    float64      `json:"z"`
	Type catalog.Kind `json:"type"`
}

// SaveState is the persisted save-game fragment. Field names and the
// "cx,cz" chunk-key format are part of the save-compatibility contract.
type SaveState struct {
	StructuresPlaced  map[string][]Record         `json:"structuresPlaced"`
	SpecialStructures map[string]SpecialStructure `json:"specialStructures"`
}

// Key returns the canonical chunk key for chunk coordinates.
func Key(cx, cz int) string {
	return fmt.Sprintf("%d,%d", cx, cz)
}

// ParseKey reverses Key.
func ParseKey(key string) (cx, cz int, err error) {
	a, b, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("chunk key %q: missing separator", key)
	}
	cx, err = strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("chunk key %q: %w", key, err)
	}
	cz, err = strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("chunk key %q: %w", key, err)
	}
	return cx, cz, nil
}

// KeyForPosition returns the key of the chunk containing a world position.
func KeyForPosition(x, z, chunkSize float64) string {
	return Key(int(math.Floor(x/chunkSize)), int(math.Floor(z/chunkSize)))
}
