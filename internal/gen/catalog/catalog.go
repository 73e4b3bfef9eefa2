// Package catalog holds the structure-type builders. Each kind splits into a
// Plan step (rolls and commits every persisted parameter, including the
// zone-resolved style) and a Build step (a pure function from committed
// parameters to a scene node). Reload runs Build only, so a restored world
// reproduces the exact footprint that was saved.
package catalog

import "structureforge/internal/gen/scene"

// Kind enumerates the structure types. The string values are part of the
// save-compatibility contract.
type Kind string

const (
	KindHouse       Kind = "house"
	KindTower       Kind = "tower"
	KindRuins       Kind = "ruins"
	KindDarkSanctum Kind = "darkSanctum"
	KindMountain    Kind = "mountain"
	KindBridge      Kind = "bridge"
	KindVillage     Kind = "village"
)

// KnownKind reports whether k is one of the seven structure kinds.
func KnownKind(k Kind) bool {
	switch k {
	case KindHouse, KindTower, KindRuins, KindDarkSanctum, KindMountain, KindBridge, KindVillage:
		return true
	}
	return false
}

// Decorator is the optional world-decoration collaborator some builders
// invoke on successful placement. Every call site guards against a nil
// decorator; absence degrades to skipping the decoration.
type Decorator interface {
	CreateBossSpawnPoint(x, z float64, bossID string)
	CreateTreasureChest(x, z float64)
	CreateQuestMarker(x, z float64, questID string)
	CreatePathSegment(x1, z1, x2, z2 float64)
}

func node(kind, style string, width, depth float64, parts int) scene.Node {
	return scene.Node{
		Kind:  kind + "/" + style,
		Width: width,
		Depth: depth,
		Parts: parts,
	}
}
