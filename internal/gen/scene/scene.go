// Package scene is the thin surface the structure manager needs from the
// render side: add a top-level node, remove it, optionally dispose its
// resources. The manager indexes nodes by its own opaque handles rather than
// tagging foreign objects, so teardown never depends on mutable state
// attached to the render graph.
package scene

// Handle identifies a node owned by a Scene. Zero is never a valid handle.
type Handle uint64

// Node describes a placed top-level object. Geometry detail is out of scope;
// a node carries only what placement and teardown need.
type Node struct {
	Kind  string  // e.g. "house/timber"
	X     float64 // world position, ground height resolved at placement
	Y     float64
	Z     float64
	Width float64 // footprint extents on the X-Z plane
	Depth float64
	Parts int // nested child count, released together on dispose
}

type Scene interface {
	Add(n Node) Handle
	// Remove detaches the node. With dispose set, its resources (including
	// nested parts) are released as well. Unknown handles are a no-op.
	Remove(h Handle, dispose bool)
	Count() int
}

// Memory is an in-memory Scene for tests and headless tools.
type Memory struct {
	nodes         map[Handle]Node
	next          Handle
	disposedNodes int
	disposedParts int
}

func NewMemory() *Memory {
	return &Memory{nodes: map[Handle]Node{}}
}

func (m *Memory) Add(n Node) Handle {
	m.next++
	m.nodes[m.next] = n
	return m.next
}

func (m *Memory) Remove(h Handle, dispose bool) {
	n, ok := m.nodes[h]
	if !ok {
		return
	}
	delete(m.nodes, h)
	if dispose {
		m.disposedNodes++
		m.disposedParts += n.Parts
	}
}

func (m *Memory) Count() int { return len(m.nodes) }

// Get reports the node for a handle, for test assertions.
func (m *Memory) Get(h Handle) (Node, bool) {
	n, ok := m.nodes[h]
	return n, ok
}

// DisposedNodes reports how many nodes were removed with dispose set.
func (m *Memory) DisposedNodes() int { return m.disposedNodes }

// DisposedParts reports how many nested parts were released.
func (m *Memory) DisposedParts() int { return m.disposedParts }
