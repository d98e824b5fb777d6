// Package dag implements a generic directed dependency graph with
// deterministic depth-first, dependency-first traversal and cycle
// detection. A graph is built, traversed and discarded within a single
// resolution pass on one goroutine; it is not safe for concurrent use.
package dag

// Graph is a collection of nodes and their dependency edges. The node
// registry preserves insertion order so that traversal output is
// deterministic for a fixed construction sequence.
type Graph[T any] struct {
	// nodes stores all nodes in the graph, keyed by their unique key.
	nodes map[string]*Node[T]
	// order records node keys in insertion order.
	order []string
}

// Node represents a single vertex in the graph. It carries a unique key and
// an opaque payload; the graph exclusively owns its nodes, and a node's
// dependency list holds non-owning references to other nodes in the same
// graph.
type Node[T any] struct {
	// Key is the unique identifier for the node within its graph.
	Key string
	// Data is the opaque payload attached at insertion.
	Data T

	// deps holds the nodes this node depends on, in edge-insertion order.
	deps []*Node[T]
	// depSet guards against recording the same edge twice.
	depSet map[string]struct{}
}

// Dependencies returns the nodes this node depends on, in edge-insertion
// order. The returned slice is shared with the graph and must not be
// modified.
func (n *Node[T]) Dependencies() []*Node[T] {
	return n.deps
}

// visitState tracks a node's progress through a traversal. Every node moves
// monotonically unvisited -> in-progress -> done, which is what guarantees
// the traversal terminates even on cyclic input.
type visitState uint8

const (
	stateUnvisited visitState = iota
	stateInProgress
	stateDone
)
