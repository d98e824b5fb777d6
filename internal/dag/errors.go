package dag

import "fmt"

// DuplicateNodeError is returned by Add when a node with the same key is
// already present in the graph.
type DuplicateNodeError struct {
	Key string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q already exists in graph", e.Key)
}

// UnknownNodeError is returned by AddDirectedEdge when an edge endpoint has
// not been added to the graph.
type UnknownNodeError struct {
	Key string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node not found: %s", e.Key)
}

// CycleError is returned by Visit when the traversal re-enters a node that
// is still on the recursion stack. Key names the node that closed the cycle.
type CycleError struct {
	Key string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving node %q", e.Key)
}
