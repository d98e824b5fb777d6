package dag

// New creates and returns an initialized, empty Graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{
		nodes: make(map[string]*Node[T]),
	}
}

// Add inserts a new node with the given key and payload. It returns a
// DuplicateNodeError if a node with the same key already exists.
func (g *Graph[T]) Add(key string, data T) error {
	if _, ok := g.nodes[key]; ok {
		return &DuplicateNodeError{Key: key}
	}

	g.nodes[key] = &Node[T]{
		Key:    key,
		Data:   data,
		depSet: make(map[string]struct{}),
	}
	g.order = append(g.order, key)
	return nil
}

// AddDirectedEdge records that the `fromKey` node depends on the `toKey`
// node: during traversal `toKey` is visited before `fromKey`. Both nodes
// must already exist; an UnknownNodeError is returned otherwise. Recording
// the same edge twice is a no-op. A self-referential edge is permitted and
// surfaces as a cycle during Visit.
func (g *Graph[T]) AddDirectedEdge(fromKey, toKey string) error {
	fromNode, ok := g.nodes[fromKey]
	if !ok {
		return &UnknownNodeError{Key: fromKey}
	}

	toNode, ok := g.nodes[toKey]
	if !ok {
		return &UnknownNodeError{Key: toKey}
	}

	if _, exists := fromNode.depSet[toKey]; exists {
		return nil
	}
	fromNode.depSet[toKey] = struct{}{}
	fromNode.deps = append(fromNode.deps, toNode)
	return nil
}

// Contains reports whether a node with the given key exists in the graph.
func (g *Graph[T]) Contains(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Node returns the node stored under key, if any.
func (g *Graph[T]) Node(key string) (*Node[T], bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// Keys returns all node keys in insertion order.
func (g *Graph[T]) Keys() []string {
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	return keys
}

// Visit performs a depth-first, dependency-first traversal starting from
// every node not yet visited, in insertion order. A node's dependencies are
// visited (recursively) before onVisit is invoked on the node itself, so
// the emitted sequence is a valid topological order. Nodes are tracked in
// three states: unvisited, in-progress (on the current recursion stack),
// and done. Encountering an in-progress node signals a cycle: onCycle is
// invoked once with the node that closed the cycle and traversal aborts
// with its error, or with a CycleError naming that node when onCycle is nil
// or returns nil. Nodes already done are skipped without re-invoking
// onVisit. Given the same sequence of Add/AddDirectedEdge calls the
// traversal order is identical on every run.
func (g *Graph[T]) Visit(onVisit, onCycle func(*Node[T]) error) error {
	states := make(map[string]visitState, len(g.order))

	var walk func(n *Node[T]) error
	walk = func(n *Node[T]) error {
		switch states[n.Key] {
		case stateDone:
			return nil
		case stateInProgress:
			// The node is already on the recursion stack, so we have a cycle.
			if onCycle != nil {
				if err := onCycle(n); err != nil {
					return err
				}
			}
			return &CycleError{Key: n.Key}
		}

		states[n.Key] = stateInProgress
		for _, dep := range n.deps {
			if err := walk(dep); err != nil {
				return err
			}
		}
		states[n.Key] = stateDone

		if onVisit != nil {
			return onVisit(n)
		}
		return nil
	}

	for _, key := range g.order {
		if states[key] != stateDone {
			if err := walk(g.nodes[key]); err != nil {
				return err
			}
		}
	}
	return nil
}
