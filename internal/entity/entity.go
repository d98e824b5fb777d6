// Package entity orders declared entities so that each entity's
// prerequisites are acted upon before it, rejecting circular declarations.
// Each resolution builds and discards its own graph; the result is the
// ordered list of prerequisite identifiers, transitively resolved,
// deduplicated, with the entity itself excluded.
package entity

import (
	"context"

	"github.com/vk/depweave/internal/ctxlog"
	"github.com/vk/depweave/internal/dag"
)

// Source supplies the declared prerequisite list for an entity identifier.
type Source interface {
	DependsOn(id string) ([]string, error)
}

// MapSource adapts a plain identifier -> prerequisites mapping to Source.
// Asking for an undeclared identifier is an UnknownEntityError.
type MapSource map[string][]string

// DependsOn implements Source.
func (m MapSource) DependsOn(id string) ([]string, error) {
	deps, ok := m[id]
	if !ok {
		return nil, &UnknownEntityError{ID: id}
	}
	return deps, nil
}

// Resolve returns the identifiers that must be acted upon, in order, before
// the entity with the given id. The entity itself is inserted as the graph
// root so the traversal naturally excludes it from its own prerequisite
// list. Prerequisites are expanded transitively; a prerequisite reachable
// via two paths is only expanded once but still receives the edge from each
// dependent. Circular declarations fail with a CycleError naming the entity
// that closed the cycle.
func Resolve(ctx context.Context, src Source, id string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	graph := dag.New[string]()
	if err := graph.Add(id, id); err != nil {
		return nil, err
	}

	var expand func(cur string) error
	expand = func(cur string) error {
		deps, err := src.DependsOn(cur)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			expanded := graph.Contains(dep)
			if !expanded {
				if err := graph.Add(dep, dep); err != nil {
					return err
				}
			}
			if err := graph.AddDirectedEdge(cur, dep); err != nil {
				return err
			}
			if !expanded {
				if err := expand(dep); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := expand(id); err != nil {
		return nil, err
	}
	logger.Debug("Entity graph built.", "entity", id, "node_count", graph.Len())

	var order []string
	onVisit := func(n *dag.Node[string]) error {
		order = append(order, n.Key)
		return nil
	}
	onCycle := func(n *dag.Node[string]) error {
		return &CycleError{Key: n.Key}
	}
	if err := graph.Visit(onVisit, onCycle); err != nil {
		return nil, err
	}

	// Keep only the first occurrence of each identifier (earliest possible
	// call position), then drop the final entry: it is the entity itself.
	order = ClearDuplicates(order)
	if len(order) > 0 && order[len(order)-1] == id {
		order = order[:len(order)-1]
	}
	logger.Debug("Entity prerequisites resolved.", "entity", id, "order", order)
	return order, nil
}

// ClearDuplicates removes duplicate entries from list, keeping only the
// first occurrence of each. Applying it twice yields the same result as
// once.
func ClearDuplicates(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
