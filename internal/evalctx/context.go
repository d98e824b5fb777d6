// Package evalctx builds nested evaluation contexts from dotted-path
// variables and their resolved values. Intermediate path segments become
// nested objects, so that looking up the path inside the resulting HCL
// evaluation context yields the value that was set.
package evalctx

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Context is a nested key/value tree whose leaves are cty values. It is
// built leaf-first: the graph traversal guarantees dependency order, so a
// collision between a populated leaf and a shorter or longer path is a
// construction bug and is reported as an error rather than silently
// overwritten.
type Context struct {
	tree map[string]any // nested map[string]any with cty.Value leaves
}

// New creates an empty context.
func New() *Context {
	return &Context{tree: make(map[string]any)}
}

// Set stores v at the given path, deepening the tree as needed. It fails
// if the path is empty, if an intermediate segment is already occupied by
// a leaf value, or if the leaf position is already populated.
func (c *Context) Set(path []string, v cty.Value) error {
	if len(path) == 0 {
		return fmt.Errorf("cannot set value at empty path")
	}

	cur := c.tree
	for i, seg := range path[:len(path)-1] {
		child, ok := cur[seg]
		if !ok {
			next := make(map[string]any)
			cur[seg] = next
			cur = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("context path %q collides with existing value at %q",
				strings.Join(path, "."), strings.Join(path[:i+1], "."))
		}
		cur = next
	}

	leaf := path[len(path)-1]
	if _, exists := cur[leaf]; exists {
		return fmt.Errorf("context path %q is already populated", strings.Join(path, "."))
	}
	cur[leaf] = v
	return nil
}

// Get looks up the value stored at path.
func (c *Context) Get(path []string) (cty.Value, bool) {
	var cur any = c.tree
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return cty.NilVal, false
		}
		cur, ok = m[seg]
		if !ok {
			return cty.NilVal, false
		}
	}
	v, ok := cur.(cty.Value)
	return v, ok
}

// Merge copies every leaf of other into c, applying the same collision
// rules as Set.
func (c *Context) Merge(other *Context) error {
	if other == nil {
		return nil
	}
	return walkLeaves(nil, other.tree, c.Set)
}

// Eval folds the tree into nested cty object values and returns an HCL
// evaluation context carrying them, along with the engine's function table.
func (c *Context) Eval() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(c.tree))
	for k, child := range c.tree {
		vars[k] = fold(child)
	}
	return &hcl.EvalContext{
		Variables: vars,
		Functions: Functions(),
	}
}

// fold converts a subtree into a single cty value: maps become objects,
// leaves pass through.
func fold(v any) cty.Value {
	switch t := v.(type) {
	case cty.Value:
		return t
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for k, child := range t {
			attrs[k] = fold(child)
		}
		return cty.ObjectVal(attrs)
	default:
		// Unreachable: the tree only ever holds maps and cty values.
		return cty.NilVal
	}
}

// walkLeaves invokes fn for every cty leaf of tree, passing its full path.
func walkLeaves(prefix []string, tree map[string]any, fn func([]string, cty.Value) error) error {
	for k, child := range tree {
		path := append(append([]string{}, prefix...), k)
		switch t := child.(type) {
		case cty.Value:
			if err := fn(path, t); err != nil {
				return err
			}
		case map[string]any:
			if err := walkLeaves(path, t, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
