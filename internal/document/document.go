// Package document models the declarative YAML configuration document the
// engine resolves: a tree of mappings, sequences and scalars whose string
// values may embed template expressions.
package document

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the decoded configuration document.
type Document map[string]any

// Parse decodes a YAML document.
func Parse(data []byte) (Document, error) {
	// Decode into a plain map: yaml.v3 propagates a named map type to every
	// nested mapping, which would break the map[string]any assertions used
	// when descending the tree.
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse configuration document: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return Document(m), nil
}

// Load decodes a YAML document from r.
func Load(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration document: %w", err)
	}
	return Parse(data)
}

// Marshal serializes the document back to YAML.
func (d Document) Marshal() ([]byte, error) {
	return yaml.Marshal(map[string]any(d))
}

// Encode writes the document as YAML to w.
func (d Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(d)); err != nil {
		return err
	}
	return enc.Close()
}

// Lookup descends the document along a dotted path, returning the value
// found there. Only mappings are descended; sequence indices are outside
// template scope.
func (d Document) Lookup(path []string) (any, bool) {
	var cur any = map[string]any(d)
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Walk produces a structurally identical document with every scalar value
// replaced by the result of fn. fn receives the dotted path of the mapping
// key holding the value (sequence elements share their containing key's
// path) and the scalar itself.
func (d Document) Walk(fn func(path []string, value any) (any, error)) (Document, error) {
	out, err := walkValue(nil, map[string]any(d), fn)
	if err != nil {
		return nil, err
	}
	return Document(out.(map[string]any)), nil
}

func walkValue(path []string, v any, fn func([]string, any) (any, error)) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			childPath := append(append([]string{}, path...), k)
			replaced, err := walkValue(childPath, child, fn)
			if err != nil {
				return nil, err
			}
			out[k] = replaced
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			replaced, err := walkValue(path, child, fn)
			if err != nil {
				return nil, err
			}
			out[i] = replaced
		}
		return out, nil
	default:
		return fn(path, v)
	}
}
