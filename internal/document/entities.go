package document

import "fmt"

// entitiesKey is the top-level section declaring deployable entities and
// their prerequisite lists.
const entitiesKey = "entities"

// Entities reads the optional `entities:` section and returns the declared
// prerequisite list per entity identifier. An entity with no `depends_on`
// attribute (or a null body) has an empty list. A missing section yields an
// empty map.
//
//	entities:
//	  app:
//	    depends_on: [pkg]
//	  pkg: {}
func (d Document) Entities() (map[string][]string, error) {
	raw, ok := d[entitiesKey]
	if !ok || raw == nil {
		return map[string][]string{}, nil
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("the %q section must be a mapping of entity identifiers", entitiesKey)
	}

	out := make(map[string][]string, len(section))
	for id, body := range section {
		out[id] = nil
		if body == nil {
			continue
		}
		attrs, ok := body.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entity %q must be a mapping", id)
		}
		deps, ok := attrs["depends_on"]
		if !ok || deps == nil {
			continue
		}
		list, ok := deps.([]any)
		if !ok {
			return nil, fmt.Errorf("entity %q: depends_on must be a list of entity identifiers", id)
		}
		for _, item := range list {
			dep, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("entity %q: depends_on entries must be strings, got %T", id, item)
			}
			out[id] = append(out[id], dep)
		}
	}
	return out, nil
}
