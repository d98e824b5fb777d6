package refs

import "strings"

// Variable identifies one referenced value by its dotted path inside the
// configuration document, e.g. ["ctx","env","HOME"] for `ctx.env.HOME`.
// Two variables are equal iff their dotted-path keys are equal.
type Variable struct {
	Path []string
}

// NewVariable builds a Variable from path segments.
func NewVariable(path ...string) Variable {
	return Variable{Path: path}
}

// Key returns the canonical dotted-path string, suitable for use as a
// graph node key or map key.
func (v Variable) Key() string {
	return strings.Join(v.Path, ".")
}

func (v Variable) String() string {
	return v.Key()
}
