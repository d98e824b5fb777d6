package entity

import "fmt"

// CycleError reports circular prerequisite declarations. Key names the
// entity that closed the cycle.
type CycleError struct {
	Key string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected involving entity %q", e.Key)
}

// UnknownEntityError reports a prerequisite identifier with no declaration.
type UnknownEntityError struct {
	ID string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %q is not declared", e.ID)
}
