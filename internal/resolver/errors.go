package resolver

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// CircularReferenceError reports a variable whose definition, directly or
// transitively, references itself. Path names the variable that closed the
// cycle.
type CircularReferenceError struct {
	Path string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular variable reference involving %q", e.Path)
}

// UndefinedVariableError reports a referenced path that is absent from the
// document and, for environment-prefixed paths, from the environment
// provider as well.
type UndefinedVariableError struct {
	Path string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Path)
}

// MalformedExpressionError reports an expression that failed to parse or
// evaluate. The wrapped diagnostics carry source positions.
type MalformedExpressionError struct {
	Expr  string
	Diags hcl.Diagnostics
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed expression in %q: %s", e.Expr, e.Diags.Error())
}

func (e *MalformedExpressionError) Unwrap() error {
	return e.Diags
}
