// Package refs extracts variable references from template expressions.
//
// Expressions are embedded in string values as HCL template interpolation
// (`${...}`). A reference is an attribute-access chain read root-to-leaf,
// e.g. `${ctx.env.HOME}` references the variable `ctx.env.HOME`. Traversals
// rooted at the reserved `fn` namespace are function references, never
// variables, and are excluded from extraction; plain function calls are
// syntactically distinct from variable chains, but their arguments are
// still walked so no reference inside a call is missed.
package refs

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// FunctionNamespace is the reserved traversal root for function references.
// A chain like `fn.upper` names a function table entry, not a document
// variable.
const FunctionNamespace = "fn"

// Extract parses src as a template expression and returns the set of
// distinct variables it references, deduplicated and sorted by dotted path
// for deterministic output. An expression containing no recognizable
// reference yields an empty slice, not an error. Parse failures are
// reported through the returned diagnostics, which carry source positions
// relative to filename.
func Extract(src, filename string) ([]Variable, hcl.Diagnostics) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	return FromExpression(expr), nil
}

// FromExpression collects the distinct variables referenced anywhere in an
// already-parsed expression, recursing into every sub-expression.
func FromExpression(exprs ...hcl.Expression) []Variable {
	seen := make(map[string]Variable)

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		// The built-in Variables() method walks the whole syntax tree,
		// including conditionals, call arguments and nested templates.
		for _, traversal := range expr.Variables() {
			path := traversalPath(traversal)
			if len(path) == 0 || path[0] == FunctionNamespace {
				continue
			}
			v := Variable{Path: path}
			seen[v.Key()] = v
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]Variable, 0, len(keys))
	for _, k := range keys {
		vars = append(vars, seen[k])
	}
	return vars
}

// CalledFunctions walks the syntax tree of each expression and returns the
// sorted set of function names it calls. Variables() does not report
// calls, so this needs an explicit recursive walk.
func CalledFunctions(exprs ...hcl.Expression) []string {
	functions := make(map[string]struct{})
	for _, expr := range exprs {
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			walkForFunctions(syntaxExpr, functions)
		}
	}

	names := make([]string, 0, len(functions))
	for f := range functions {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// traversalPath converts a traversal into dotted-path segments. The usable
// path is the leading attribute chain: an index step (`a[0].b`) terminates
// the chain at the indexed prefix.
func traversalPath(t hcl.Traversal) []string {
	var path []string
	for _, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			path = append(path, p.Name)
		case hcl.TraverseAttr:
			path = append(path, p.Name)
		default:
			return path
		}
	}
	return path
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}
