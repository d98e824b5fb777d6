// Package resolver expands a configuration document whose string values may
// reference other values in the same document. Every referenced path becomes
// a node in a dependency graph; a depth-first, dependency-first traversal
// evaluates each variable against the already-resolved values of its
// dependencies, with the process environment as a fallback source under the
// reserved `ctx.env.` prefix. Resolution is a pure, deterministic, one-shot
// computation: cycles and undefined references are fatal and never retried.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/depweave/internal/ctxlog"
	"github.com/vk/depweave/internal/dag"
	"github.com/vk/depweave/internal/document"
	"github.com/vk/depweave/internal/evalctx"
	"github.com/vk/depweave/internal/refs"
)

// ContextRoot is the fixed root key for the implicit evaluation context.
const ContextRoot = "ctx"

// envSegment, under ContextRoot, is the reserved prefix for environment
// lookups: `ctx.env.<KEY>`.
const envSegment = "env"

// Resolve expands every embedded expression in doc and returns a
// structurally identical document with each expression replaced by its
// rendered value. The env provider backs the reserved `ctx.env.` prefix;
// passing nil uses the process environment.
func Resolve(ctx context.Context, doc document.Document, env EnvProvider) (document.Document, error) {
	logger := ctxlog.FromContext(ctx)
	if env == nil {
		env = OSEnv{}
	}

	// Serialize the whole document and extract every referenced variable
	// from the flat text in one pass.
	serialized, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document for reference extraction: %w", err)
	}
	seedVars, diags := refs.Extract(string(serialized), "document")
	if diags.HasErrors() {
		return nil, &MalformedExpressionError{Expr: "document", Diags: diags}
	}
	logger.Debug("Extracted document references.", "count", len(seedVars))

	// One graph node per distinct variable. A variable defined by an
	// expression of its own contributes dependency edges, adding referenced
	// nodes on demand.
	graph := dag.New[refs.Variable]()
	var discover func(v refs.Variable) error
	discover = func(v refs.Variable) error {
		if graph.Contains(v.Key()) {
			return nil
		}
		if err := graph.Add(v.Key(), v); err != nil {
			return err
		}
		raw, found := doc.Lookup(v.Path)
		if !found {
			return nil
		}
		src, ok := raw.(string)
		if !ok {
			return nil
		}
		children, diags := refs.Extract(src, v.Key())
		if diags.HasErrors() {
			return &MalformedExpressionError{Expr: src, Diags: diags}
		}
		for _, child := range children {
			if err := discover(child); err != nil {
				return err
			}
			if err := graph.AddDirectedEdge(v.Key(), child.Key()); err != nil {
				return err
			}
		}
		return nil
	}
	for _, v := range seedVars {
		if err := discover(v); err != nil {
			return nil, err
		}
	}
	logger.Debug("Variable graph built.", "node_count", graph.Len())

	// Evaluate in dependency order. Results live in a side table owned by
	// this call; the graph itself stays stateless.
	results := make(map[string]cty.Value, graph.Len())
	onVisit := func(n *dag.Node[refs.Variable]) error {
		rendered, err := evaluateNode(doc, env, n, results)
		if err != nil {
			return err
		}
		results[n.Key] = rendered
		logger.Debug("Resolved variable.", "path", n.Key)
		return nil
	}
	onCycle := func(n *dag.Node[refs.Variable]) error {
		return &CircularReferenceError{Path: n.Key}
	}
	if err := graph.Visit(onVisit, onCycle); err != nil {
		return nil, err
	}

	// Merge every resolved variable into one final context and render the
	// whole document against it.
	final := evalctx.New()
	for _, key := range graph.Keys() {
		n, _ := graph.Node(key)
		if err := final.Set(n.Data.Path, results[key]); err != nil {
			return nil, err
		}
	}
	return renderDocument(doc, final)
}

// evaluateNode produces the rendered value for one variable. The document
// is the primary source; paths absent from it fall back to the environment
// provider when they carry the reserved prefix.
func evaluateNode(doc document.Document, env EnvProvider, n *dag.Node[refs.Variable], results map[string]cty.Value) (cty.Value, error) {
	v := n.Data
	raw, found := doc.Lookup(v.Path)
	if !found {
		if key, ok := envKey(v.Path); ok {
			if val, present := env.LookupEnv(key); present {
				return cty.StringVal(val), nil
			}
		}
		return cty.NilVal, &UndefinedVariableError{Path: v.Key()}
	}

	src, ok := raw.(string)
	if !ok {
		return scalarValue(v, raw)
	}

	// Assemble the partial context from this node's already-resolved
	// dependencies.
	ec := evalctx.New()
	for _, dep := range n.Dependencies() {
		if err := ec.Set(dep.Data.Path, results[dep.Key]); err != nil {
			return cty.NilVal, err
		}
	}
	return evaluate(src, v.Key(), ec)
}

// evaluate parses src as a template expression and evaluates it against the
// given context. Function calls are validated against the engine's function
// table before evaluation so the failure names the unknown function.
func evaluate(src, name string, ec *evalctx.Context) (cty.Value, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), name, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, &MalformedExpressionError{Expr: src, Diags: diags}
	}
	if err := checkCalls(expr, src); err != nil {
		return cty.NilVal, err
	}
	val, diags := expr.Value(ec.Eval())
	if diags.HasErrors() {
		return cty.NilVal, &MalformedExpressionError{Expr: src, Diags: diags}
	}
	return val, nil
}

// checkCalls rejects calls to functions absent from the function table.
// Only table entries are callable; the reserved `fn` namespace aliases the
// same functions, so an unknown name under either form is a user error.
func checkCalls(expr hcl.Expression, src string) error {
	table := evalctx.Functions()
	for _, name := range refs.CalledFunctions(expr) {
		if _, ok := table[name]; !ok {
			return &MalformedExpressionError{
				Expr: src,
				Diags: hcl.Diagnostics{{
					Severity: hcl.DiagError,
					Summary:  "Call to unknown function",
					Detail:   fmt.Sprintf("There is no function named %q.", name),
					Subject:  expr.Range().Ptr(),
				}},
			}
		}
	}
	return nil
}

// scalarValue converts a non-string document scalar to a cty value.
// References must resolve to scalar leaves; a mapping or sequence is not a
// renderable value.
func scalarValue(v refs.Variable, raw any) (cty.Value, error) {
	switch t := raw.(type) {
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint64:
		// yaml.v3 decodes integers above MaxInt64 as uint64.
		return cty.NumberUIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case nil:
		return cty.NullVal(cty.String), nil
	default:
		return cty.NilVal, &UndefinedVariableError{Path: v.Key()}
	}
}

// renderDocument performs the single full-document render: every string
// scalar containing an expression is evaluated against the final context
// and replaced by its rendered string. Everything else passes through
// untouched, so a document without cross-references round-trips as a
// functional identity.
func renderDocument(doc document.Document, final *evalctx.Context) (document.Document, error) {
	return doc.Walk(func(path []string, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		if !strings.Contains(s, "${") && !strings.Contains(s, "%{") {
			return value, nil
		}
		val, err := evaluate(s, strings.Join(path, "."), final)
		if err != nil {
			return nil, err
		}
		out, convErr := convert.Convert(val, cty.String)
		if convErr != nil {
			return nil, fmt.Errorf("cannot render value at %q as a string: %w", strings.Join(path, "."), convErr)
		}
		return out.AsString(), nil
	})
}

// envKey reports whether path carries the reserved environment prefix and,
// if so, returns the environment key it names.
func envKey(path []string) (string, bool) {
	if len(path) < 3 || path[0] != ContextRoot || path[1] != envSegment {
		return "", false
	}
	return strings.Join(path[2:], "."), true
}
