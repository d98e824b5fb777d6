package evalctx

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// baseFunctions is the small library of string-shaping helpers available to
// template expressions.
var baseFunctions = map[string]function.Function{
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"join":     stdlib.JoinFunc,
	"format":   stdlib.FormatFunc,
	"coalesce": stdlib.CoalesceFunc,
}

// Functions returns the function table attached to every evaluation
// context. Each function is registered under its plain name and under the
// reserved `fn` namespace (`fn::upper`), so expressions can disambiguate a
// function reference from a variable chain explicitly.
func Functions() map[string]function.Function {
	table := make(map[string]function.Function, len(baseFunctions)*2)
	for name, fn := range baseFunctions {
		table[name] = fn
		table["fn::"+name] = fn
	}
	return table
}
