package evalctx

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSetAndGet(t *testing.T) {
	t.Run("scalar at root", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"a"}, cty.StringVal("value")))

		got, ok := c.Get([]string{"a"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("value"), got)
	})

	t.Run("nested path deepens intermediate maps", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"ctx", "env", "HOME"}, cty.StringVal("/home/u")))

		got, ok := c.Get([]string{"ctx", "env", "HOME"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("/home/u"), got)

		_, ok = c.Get([]string{"ctx", "env"})
		assert.False(t, ok, "an intermediate map is not a leaf value")
	})

	t.Run("sibling leaves share intermediate maps", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"ctx", "env", "HOME"}, cty.StringVal("/home/u")))
		require.NoError(t, c.Set([]string{"ctx", "env", "USER"}, cty.StringVal("u")))

		home, ok := c.Get([]string{"ctx", "env", "HOME"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("/home/u"), home)
		user, ok := c.Get([]string{"ctx", "env", "USER"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("u"), user)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		c := New()
		assert.Error(t, c.Set(nil, cty.StringVal("x")))
	})

	t.Run("missing path", func(t *testing.T) {
		c := New()
		_, ok := c.Get([]string{"nope"})
		assert.False(t, ok)
	})
}

func TestSetCollisions(t *testing.T) {
	t.Run("populated leaf is never overwritten", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"a"}, cty.StringVal("one")))
		err := c.Set([]string{"a"}, cty.StringVal("two"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "already populated")

		got, _ := c.Get([]string{"a"})
		assert.Equal(t, cty.StringVal("one"), got)
	})

	t.Run("descending through an existing leaf fails", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"a"}, cty.StringVal("leaf")))
		err := c.Set([]string{"a", "b"}, cty.StringVal("deeper"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "collides")
	})

	t.Run("leaf over existing subtree fails", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set([]string{"a", "b"}, cty.StringVal("deep")))
		assert.Error(t, c.Set([]string{"a"}, cty.StringVal("shallow")))
	})
}

func TestMerge(t *testing.T) {
	t.Run("disjoint contexts merge cleanly", func(t *testing.T) {
		left := New()
		require.NoError(t, left.Set([]string{"a"}, cty.StringVal("1")))
		right := New()
		require.NoError(t, right.Set([]string{"b", "c"}, cty.StringVal("2")))

		require.NoError(t, left.Merge(right))

		a, ok := left.Get([]string{"a"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("1"), a)
		bc, ok := left.Get([]string{"b", "c"})
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("2"), bc)
	})

	t.Run("colliding leaf is an error", func(t *testing.T) {
		left := New()
		require.NoError(t, left.Set([]string{"a"}, cty.StringVal("1")))
		right := New()
		require.NoError(t, right.Set([]string{"a"}, cty.StringVal("2")))

		assert.Error(t, left.Merge(right))
	})

	t.Run("nil other is a no-op", func(t *testing.T) {
		c := New()
		assert.NoError(t, c.Merge(nil))
	})
}

func TestEval(t *testing.T) {
	c := New()
	require.NoError(t, c.Set([]string{"greeting"}, cty.StringVal("hello")))
	require.NoError(t, c.Set([]string{"ctx", "env", "USER"}, cty.StringVal("u")))

	eval := func(src string) cty.Value {
		expr, diags := hclsyntax.ParseTemplate([]byte(src), "test", hcl.InitialPos)
		require.False(t, diags.HasErrors())
		val, diags := expr.Value(c.Eval())
		require.False(t, diags.HasErrors(), "evaluation failed: %s", diags.Error())
		return val
	}

	t.Run("nested lookup resolves through object values", func(t *testing.T) {
		assert.Equal(t, cty.StringVal("u"), eval("${ctx.env.USER}"))
	})

	t.Run("interpolation renders into surrounding text", func(t *testing.T) {
		assert.Equal(t, cty.StringVal("hello, u"), eval("${greeting}, ${ctx.env.USER}"))
	})

	t.Run("function table is attached", func(t *testing.T) {
		assert.Equal(t, cty.StringVal("HELLO"), eval("${upper(greeting)}"))
	})

	t.Run("fn namespace aliases the same functions", func(t *testing.T) {
		assert.Equal(t, cty.StringVal("HELLO"), eval("${fn::upper(greeting)}"))
	})
}
