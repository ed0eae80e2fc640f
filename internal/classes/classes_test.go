package classes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/ways/diag"
	"github.com/db47h/ways/internal/classes"
)

func sumUsage(c *classes.Compressor) int {
	sum := 0
	for k := 0; k <= c.MaxClassID(); k++ {
		sum += c.ClassUsage(k)
	}
	return sum
}

func TestSingleRuleAllocatesOneClass(t *testing.T) {
	var diags diag.Collector
	c := classes.New()
	require.True(t, c.Process([]byte("a"), 1, 1, &diags))

	assert.Equal(t, 1, c.MaxClassID())
	assert.Equal(t, 1, c.ClassOf('a'))
	assert.Equal(t, 0, c.ClassOf('b'))
	assert.Equal(t, 256, sumUsage(c))
	assert.Equal(t, 3, c.ClassCount())
}

func TestTwoDisjointSets(t *testing.T) {
	var diags diag.Collector
	c := classes.New()
	require.True(t, c.Process([]byte("ab"), 1, 1, &diags))
	require.True(t, c.Process([]byte("c"), 1, 1, &diags))

	assert.Equal(t, 2, c.MaxClassID())
	assert.Equal(t, c.ClassOf('a'), c.ClassOf('b'))
	assert.NotEqual(t, c.ClassOf('a'), c.ClassOf('c'))
	assert.Equal(t, 4, c.ClassCount())
	assert.Equal(t, 256, sumUsage(c))
}

func TestReclamationKeepsMaxClassIDTight(t *testing.T) {
	var diags diag.Collector
	c := classes.New()
	require.True(t, c.Process([]byte("abc"), 1, 1, &diags))
	require.True(t, c.Process([]byte("abc"), 1, 1, &diags))

	assert.Equal(t, 1, c.MaxClassID(), "reclamation must fire: re-merging the same set should not grow maxClassId")
	assert.Equal(t, 256, sumUsage(c))
}

func TestPermutationInvariance(t *testing.T) {
	var d1, d2 diag.Collector
	c1 := classes.New()
	require.True(t, c1.Process([]byte("abc"), 1, 1, &d1))

	c2 := classes.New()
	require.True(t, c2.Process([]byte("cba"), 1, 1, &d2))

	assert.Equal(t, c1.ClassMap(), c2.ClassMap())
	assert.Equal(t, c1.MaxClassID(), c2.MaxClassID())
}

func TestInvariantsHoldAfterEveryRule(t *testing.T) {
	var diags diag.Collector
	c := classes.New()
	for _, set := range [][]byte{[]byte("a"), []byte("bc"), []byte("abd"), []byte("xyz")} {
		require.True(t, c.Process(set, 1, 1, &diags))
		assert.Equal(t, 256, sumUsage(c))
		for k := 0; k <= c.MaxClassID(); k++ {
			assert.Greater(t, c.ClassUsage(k), 0, "class %d must be live", k)
		}
	}
}

func TestClassCeilingIsSemanticError(t *testing.T) {
	var diags diag.Collector
	c := classes.New()
	ok := true
	for b := 0; b < 255 && ok; b++ {
		ok = c.Process([]byte{byte(b)}, 1, 1, &diags)
	}
	assert.False(t, ok)
	require.Error(t, diags.Fatal())
}
