package ways_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/ways"
)

func TestTranslateMinimalIdentity(t *testing.T) {
	m, diags, run, err := ways.Translate(strings.NewReader(`state s initial: transition on("a") skip; ;`))
	require.NoError(t, err)
	require.Empty(t, diags.All())
	require.NotNil(t, m)

	assert.Equal(t, 1, m.StateCount)
	assert.Equal(t, 3, m.ClassCount)
	assert.True(t, run.OK)
	assert.Equal(t, 1, run.StateCount)
	assert.NotEmpty(t, run.SourceDigest)
}

func TestTranslateReturnsDiagnosticsOnFailure(t *testing.T) {
	m, diags, run, err := ways.Translate(strings.NewReader(`state s initial: transition on("") skip; ;`))
	require.Error(t, err)
	assert.Nil(t, m)
	assert.False(t, run.OK)
	require.NotEmpty(t, diags.All())
}

func TestTranslateIsDeterministicForSamePermutedInput(t *testing.T) {
	m1, _, _, err := ways.Translate(strings.NewReader(`state s initial: transition on("abc") skip; ;`))
	require.NoError(t, err)
	m2, _, _, err := ways.Translate(strings.NewReader(`state s initial: transition on("cba") skip; ;`))
	require.NoError(t, err)

	assert.Equal(t, m1.ClassMap, m2.ClassMap)
	assert.Equal(t, m1.ClassCount, m2.ClassCount)
}
