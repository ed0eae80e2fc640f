package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/ways/internal/parser"
)

func TestParseMinimalIdentity(t *testing.T) {
	doc, diags, err := parser.Parse(strings.NewReader(`state s initial: transition on("a") skip; ;`))
	require.NoError(t, err)
	require.Empty(t, diags.All())
	require.Len(t, doc.Groups, 1)

	g := doc.Groups[0]
	assert.Equal(t, "s", g.Name)
	assert.True(t, g.Initial)
	assert.Equal(t, 0, doc.InitialIndex)
	require.Len(t, g.Rules, 1)
	assert.Equal(t, []byte("a"), g.Rules[0].OnChars)
	assert.True(t, g.Rules[0].Skip)
}

func TestParseDefaultsToFirstStateWhenNoInitial(t *testing.T) {
	doc, diags, err := parser.Parse(strings.NewReader(`
		state s: transition on("a") skip; ;
		state t: transition skip; ;
	`))
	require.NoError(t, err)
	require.Empty(t, diags.All())
	assert.Equal(t, 0, doc.InitialIndex)
	assert.True(t, doc.Groups[0].Initial)
}

func TestParseAppendsRulesOnRedeclaration(t *testing.T) {
	doc, diags, err := parser.Parse(strings.NewReader(`
		state s initial: transition on("a") skip; ;
		state s: transition on("b") skip; ;
	`))
	require.NoError(t, err)
	require.Len(t, doc.Groups, 1)
	require.Len(t, doc.Groups[0].Rules, 2)
	require.Len(t, diags.Warnings(), 1)
}

func TestParseOnEnd(t *testing.T) {
	doc, _, err := parser.Parse(strings.NewReader(`state s initial: transition on(end) failure("eof"); ;`))
	require.NoError(t, err)
	r := doc.Groups[0].Rules[0]
	assert.True(t, r.OnEOS)
	assert.True(t, r.HasFailure)
	assert.Equal(t, "eof", r.Failure)
}

func TestParseEmptyOnIsSemanticError(t *testing.T) {
	_, diags, err := parser.Parse(strings.NewReader(`state s initial: transition on("") skip; ;`))
	require.Error(t, err)
	require.NotEmpty(t, diags.All())
}

func TestParseInfiniteRuleIsSemanticError(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`state s initial: transition on("a") clear; ;`))
	require.Error(t, err)
}

func TestParseMultipleInitialIsSemanticError(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`
		state a initial: transition skip; ;
		state b initial: transition skip; ;
	`))
	require.Error(t, err)
}

func TestParseFailureIncompatibleWithGo(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`
		state s initial: transition on("a") go(s) failure("x"); ;
	`))
	require.Error(t, err)
}

func TestParseKeepSkipMutuallyExclusive(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`
		state s initial: transition on("a") keep skip; ;
	`))
	require.Error(t, err)
}

func TestParseDuplicateByteInOnSetIsSemanticError(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`state s initial: transition on("aa") skip; ;`))
	require.Error(t, err)
}

func TestParseDuplicateInitialMarkerWarns(t *testing.T) {
	doc, diags, err := parser.Parse(strings.NewReader(`
		state s initial: transition skip; ;
		state s initial: transition on("a") skip; ;
	`))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.InitialIndex)
	require.Len(t, diags.Warnings(), 2) // redeclared state + duplicate initial marker
}

func TestParseDuplicateDefaultRuleIsSemanticError(t *testing.T) {
	_, diags, err := parser.Parse(strings.NewReader(`
		state s initial: transition skip; transition clear skip; ;
	`))
	require.Error(t, err)
	require.NotEmpty(t, diags.All())
}

func TestParseDuplicateDefaultRuleAcrossRedeclarationIsSemanticError(t *testing.T) {
	_, _, err := parser.Parse(strings.NewReader(`
		state s initial: transition skip; ;
		state s: transition clear skip; ;
	`))
	require.Error(t, err)
}

func TestParseStringEscapes(t *testing.T) {
	doc, _, err := parser.Parse(strings.NewReader(`state s initial: transition failure("a\nb\tc\x1"); ;`))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\tcx1", doc.Groups[0].Rules[0].Failure)
}
