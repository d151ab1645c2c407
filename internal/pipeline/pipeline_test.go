package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szaffarano/gotask/internal/config"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	entities, err := config.NewEntities()
	require.NoError(t, err)
	return &Engine{
		Entities: entities,
		Aliases:  map[string]string{"lsp": "list project:Home"},
	}
}

func rawsOf(args []*Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Raw
	}
	return out
}

func TestCaptureTagsBinaryAndBasename(t *testing.T) {
	e := newTestEngine(t)
	args := e.capture([]string{"/usr/bin/task", "list"})
	require.Len(t, args, 2)
	assert.True(t, args[0].Has(Binary))
	assert.Equal(t, "task", args[0].Get("basename"))
}

func TestAliasExpansionReachesFixedPoint(t *testing.T) {
	e := newTestEngine(t)
	args := e.capture([]string{"task", "lsp"})
	expanded, err := e.expandAliases(args)
	require.NoError(t, err)

	raws := rawsOf(expanded)
	assert.Contains(t, raws, "list")
	assert.Contains(t, raws, "project:Home")
}

func TestCategorizeMarksCmdAndFilter(t *testing.T) {
	e := newTestEngine(t)
	args := e.capture([]string{"task", "list", "project:Home"})
	args = e.categorize(args)

	require.True(t, args[1].Has(Cmd))
	require.True(t, args[1].Has(ReadCmd))
	require.True(t, args[2].Has(Filter))
}

func TestCategorizeWriteCommandMarksModification(t *testing.T) {
	e := newTestEngine(t)
	args := e.capture([]string{"task", "1", "modify", "priority:H"})
	args = e.categorize(args)

	require.True(t, args[2].Has(Cmd))
	require.True(t, args[2].Has(WriteCmd))
	require.True(t, args[3].Has(Modification))
	require.True(t, args[1].Has(Filter))
}

func TestCategorizeTerminatorMarksRestAsWord(t *testing.T) {
	e := newTestEngine(t)
	args := e.capture([]string{"task", "add", "--", "buy", "milk"})
	args = e.categorize(args)

	require.True(t, args[2].Has(Terminator))
	require.True(t, args[3].Has(Terminated))
	require.True(t, args[3].Has(Word))
}

func TestDesugarTagFilter(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("+urgent", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "tags", toks[0].Raw)
	assert.Equal(t, "_hastag_", toks[1].Raw)
	assert.Equal(t, "urgent", toks[2].Raw)
}

func TestDesugarAttributePair(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("project:Home", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "project", toks[0].Raw)
	assert.Equal(t, "=", toks[1].Raw)
	assert.Equal(t, "Home", toks[2].Raw)
}

func TestDesugarStatusPairUsesEquality(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("status:pending", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	assert.Equal(t, "==", toks[1].Raw)
}

func TestDesugarDottedModifier(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("due.before:eom", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "due", toks[0].Raw)
	assert.Equal(t, "<", toks[1].Raw)
	assert.Equal(t, "eom", toks[2].Raw)
}

func TestDesugarPattern(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("/milk/", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "description", toks[0].Raw)
	assert.Equal(t, "~", toks[1].Raw)
	assert.Equal(t, "milk", toks[2].Raw)
}

func TestDesugarIDList(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("1,2,5-7", Filter)
	toks, err := e.desugarOne(a)
	require.NoError(t, err)
	raws := rawsOf(toks)
	assert.Equal(t, "(", raws[0])
	assert.Contains(t, raws, "or")
	assert.Equal(t, ")", raws[len(raws)-1])
}

func TestDesugarInvertedIDRangeIsError(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("7-5", Filter)
	_, err := e.desugarOne(a)
	assert.Error(t, err)
}

func TestJunctionInsertionBetweenFilters(t *testing.T) {
	e := newTestEngine(t)
	args := []*Arg{
		literalArg("project", Attribute),
		literalArg("=", Op),
		literalArg("Home", Literal, StringCat),
		literalArg("priority", Attribute),
		literalArg("=", Op),
		literalArg("H", Literal, StringCat),
	}
	out := e.insertJunctions(args)
	raws := rawsOf(out)
	assert.Contains(t, raws, "and")
}

func TestDecomposeModificationTag(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("+urgent", Modification)
	e.decomposeOne(a)
	assert.True(t, a.Has(Tag))
	assert.Equal(t, "urgent", a.Get("name"))
	assert.Equal(t, "+", a.Get("sense"))
}

func TestDecomposeModificationAttribute(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("priority:H", Modification)
	e.decomposeOne(a)
	assert.True(t, a.Has(Attribute))
	assert.Equal(t, "priority", a.Get("name"))
	assert.Equal(t, "H", a.Get("value"))
}

func TestDecomposeModificationSubstitution(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("/milk/bread/g", Modification)
	e.decomposeOne(a)
	assert.True(t, a.Has(Substitution))
	assert.Equal(t, "milk", a.Get("from"))
	assert.Equal(t, "bread", a.Get("to"))
	assert.Equal(t, "g", a.Get("global"))
}

func TestDecomposeBareWord(t *testing.T) {
	e := newTestEngine(t)
	a := NewArg("buy", Modification)
	e.decomposeOne(a)
	assert.True(t, a.Has(Word))
}

func TestRunEndToEndFilterAndCommand(t *testing.T) {
	e := newTestEngine(t)
	args, err := e.Run([]string{"task", "project:Home", "+urgent", "list"}, strings.NewReader(""), true)
	require.NoError(t, err)

	var sawCmd bool
	for _, a := range args {
		if a.Has(Cmd) {
			sawCmd = true
			assert.Equal(t, "list", a.Get("canonical"))
		}
	}
	assert.True(t, sawCmd)
}

func TestRunInjectsImplicitInformationForBareID(t *testing.T) {
	e := newTestEngine(t)
	args, err := e.Run([]string{"task", "42"}, strings.NewReader(""), true)
	require.NoError(t, err)

	var sawInformation bool
	for _, a := range args {
		if a.Has(Cmd) && a.Raw == "information" {
			sawInformation = true
		}
	}
	assert.True(t, sawInformation)
}

func TestRunAppliesOverride(t *testing.T) {
	e := newTestEngine(t)
	args, err := e.Run([]string{"task", "rc.verbose:off", "list"}, strings.NewReader(""), true)
	require.NoError(t, err)

	var found bool
	for _, a := range args {
		if a.Has(ConfigCat) {
			found = true
			assert.Equal(t, "verbose", a.Get("name"))
			assert.Equal(t, "off", a.Get("value"))
		}
	}
	assert.True(t, found)
}
