package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
)

func ident(name string) Item { return Item{Text: name, Kind: KindIdentifier, AttrName: name} }
func lit(text string) Item   { return Item{Text: text, Kind: KindLiteral} }
func reLit(text string) Item { return Item{Text: text, Kind: KindRegexLiteral, IsRegex: true} }
func op(text string) Item    { return Item{Text: text, Kind: KindOperator} }
func lparen() Item           { return Item{Kind: KindLParen} }
func rparen() Item           { return Item{Kind: KindRParen} }

func TestToPostfixSimpleComparison(t *testing.T) {
	items := []Item{ident("priority"), op("=="), lit("H")}
	postfix, err := ToPostfix(items)
	require.NoError(t, err)
	require.Len(t, postfix, 3)
	assert.Equal(t, "priority", postfix[0].Text)
	assert.Equal(t, "H", postfix[1].Text)
	assert.Equal(t, "==", postfix[2].Text)
}

func TestToPostfixRespectsPrecedence(t *testing.T) {
	// a + b * c -> a b c * +
	items := []Item{ident("a"), op("+"), ident("b"), op("*"), ident("c")}
	postfix, err := ToPostfix(items)
	require.NoError(t, err)
	texts := textsOf(postfix)
	assert.Equal(t, []string{"a", "b", "c", "*", "+"}, texts)
}

func TestToPostfixParens(t *testing.T) {
	// (a + b) * c -> a b + c *
	items := []Item{lparen(), ident("a"), op("+"), ident("b"), rparen(), op("*"), ident("c")}
	postfix, err := ToPostfix(items)
	require.NoError(t, err)
	texts := textsOf(postfix)
	assert.Equal(t, []string{"a", "b", "+", "c", "*"}, texts)
}

func TestToPostfixUnaryMinus(t *testing.T) {
	items := []Item{op("-"), ident("a")}
	postfix, err := ToPostfix(items)
	require.NoError(t, err)
	texts := textsOf(postfix)
	assert.Equal(t, []string{"a", "_neg_"}, texts)
}

func TestToPostfixUnmatchedParen(t *testing.T) {
	items := []Item{lparen(), ident("a")}
	_, err := ToPostfix(items)
	assert.Error(t, err)
}

func TestToPostfixDanglingOperator(t *testing.T) {
	items := []Item{ident("a"), op("+")}
	_, err := ToPostfix(items)
	assert.Error(t, err)
}

func textsOf(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestEvaluateArithmetic(t *testing.T) {
	postfix := []Item{lit("2"), lit("3"), op("+")}
	v, err := Evaluate(postfix, ConstResolver{}, testOptsStatic())
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.AsInt())
}

func TestEvaluateComparison(t *testing.T) {
	postfix := []Item{lit("2"), lit("3"), op("<")}
	v, err := Evaluate(postfix, ConstResolver{}, testOptsStatic())
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestEvaluateDOMResolverPriority(t *testing.T) {
	tk := task.New("x", 1)
	tk.Set("priority", "L")
	resolver := DOMResolver{Task: tk}

	// priority == 'H' should be false, since L < H.
	postfix := []Item{ident("priority"), lit("H"), op("==")}
	v, err := Evaluate(postfix, resolver, testOptsStatic())
	require.NoError(t, err)
	assert.False(t, v.AsBool())
}

func TestEvaluateHasTag(t *testing.T) {
	tk := task.New("x", 1)
	tk.AddTag("urgent")
	resolver := DOMResolver{Task: tk}

	postfix := []Item{ident("tags"), lit("urgent"), op("_hastag_")}
	v, err := Evaluate(postfix, resolver, testOptsStatic())
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestEvaluateRegexMatch(t *testing.T) {
	tk := task.New("buy milk", 1)
	resolver := DOMResolver{Task: tk}

	postfix := []Item{ident("description"), reLit("^buy"), op("~")}
	v, err := Evaluate(postfix, resolver, testOptsStatic())
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestEvaluateUnresolvedIdentifierDegradesToString(t *testing.T) {
	tk := task.New("x", 1)
	resolver := DOMResolver{Task: tk}

	postfix := []Item{ident("nonexistent"), lit("nonexistent"), op("==")}
	v, err := Evaluate(postfix, resolver, testOptsStatic())
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestFilterEmptyMatchesEverything(t *testing.T) {
	f, err := Compile(nil)
	require.NoError(t, err)
	assert.True(t, f.Empty())

	ok, err := f.Matches(DOMResolver{Task: task.New("x", 1)}, testOptsStatic())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterOnlyStatusPendingShortcut(t *testing.T) {
	f := &Filter{postfix: []Item{ident("status"), lit("pending"), op("==")}}
	assert.True(t, f.OnlyStatusPending())
}

func TestFilterOnlyReferencesIDs(t *testing.T) {
	f := &Filter{postfix: []Item{
		ident("id"), lit("1"), op("=="),
		ident("id"), lit("2"), op("=="),
		op("or"),
	}}
	assert.True(t, f.OnlyReferencesIDs())
}

func TestFilterReferencesUUIDBreaksShortcut(t *testing.T) {
	f := &Filter{postfix: []Item{ident("uuid"), lit("abc"), op("=")}}
	assert.False(t, f.OnlyReferencesIDs())
}

func testOptsStatic() Options {
	return Options{CaseSensitive: false, Now: temporal.Date{Epoch: 1785585600, UTC: true}, DateConfig: temporal.DefaultConfig()}
}
