// Package expr implements the Expression engine from spec §4.E:
// infix-to-postfix conversion by shunting-yard, and a stack machine
// evaluator over value.Value. Structure is validated during that
// conversion only, by checking that operands and operators alternate and
// that parentheses match; there is no separate recursive-descent pass.
package expr

import "github.com/szaffarano/gotask/internal/pipeline"

// ItemKind classifies a single expression token for parsing purposes.
type ItemKind int

const (
	KindOperator ItemKind = iota
	KindLParen
	KindRParen
	KindLiteral
	KindRegexLiteral
	KindIdentifier
)

// Item is one token of the expression stream, built from the FILTER- or
// MODIFICATION-tagged pipeline.Arg sequence spec §4.E takes as input.
type Item struct {
	Text      string
	Kind      ItemKind
	AttrName  string // set on identifiers so Cmp/Eq can special-case priority/project
	IsRegex   bool
}

// FromArgs converts a classified argument sequence into expression
// Items, per spec §4.E "Input": FILTER nodes for the read side,
// MODIFICATION sub-field tokens for write-side expression arithmetic.
func FromArgs(args []*pipeline.Arg) []Item {
	items := make([]Item, 0, len(args))
	for _, a := range args {
		items = append(items, fromArg(a))
	}
	return items
}

func fromArg(a *pipeline.Arg) Item {
	switch {
	case a.Has(pipeline.Op):
		switch a.Raw {
		case "(":
			return Item{Text: a.Raw, Kind: KindLParen}
		case ")":
			return Item{Text: a.Raw, Kind: KindRParen}
		default:
			return Item{Text: a.Raw, Kind: KindOperator}
		}
	case a.Has(pipeline.Regex):
		return Item{Text: a.Raw, Kind: KindRegexLiteral, IsRegex: true}
	case a.Has(pipeline.Literal):
		return Item{Text: a.Raw, Kind: KindLiteral}
	case a.Has(pipeline.Attribute):
		return Item{Text: a.Raw, Kind: KindIdentifier, AttrName: a.Raw}
	default:
		return Item{Text: a.Raw, Kind: KindIdentifier, AttrName: a.Raw}
	}
}
