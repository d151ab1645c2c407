package dispatch

import (
	"github.com/szaffarano/gotask/internal/expr"
	"github.com/szaffarano/gotask/internal/lexer"
)

// lexExpressionWords re-lexes a raw modification value (e.g. "eom+2d")
// into expr.Items, so a date-typed field's value can be evaluated as an
// expression per spec §4.D.
func lexExpressionWords(s string) ([]expr.Item, error) {
	toks, err := lexer.All(s)
	if err != nil {
		return nil, err
	}
	items := make([]expr.Item, 0, len(toks))
	for _, tok := range toks {
		items = append(items, tokenToItem(tok))
	}
	return items, nil
}

func tokenToItem(tok lexer.Token) expr.Item {
	switch tok.Kind {
	case lexer.KindOperator:
		switch tok.Text {
		case "(":
			return expr.Item{Text: tok.Text, Kind: expr.KindLParen}
		case ")":
			return expr.Item{Text: tok.Text, Kind: expr.KindRParen}
		default:
			return expr.Item{Text: tok.Text, Kind: expr.KindOperator}
		}
	case lexer.KindIdentifier, lexer.KindWord:
		// a modification value has no fields to reference, so a bare word
		// here is always a named literal (tomorrow, eom, easter, ...) and
		// must reach castLiteral's temporal.Parse branch, not the filter
		// engine's identifier-resolution path.
		return expr.Item{Text: tok.Text, Kind: expr.KindLiteral}
	default:
		return expr.Item{Text: tok.Text, Kind: expr.KindLiteral}
	}
}
