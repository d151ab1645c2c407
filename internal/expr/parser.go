package expr

import "github.com/szaffarano/gotask/internal/errs"

// stackOp is an operator sitting on the shunting-yard operator stack;
// unary is true for the rewritten _neg_/_pos_/! prefix forms.
type stackOp struct {
	text  string
	prec  int
	assoc assoc
	unary bool
}

// ToPostfix runs the classic shunting-yard algorithm described in spec
// §4.E, validating the Logical/Regex/.../Primitive grammar as a side
// effect of tracking whether an operand or operator is expected next.
// Unmatched parentheses are reported as a ParseError.
func ToPostfix(items []Item) ([]Item, error) {
	var output []Item
	var stack []stackOp
	expectOperand := true

	popWhile := func(cond func(stackOp) bool) {
		for len(stack) > 0 && cond(stack[len(stack)-1]) {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			output = append(output, Item{Text: top.text, Kind: KindOperator})
		}
	}

	for i := 0; i < len(items); i++ {
		it := items[i]
		switch it.Kind {
		case KindLiteral, KindRegexLiteral, KindIdentifier:
			if !expectOperand {
				return nil, errs.ParseError(it.Text, nil, "expected an operator before this operand")
			}
			output = append(output, it)
			expectOperand = false

		case KindLParen:
			if !expectOperand {
				return nil, errs.ParseError(it.Text, nil, "expected an operator before '('")
			}
			stack = append(stack, stackOp{text: "(", prec: -1})
			expectOperand = true

		case KindRParen:
			if expectOperand {
				return nil, errs.ParseError(it.Text, nil, "empty parentheses or dangling operator before ')'")
			}
			found := false
			popWhile(func(s stackOp) bool { return s.text != "(" })
			if len(stack) > 0 && stack[len(stack)-1].text == "(" {
				stack = stack[:len(stack)-1]
				found = true
			}
			if !found {
				return nil, errs.ParseError(it.Text, nil, "unmatched ')'")
			}
			expectOperand = false

		case KindOperator:
			if expectOperand {
				rewritten, ok := unaryOps[it.Text]
				if !ok {
					return nil, errs.ParseError(it.Text, nil, "unexpected operator, expected an operand")
				}
				stack = append(stack, stackOp{text: rewritten, prec: unaryPrec, assoc: right, unary: true})
				// expectOperand remains true: a unary op still wants its operand.
				continue
			}
			info, ok := binaryOps[it.Text]
			if !ok {
				return nil, errs.ParseError(it.Text, nil, "unknown operator")
			}
			popWhile(func(s stackOp) bool {
				if s.text == "(" {
					return false
				}
				if s.unary {
					return s.prec > info.prec
				}
				if info.assoc == left {
					return s.prec >= info.prec
				}
				return s.prec > info.prec
			})
			stack = append(stack, stackOp{text: it.Text, prec: info.prec, assoc: info.assoc})
			expectOperand = true
		}
	}

	if expectOperand && len(items) > 0 {
		return nil, errs.ParseError("", nil, "expression ends with a dangling operator")
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.text == "(" {
			return nil, errs.ParseError("(", nil, "unmatched '('")
		}
		output = append(output, Item{Text: top.text, Kind: KindOperator})
	}

	return output, nil
}
