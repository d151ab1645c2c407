package expr

import (
	"strconv"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/temporal"
	"github.com/szaffarano/gotask/internal/value"
)

// frame is one stack-machine slot: the Value plus the bookkeeping Cmp/Eq
// need (the identifier name, for priority/project special cases) and
// whether this slot was lexed as a /regex/ literal, for '~'.
type frame struct {
	value    value.Value
	attrName string
	isRegex  bool
}

// Options configures evaluation: the case-sensitivity switch named in
// spec §4.V for '~', and the clock/format used to parse date literals.
type Options struct {
	CaseSensitive bool
	Now           temporal.Date
	DateConfig    temporal.Config
}

// Evaluate runs the stack machine over a postfix Item list, as produced
// by ToPostfix. The stack must reduce to exactly one Value; otherwise
// the expression is malformed (spec §4.E "Evaluate").
func Evaluate(postfix []Item, resolver Resolver, opts Options) (value.Value, error) {
	var stack []frame

	push := func(f frame) { stack = append(stack, f) }

	for _, it := range postfix {
		switch it.Kind {
		case KindLiteral:
			push(frame{value: castLiteral(it.Text, opts)})
		case KindRegexLiteral:
			push(frame{value: value.NewString(it.Text), isRegex: true})
		case KindIdentifier:
			if v, ok := resolver.Resolve(it.Text); ok {
				push(frame{value: v, attrName: it.Text})
			} else {
				push(frame{value: value.NewString(it.Text), attrName: it.Text})
			}
		case KindOperator:
			if err := applyOperator(it.Text, &stack, resolver, opts); err != nil {
				return value.Value{}, err
			}
		default:
			return value.Value{}, errs.ParseError(it.Text, nil, "unexpected item in postfix stream")
		}
	}

	if len(stack) != 1 {
		return value.Value{}, errs.ParseError("", nil, "expression did not reduce to a single value")
	}
	return stack[0].value, nil
}

func applyOperator(op string, stackPtr *[]frame, resolver Resolver, opts Options) error {
	stack := *stackPtr
	defer func() { *stackPtr = stack }()

	pop := func() (frame, error) {
		if len(stack) == 0 {
			return frame{}, errs.ParseError(op, nil, "missing operand for %q", op)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	switch op {
	case "_neg_":
		a, err := pop()
		if err != nil {
			return err
		}
		v, err := a.value.Neg()
		if err != nil {
			return errs.ParseError(op, err, "unary negation failed")
		}
		stack = append(stack, frame{value: v})
		return nil
	case "_pos_":
		a, err := pop()
		if err != nil {
			return err
		}
		v, err := a.value.Pos()
		if err != nil {
			return errs.ParseError(op, err, "unary plus failed")
		}
		stack = append(stack, frame{value: v})
		return nil
	case "!":
		a, err := pop()
		if err != nil {
			return err
		}
		v, _ := a.value.Not()
		stack = append(stack, frame{value: v})
		return nil
	}

	b, err := pop()
	if err != nil {
		return err
	}
	a, err := pop()
	if err != nil {
		return err
	}

	var result value.Value
	switch op {
	case "^":
		result, err = a.value.Pow(b.value)
	case "*":
		result, err = a.value.Mul(b.value)
	case "/":
		result, err = a.value.Div(b.value)
	case "%":
		result, err = a.value.Mod(b.value)
	case "+":
		result, err = a.value.Add(b.value)
	case "-":
		result, err = a.value.Sub(b.value)
	case "<", "<=", ">", ">=":
		var cmp int
		cmp, err = value.Cmp(a.value, b.value, a.attrName)
		if err == nil {
			result = value.NewBool(compareSatisfies(op, cmp))
		}
	case "=":
		var ok bool
		ok, err = value.EqPartial(a.value, b.value, a.attrName)
		result = value.NewBool(ok)
	case "==":
		var ok bool
		ok, err = value.EqExact(a.value, b.value, a.attrName)
		result = value.NewBool(ok)
	case "!=":
		var ok bool
		ok, err = value.EqPartial(a.value, b.value, a.attrName)
		result = value.NewBool(!ok)
	case "!==":
		var ok bool
		ok, err = value.EqExact(a.value, b.value, a.attrName)
		result = value.NewBool(!ok)
	case "~":
		var ok bool
		ok, err = value.MatchRegex(a.value, b.value, b.isRegex, opts.CaseSensitive)
		result = value.NewBool(ok)
	case "!~":
		var ok bool
		ok, err = value.MatchRegex(a.value, b.value, b.isRegex, opts.CaseSensitive)
		result = value.NewBool(!ok)
	case "_hastag_", "_notag_":
		has := false
		if tc, ok := resolver.(TagChecker); ok {
			has = tc.HasTag(b.value.AsString())
		}
		if op == "_notag_" {
			has = !has
		}
		result = value.NewBool(has)
	case "and":
		result = value.NewBool(a.value.AsBool() && b.value.AsBool())
	case "or":
		result = value.NewBool(a.value.AsBool() || b.value.AsBool())
	case "xor":
		result = value.NewBool(a.value.AsBool() != b.value.AsBool())
	default:
		return errs.ParseError(op, nil, "unknown operator")
	}
	if err != nil {
		return errs.ParseError(op, err, "evaluating %q", op)
	}
	stack = append(stack, frame{value: result})
	return nil
}

func compareSatisfies(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// castLiteral casts a literal's source text per spec §4.E "Evaluate":
// all-digits casts to int, else a parseable float casts to real, else a
// recognizable duration or date literal casts accordingly, else it
// remains a string.
func castLiteral(text string, opts Options) value.Value {
	if text == "" {
		return value.NewString(text)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.NewInt(n).WithRaw(text)
	}
	if r, err := strconv.ParseFloat(text, 64); err == nil {
		return value.NewReal(r).WithRaw(text)
	}
	if d, err := temporal.ParseDuration(text); err == nil {
		return value.NewDuration(int64(d)).WithRaw(text)
	}
	if d, err := temporal.Parse(text, opts.Now, opts.DateConfig); err == nil {
		return value.NewDate(d.Epoch, d.UTC).WithRaw(text)
	}
	return value.NewString(text)
}
