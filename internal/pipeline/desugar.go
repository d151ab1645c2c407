package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/szaffarano/gotask/internal/config"
	"github.com/szaffarano/gotask/internal/errs"
)

// modToOp is the mod -> operator table from spec §4.A step 5/8.
var modToOp = map[string]string{
	"before": "<", "under": "<", "below": "<",
	"after": ">", "over": ">", "above": ">",
	"none": "== ''", "any": "!= ''",
	"is": "==", "equals": "==",
	"isnt": "!=", "not": "!=",
	"has": "~", "contains": "~",
	"hasnt": "!~",
	"startswith": "~ '^value'", "left": "~ '^value'",
	"endswith": "~ 'value$'", "right": "~ 'value$'",
	"word":   `~ '\bvalue\b'`,
	"noword": `!~ '\bvalue\b'`,
}

var tagPattern = regexp.MustCompile(`^([+-])([A-Za-z_][\w]*)$`)
var dottedPattern = regexp.MustCompile(`^([A-Za-z_][\w]*)\.(~?[A-Za-z]+)$`)
var patternPattern = regexp.MustCompile(`^/((?:[^/\\]|\\.)*)/$`)
var substitutionPattern = regexp.MustCompile(`^/((?:[^/\\]|\\.)*)/((?:[^/\\]|\\.)*)/(g?)$`)
var idListPattern = regexp.MustCompile(`^\d+(-\d+)?(,\d+(-\d+)?)*$`)
var uuidItemPattern = regexp.MustCompile(`^[0-9a-fA-F-]{8,36}$`)

// desugarFilters rewrites FILTER nodes per spec §4.A step 5.
func (e *Engine) desugarFilters(args []*Arg) ([]*Arg, error) {
	out := make([]*Arg, 0, len(args))
	for _, a := range args {
		if !a.Has(Filter) {
			out = append(out, a)
			continue
		}
		expanded, err := e.desugarOne(a)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func (e *Engine) desugarOne(a *Arg) ([]*Arg, error) {
	if m := tagPattern.FindStringSubmatch(a.Raw); m != nil {
		sense := "_hastag_"
		if m[1] == "-" {
			sense = "_notag_"
		}
		return []*Arg{
			literalArg("tags", Attribute),
			literalArg(sense, Op),
			literalArg(m[2], Literal, StringCat),
		}, nil
	}

	if toks, ok, err := e.desugarDotted(a); ok || err != nil {
		return toks, err
	}

	if toks, ok, err := e.desugarPair(a); ok || err != nil {
		return toks, err
	}

	if m := patternPattern.FindStringSubmatch(a.Raw); m != nil {
		return []*Arg{
			literalArg("description", Attribute),
			literalArg("~", Op),
			literalArg(m[1], Literal, Regex),
		}, nil
	}

	if toks, ok, err := e.desugarIDList(a); ok || err != nil {
		return toks, err
	}

	if toks, ok, err := e.desugarUUIDList(a); ok || err != nil {
		return toks, err
	}

	return []*Arg{a}, nil
}

func (e *Engine) desugarDotted(a *Arg) ([]*Arg, bool, error) {
	sep := strings.IndexAny(a.Raw, ":=")
	if sep < 0 {
		return nil, false, nil
	}
	namePart, value := a.Raw[:sep], a.Raw[sep+1:]

	m := dottedPattern.FindStringSubmatch(namePart)
	if m == nil {
		return nil, false, nil
	}
	name, rawMod := m[1], m[2]

	negate := false
	if strings.HasPrefix(rawMod, "~") {
		negate = true
		rawMod = strings.TrimPrefix(rawMod, "~")
	}

	canonAttr, err := e.Entities.Canonicalize(config.CategoryAttr, name)
	if err != nil {
		return nil, false, nil
	}
	canonMod, err := e.Entities.Canonicalize(config.CategoryModifier, rawMod)
	if err != nil {
		return nil, true, err
	}
	opTemplate, ok := modToOp[canonMod]
	if !ok {
		return nil, true, errs.ParseError(rawMod, nil, "unknown attribute modifier")
	}
	if negate {
		opTemplate = flipSense(opTemplate)
	}

	return buildAttmod(canonAttr, canonMod, opTemplate, value), true, nil
}

// flipSense inverts a sense-bearing operator, for the leading-'~' flip
// rule in spec §4.A step 5.
func flipSense(op string) string {
	switch {
	case strings.HasPrefix(op, "!~"):
		return "~" + strings.TrimPrefix(op, "!~")
	case strings.HasPrefix(op, "~"):
		return "!~" + strings.TrimPrefix(op, "~")
	case op == "==":
		return "!="
	case op == "!=":
		return "=="
	case op == "< ":
		return ">"
	case op == "<":
		return ">"
	case op == ">":
		return "<"
	case op == "== ''":
		return "!= ''"
	case op == "!= ''":
		return "== ''"
	default:
		return op
	}
}

func buildAttmod(attr, mod, opTemplate, value string) []*Arg {
	opArg := literalArg("", Op, AttMod)
	opArg.Set("modifier", mod)

	attrArg := literalArg(attr, Attribute, AttMod)
	attrArg.Set("modifier", mod)

	switch {
	case strings.Contains(opTemplate, "'^value'"):
		opArg.Raw = "~"
		return []*Arg{attrArg, opArg, literalArg("^"+value, Literal, Regex)}
	case strings.Contains(opTemplate, "'value$'"):
		opArg.Raw = "~"
		return []*Arg{attrArg, opArg, literalArg(value+"$", Literal, Regex)}
	case strings.Contains(opTemplate, `\bvalue\b`):
		op := "~"
		if strings.HasPrefix(opTemplate, "!") {
			op = "!~"
		}
		opArg.Raw = op
		return []*Arg{attrArg, opArg, literalArg(`\b`+value+`\b`, Literal, Regex)}
	case strings.HasSuffix(opTemplate, "''"):
		opArg.Raw = strings.Fields(opTemplate)[0]
		return []*Arg{attrArg, opArg, literalArg("", Literal, StringCat)}
	default:
		opArg.Raw = opTemplate
		return []*Arg{attrArg, opArg, literalArg(value, Literal, StringCat)}
	}
}

func (e *Engine) desugarPair(a *Arg) ([]*Arg, bool, error) {
	sep := strings.IndexAny(a.Raw, ":=")
	if sep < 0 {
		return nil, false, nil
	}
	name, value := a.Raw[:sep], a.Raw[sep+1:]
	if name == "" || strings.Contains(name, ".") {
		return nil, false, nil
	}

	if canon, err := e.Entities.Canonicalize(config.CategoryUDA, name); err == nil {
		return []*Arg{
			literalArg(canon, Attribute, UDA),
			literalArg("=", Op),
			literalArg(value, Literal, StringCat),
		}, true, nil
	}
	if canon, err := e.Entities.Canonicalize(config.CategoryPseudo, name); err == nil {
		pseudo := literalArg(canon, Pseudo)
		pseudo.Set("value", value)
		return []*Arg{pseudo}, true, nil
	}
	canon, err := e.Entities.Canonicalize(config.CategoryAttr, name)
	if err != nil {
		return nil, false, nil
	}
	op := "="
	if canon == "status" {
		op = "=="
	}
	return []*Arg{
		literalArg(canon, Attribute),
		literalArg(op, Op),
		literalArg(value, Literal, StringCat),
	}, true, nil
}

func (e *Engine) desugarIDList(a *Arg) ([]*Arg, bool, error) {
	if !idListPattern.MatchString(a.Raw) {
		return nil, false, nil
	}
	var clauses []*Arg
	first := true
	for _, item := range strings.Split(a.Raw, ",") {
		if lo, hi, ok := strings.Cut(item, "-"); ok {
			a1, err1 := strconv.Atoi(lo)
			a2, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				return nil, true, errs.ParseError(a.Raw, nil, "malformed id range")
			}
			if a1 > a2 {
				return nil, true, errs.ParseError(a.Raw, nil, "inverted id range %s", item)
			}
			if !first {
				clauses = append(clauses, literalArg("or", Op))
			}
			clauses = append(clauses,
				literalArg("(", Op, ID),
				literalArg("id", Attribute, ID),
				literalArg(">=", Op, ID),
				literalArg(lo, Literal, Number, ID),
				literalArg("and", Op, ID),
				literalArg("id", Attribute, ID),
				literalArg("<=", Op, ID),
				literalArg(hi, Literal, Number, ID),
				literalArg(")", Op, ID),
			)
		} else {
			if !first {
				clauses = append(clauses, literalArg("or", Op, ID))
			}
			clauses = append(clauses,
				literalArg("id", Attribute, ID),
				literalArg("==", Op, ID),
				literalArg(item, Literal, Number, ID),
			)
		}
		first = false
	}
	return wrapParens(clauses, ID), true, nil
}

func (e *Engine) desugarUUIDList(a *Arg) ([]*Arg, bool, error) {
	items := strings.Split(a.Raw, ",")
	for _, item := range items {
		if !uuidItemPattern.MatchString(item) || len(item) < 8 {
			return nil, false, nil
		}
	}
	if len(items) == 1 && !strings.Contains(items[0], "-") && !isLikelyUUID(items[0]) {
		return nil, false, nil
	}
	var clauses []*Arg
	for i, item := range items {
		if i > 0 {
			clauses = append(clauses, literalArg("or", Op, UUID))
		}
		clauses = append(clauses,
			literalArg("uuid", Attribute, UUID),
			literalArg("=", Op, UUID),
			literalArg(item, Literal, StringCat, UUID),
		)
	}
	return wrapParens(clauses, UUID), true, nil
}

// isLikelyUUID requires at least one dash, to avoid swallowing bare hex
// numbers into the UUID-list desugaring path.
func isLikelyUUID(s string) bool { return strings.Contains(s, "-") }

func wrapParens(clauses []*Arg, seqTag Category) []*Arg {
	if len(clauses) == 0 {
		return clauses
	}
	out := make([]*Arg, 0, len(clauses)+2)
	out = append(out, literalArg("(", Op, seqTag))
	out = append(out, clauses...)
	out = append(out, literalArg(")", Op, seqTag))
	return out
}

func literalArg(raw string, tags ...Category) *Arg {
	a := NewArg(raw, Filter)
	for _, t := range tags {
		a.Tag(t)
	}
	return a
}

// tagOperators re-tags FILTER nodes whose raw matches a known operator,
// per step 6.
func (e *Engine) tagOperators(args []*Arg) []*Arg {
	for _, a := range args {
		if !a.Has(Filter) {
			continue
		}
		if _, err := e.Entities.Canonicalize(config.CategoryOperator, a.Raw); err == nil {
			a.Tag(Op)
		} else if a.Raw == "(" || a.Raw == ")" {
			a.Tag(Op)
		}
	}
	return args
}

// insertJunctions inserts `and`/`or` between adjacent FILTER nodes per
// step 7.
func (e *Engine) insertJunctions(args []*Arg) []*Arg {
	out := make([]*Arg, 0, len(args))
	var prev *Arg

	for _, a := range args {
		if prev != nil && prev.Has(Filter) && a.Has(Filter) {
			if needsJunction(prev, a) {
				junction := "and"
				if (prev.Has(ID) || prev.Has(UUID)) && (a.Has(ID) || a.Has(UUID)) {
					junction = "or"
				}
				out = append(out, literalArg(junction, Op))
			}
		}
		out = append(out, a)
		prev = a
	}
	return out
}

func needsJunction(left, right *Arg) bool {
	leftIsOpenParen := left.Has(Op) && left.Raw == "("
	leftSuppliesOp := left.Has(Op) && left.Raw != ")"
	rightSuppliesOp := right.Has(Op) && right.Raw != "("
	if leftIsOpenParen || rightSuppliesOp {
		return false
	}
	if leftSuppliesOp {
		return false
	}
	return true
}
