package expr

import "github.com/szaffarano/gotask/internal/pipeline"

// Filter compiles a FILTER-tagged argument sequence into reusable
// postfix form, so it can be evaluated once per task without re-parsing.
type Filter struct {
	postfix []Item
}

// Compile validates and converts a classified argument sequence into a
// Filter, ready for repeated evaluation against many tasks.
func Compile(args []*pipeline.Arg) (*Filter, error) {
	items := FromArgs(args)
	postfix, err := ToPostfix(items)
	if err != nil {
		return nil, err
	}
	return &Filter{postfix: postfix}, nil
}

// Empty reports whether the filter has no clauses, in which case every
// task passes per spec §4.E "Filter use".
func (f *Filter) Empty() bool { return len(f.postfix) == 0 }

// Matches evaluates the filter against resolver and coerces the result
// to bool.
func (f *Filter) Matches(resolver Resolver, opts Options) (bool, error) {
	if f.Empty() {
		return true, nil
	}
	v, err := Evaluate(f.postfix, resolver, opts)
	if err != nil {
		return false, err
	}
	return v.AsBool(), nil
}

// OnlyStatusPending reports whether the compiled filter is exactly
// `status == 'pending'` (postfix form "status 'pending' =="), the
// shortcut named in spec §4.E that lets the caller skip loading the
// completed-task store.
func (f *Filter) OnlyStatusPending() bool {
	if len(f.postfix) != 3 {
		return false
	}
	return f.postfix[0].Kind == KindIdentifier && f.postfix[0].Text == "status" &&
		f.postfix[1].Kind == KindLiteral && f.postfix[1].Text == "pending" &&
		f.postfix[2].Kind == KindOperator && f.postfix[2].Text == "=="
}

// OnlyReferencesIDs reports whether every identifier/operator in the
// filter concerns id-based lookups (no uuid, no xor — a disjunction of
// plain `id == N` clauses from an ID-list desugar still uses plain
// `or`, so that connective alone doesn't disqualify the shortcut), the
// second completed-store shortcut named in spec §4.E.
func (f *Filter) OnlyReferencesIDs() bool {
	sawID := false
	for _, it := range f.postfix {
		switch {
		case it.Kind == KindIdentifier && it.Text == "uuid":
			return false
		case it.Kind == KindOperator && it.Text == "xor":
			return false
		case it.Kind == KindIdentifier && it.Text == "id":
			sawID = true
		case it.Kind == KindIdentifier:
			return false
		}
	}
	return sawID
}
