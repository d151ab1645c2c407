package dispatch

import (
	"strconv"
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/expr"
	"github.com/szaffarano/gotask/internal/pipeline"
	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
)

// fiveYearsSeconds is the threshold spec §4.D names for distinguishing a
// relative duration from an absolute date when a date-typed field's value
// is evaluated as an expression (so `due:eom+2d` and `due:+2d` both work).
const fiveYearsSeconds = int64(5 * 365.25 * 24 * 3600)

var dateAttrs = map[string]bool{
	"entry": true, "start": true, "end": true, "due": true,
	"until": true, "wait": true, "scheduled": true,
}

var durationAttrs = map[string]bool{"recur": true}

// applyModifications runs every MODIFICATION node against t in order, per
// spec §4.D "Modification application", then validates the result. index
// resolves `depends:` tokens (working-set id or UUID) against the pending
// set.
func applyModifications(t *task.Task, modArgs []*pipeline.Arg, opts expr.Options, index task.Index) error {
	var wordBuf []string

	flushWords := func() {
		if len(wordBuf) == 0 {
			return
		}
		appendDescriptionWords(t, wordBuf)
		wordBuf = nil
	}

	for _, a := range modArgs {
		switch {
		case a.Has(pipeline.Attribute), a.Has(pipeline.AttMod):
			flushWords()
			if err := applyAttribute(t, a, opts, index); err != nil {
				return err
			}
		case a.Has(pipeline.Tag):
			flushWords()
			name := a.Get("name")
			if a.Get("sense") == "-" {
				t.RemoveTag(name)
			} else {
				t.AddTag(name)
			}
		case a.Has(pipeline.Substitution):
			flushWords()
			applySubstitution(t, a)
		case a.Has(pipeline.Word):
			wordBuf = append(wordBuf, a.Raw)
		}
	}
	flushWords()

	return t.Validate()
}

// applyAttribute sets or clears the named field per its column's typing
// rule. ATTMOD is folded into the same path: the write side has no
// meaningful use for the modifier's comparison semantics, so it is applied
// as a plain attribute assignment of "value" (spec §4.D calls ATTMOD on
// the write side "rarely used").
func applyAttribute(t *task.Task, a *pipeline.Arg, opts expr.Options, index task.Index) error {
	name := a.Get("name")
	value := a.Get("value")

	if name == "depends" {
		return applyDepends(t, value, index)
	}

	switch {
	case value == "":
		t.Remove(name)
		return nil

	case dateAttrs[name]:
		epoch, err := evaluateDateLike(value, opts)
		if err != nil {
			return errs.ValidationError(name, "invalid date expression %q: %v", value, err)
		}
		t.SetInt(name, epoch)
		return nil

	case durationAttrs[name]:
		if _, err := temporal.ParseDuration(value); err != nil {
			return errs.ValidationError(name, "invalid duration %q", value)
		}
		t.Set(name, value)
		return nil

	case name == "priority":
		p := strings.ToUpper(value)
		if p != "" && p != "H" && p != "M" && p != "L" {
			return errs.ValidationError("priority", "priority must be H, M, L or empty")
		}
		t.Set(name, p)
		return nil

	case name == "description", name == "project", name == "status":
		t.Set(name, value)
		return nil

	case strings.HasPrefix(name, "uda."):
		t.Set(name, value)
		return nil

	default:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return errs.ValidationError(name, "%q must be numeric", value)
		}
		t.Set(name, value)
		return nil
	}
}

// applyDepends implements `depends:`, a comma-separated list of pending
// task ids or UUIDs, each optionally "-"-prefixed to remove rather than
// add; `depends:` with no value clears every dependency. Grounded on
// original_source/src/commands/Command.cpp's modify_task dependency
// branch.
func applyDepends(t *task.Task, value string, index task.Index) error {
	if value == "" {
		for _, dep := range t.Dependencies() {
			t.RemoveDependency(dep)
		}
		return nil
	}

	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		removal := strings.HasPrefix(tok, "-")
		if removal {
			tok = tok[1:]
		}

		dep, ok := index.Lookup(tok)
		if !ok {
			return errs.ValidationError("depends", "no such task %q", tok)
		}

		if removal {
			t.RemoveDependency(dep.UUID())
		} else if err := t.AddDependency(dep.UUID(), index); err != nil {
			return err
		}
	}
	return nil
}

// evaluateDateLike evaluates value as an expression and applies the
// 5-year heuristic: a result whose absolute value is under five years in
// seconds is a relative duration added to now; otherwise the evaluated
// value is itself an absolute epoch.
func evaluateDateLike(value string, opts expr.Options) (int64, error) {
	items, err := lexExpressionWords(value)
	if err != nil {
		return 0, err
	}
	postfix, err := expr.ToPostfix(items)
	if err != nil {
		return 0, err
	}
	v, err := expr.Evaluate(postfix, expr.ConstResolver{}, opts)
	if err != nil {
		return 0, err
	}

	seconds := v.AsInt()
	if abs(seconds) < fiveYearsSeconds {
		return opts.Now.Epoch + seconds, nil
	}
	return seconds, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func applySubstitution(t *task.Task, a *pipeline.Arg) {
	from, to, global := a.Get("from"), a.Get("to"), a.Get("global") == "g"
	desc := t.Description()
	if global {
		t.Set("description", strings.ReplaceAll(desc, from, to))
	} else {
		t.Set("description", strings.Replace(desc, from, to, 1))
	}
}

func appendDescriptionWords(t *task.Task, words []string) {
	joined := strings.Join(words, " ")
	if t.Description() == "" {
		t.Set("description", joined)
	} else {
		t.Set("description", t.Description()+" "+joined)
	}
}
