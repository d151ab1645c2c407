package dispatch

import (
	"github.com/szaffarano/gotask/internal/expr"
	"github.com/szaffarano/gotask/internal/task"
)

// selectMatches assigns working-set IDs to the pending set (position in
// store order, 1-based, per spec §4.D "a working-set renumber pass may
// run first" and §8's testable property about filter `1,3-5`), then
// evaluates filter against pending followed by completed, in store order
// (spec §5 "Ordering").
func (d *Dispatcher) selectMatches(pending, completed []*task.Task, filter *expr.Filter, opts expr.Options) ([]*task.Task, error) {
	renumber(pending)

	var out []*task.Task
	for _, t := range pending {
		ok, err := filter.Matches(expr.DOMResolver{Task: t, Now: opts.Now}, opts)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	for _, t := range completed {
		ok, err := filter.Matches(expr.DOMResolver{Task: t, Now: opts.Now}, opts)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// renumber assigns each pending task a 1-based "id" attribute from its
// position in the working set, the renumber pass named in spec §4.D.
func renumber(pending []*task.Task) {
	for i, t := range pending {
		t.SetInt("id", int64(i+1))
	}
}
