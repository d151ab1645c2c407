package dispatch

import (
	"context"
	"io"
	"time"

	"github.com/apex/log"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/expr"
	"github.com/szaffarano/gotask/internal/hooks"
	"github.com/szaffarano/gotask/internal/pipeline"
	"github.com/szaffarano/gotask/internal/store"
	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
)

// Dispatcher runs the dispatch/modify/confirm/undo pass described in
// spec §4.D over one already-piped argument vector. It is the Engine-held
// collaborator spec §9's glossary calls out: "prefer an explicit Engine
// value passed by reference to each pass, holding config, entities,
// columns, aliases, store, and hook runner".
type Dispatcher struct {
	Store   store.Store
	Hooks   *hooks.Runner
	Confirm Confirmer
	Out     io.Writer

	Now            func() temporal.Date
	DateConfig     temporal.Config
	CaseSensitive  bool
	ConfirmationOn bool
	BulkThreshold  int
}

// Result is what a dispatched command produced, for the caller (cmd/root.go)
// to render.
type Result struct {
	Command string
	Tasks   []*task.Task
}

// Dispatch looks up the CMD node's canonical name, runs the safety gate,
// and delegates to the command's handler.
func (d *Dispatcher) Dispatch(ctx context.Context, args []*pipeline.Arg) (*Result, error) {
	cmdArg := findCmd(args)
	if cmdArg == nil {
		return nil, errs.ParseError("", nil, "no command resolved")
	}
	name := cmdArg.Get("canonical")
	spec, ok := Lookup(name)
	if !ok {
		return nil, errs.UnknownError(nil, "unrecognized command %q", name)
	}

	filterArgs := selectArgs(args, pipeline.Filter)
	modArgs := selectArgs(args, pipeline.Modification)

	filter, err := expr.Compile(filterArgs)
	if err != nil {
		return nil, err
	}

	if !spec.ReadOnly {
		if err := d.safetyGate(filter, name); err != nil {
			return nil, err
		}
	}

	if err := d.Store.Lock(!spec.ReadOnly); err != nil {
		return nil, err
	}
	defer d.Store.Unlock()

	pending, err := d.Store.LoadPending()
	if err != nil {
		return nil, err
	}
	var completed []*task.Task
	if !filter.Empty() && !filter.OnlyStatusPending() && !filter.OnlyReferencesIDs() {
		completed, err = d.Store.LoadCompleted()
		if err != nil {
			return nil, err
		}
	}

	now := d.now()
	opts := expr.Options{CaseSensitive: d.CaseSensitive, Now: now, DateConfig: d.DateConfig}

	matches, err := d.selectMatches(pending, completed, filter, opts)
	if err != nil {
		return nil, err
	}

	// pending now carries the renumbered working-set "id" attribute, so it
	// doubles as the dependency-resolution index: `depends:` tokens (id or
	// UUID) are only ever resolved against the pending set.
	index := newTaskIndex(pending)

	if !spec.ReadOnly {
		matches, err = d.confirmWrite(spec, matches)
		if err != nil {
			return nil, err
		}
	}

	switch name {
	case "add":
		return d.runAdd(ctx, modArgs, now, index)
	case "information", "list":
		return &Result{Command: name, Tasks: matches}, nil
	case "modify":
		return d.runModify(ctx, matches, modArgs, opts, now, index)
	case "done":
		return d.runTerminal(ctx, matches, task.Completed, now)
	case "delete":
		return d.runTerminal(ctx, matches, task.Deleted, now)
	case "start":
		return d.runToggleAttr(ctx, matches, "start", now, true)
	case "stop":
		return d.runToggleAttr(ctx, matches, "start", now, false)
	case "annotate":
		return d.runAnnotate(ctx, matches, modArgs, now)
	case "denotate":
		return d.runDenotate(ctx, matches, modArgs)
	case "undo":
		return d.runUndo(ctx)
	default:
		return nil, errs.UnknownError(nil, "command %q has no handler", name)
	}
}

func (d *Dispatcher) now() temporal.Date {
	if d.Now != nil {
		return d.Now()
	}
	return temporal.FromTime(time.Now())
}

// safetyGate aborts a write command issued with an empty filter unless the
// user interactively confirms, per spec §4.D and the SafetyError kind.
func (d *Dispatcher) safetyGate(filter *expr.Filter, cmd string) error {
	if !filter.Empty() {
		return nil
	}
	if d.Confirm == nil {
		return errs.SafetyError("command %q issued with an empty filter and no confirmation available", cmd)
	}
	ok, err := d.Confirm.Ask("This command has no filter and will affect ALL tasks. Continue?")
	if err != nil {
		return err
	}
	if !ok {
		return errs.SafetyError("aborted: empty filter not confirmed")
	}
	return nil
}

func findCmd(args []*pipeline.Arg) *pipeline.Arg {
	for _, a := range args {
		if a.Has(pipeline.Cmd) {
			return a
		}
	}
	return nil
}

func selectArgs(args []*pipeline.Arg, cat pipeline.Category) []*pipeline.Arg {
	var out []*pipeline.Arg
	for _, a := range args {
		if a.Has(cat) {
			out = append(out, a)
		}
	}
	return out
}

// confirmWrite runs the confirmation prompt described in spec §4.D
// "Confirmation": a plain yes/no per task below the bulk threshold, and a
// four-way yes/no/all/quit prompt at or above it, where "all" grants the
// remainder and "quit" aborts silently on the next task.
func (d *Dispatcher) confirmWrite(spec Spec, tasks []*task.Task) ([]*task.Task, error) {
	if !spec.NeedsConfirm || !d.ConfirmationOn || d.Confirm == nil {
		return tasks, nil
	}

	prompt := func(t *task.Task) string {
		return "Modify task " + t.UUID() + " '" + t.Description() + "'?"
	}

	if len(tasks) < d.bulkThreshold() {
		var allowed []*task.Task
		for _, t := range tasks {
			ok, err := d.Confirm.Ask(prompt(t))
			if err != nil {
				return nil, err
			}
			if ok {
				allowed = append(allowed, t)
			} else {
				log.Debugf("skipping task %s: not confirmed", t.UUID())
			}
		}
		return allowed, nil
	}

	var allowed []*task.Task
	allowRest := false
	for _, t := range tasks {
		if allowRest {
			allowed = append(allowed, t)
			continue
		}
		action, err := d.Confirm.AskBulk(prompt(t))
		if err != nil {
			return nil, err
		}
		switch action {
		case AnswerYes:
			allowed = append(allowed, t)
		case AnswerAll:
			allowRest = true
			allowed = append(allowed, t)
		case AnswerQuit:
			return allowed, nil
		case AnswerNo:
			log.Debugf("skipping task %s: not confirmed", t.UUID())
		}
	}
	return allowed, nil
}

func (d *Dispatcher) bulkThreshold() int {
	if d.BulkThreshold > 0 {
		return d.BulkThreshold
	}
	return 3
}
