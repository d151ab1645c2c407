package dispatch

import (
	"context"
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/expr"
	"github.com/szaffarano/gotask/internal/hooks"
	"github.com/szaffarano/gotask/internal/pipeline"
	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
)

// runAdd creates a new task from the MODIFICATION args (which for `add`
// carry no pre-existing task to look up), fires the on-add/post-add hooks,
// validates and commits it, and snapshots the creation as an undo
// checkpoint with a nil pre-image (spec §3 "Lifecycle").
func (d *Dispatcher) runAdd(ctx context.Context, modArgs []*pipeline.Arg, now temporal.Date, index task.Index) (*Result, error) {
	t := task.New("", now.Epoch)
	opts := expr.Options{Now: now, DateConfig: d.DateConfig, CaseSensitive: d.CaseSensitive}
	if err := applyModifications(t, modArgs, opts, index); err != nil {
		return nil, err
	}

	modified, err := d.runHook(ctx, hooks.PreAdd, t)
	if err != nil {
		return nil, err
	}
	t = modified

	if err := d.Store.Append(t); err != nil {
		return nil, err
	}
	if err := d.Store.SnapshotUndo(nil, t); err != nil {
		return nil, err
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	if _, err := d.runHook(ctx, hooks.PostAdd, t); err != nil {
		return nil, err
	}

	return &Result{Command: "add", Tasks: []*task.Task{t}}, nil
}

// runModify applies the same MODIFICATION args to every matched task.
func (d *Dispatcher) runModify(ctx context.Context, matches []*task.Task, modArgs []*pipeline.Arg, opts expr.Options, now temporal.Date, index task.Index) (*Result, error) {
	var out []*task.Task
	for _, t := range matches {
		pre := t.Clone()

		if err := applyModifications(t, modArgs, opts, index); err != nil {
			return nil, err
		}
		modified, err := d.runHook(ctx, hooks.PreModify, t)
		if err != nil {
			return nil, err
		}
		t = modified

		if err := d.Store.Update(t); err != nil {
			return nil, err
		}
		if err := d.Store.SnapshotUndo(pre, t); err != nil {
			return nil, err
		}
		if _, err := d.runHook(ctx, hooks.PostModify, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	return &Result{Command: "modify", Tasks: out}, nil
}

// runTerminal moves every matched task to status (completed or deleted),
// stamping end=now, the shared shape behind `done` and `delete`.
func (d *Dispatcher) runTerminal(ctx context.Context, matches []*task.Task, status task.Status, now temporal.Date) (*Result, error) {
	var out []*task.Task
	for _, t := range matches {
		pre := t.Clone()
		t.Set("status", string(status))
		t.SetInt("end", now.Epoch)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if err := d.Store.Update(t); err != nil {
			return nil, err
		}
		if err := d.Store.SnapshotUndo(pre, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := d.Store.GC(); err != nil {
		return nil, err
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	name := "done"
	if status == task.Deleted {
		name = "delete"
	}
	return &Result{Command: name, Tasks: out}, nil
}

// runToggleAttr implements start/stop: set or clear the `start` attribute.
func (d *Dispatcher) runToggleAttr(ctx context.Context, matches []*task.Task, attr string, now temporal.Date, set bool) (*Result, error) {
	var out []*task.Task
	for _, t := range matches {
		pre := t.Clone()
		if set {
			t.SetInt(attr, now.Epoch)
		} else {
			t.Remove(attr)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if err := d.Store.Update(t); err != nil {
			return nil, err
		}
		if err := d.Store.SnapshotUndo(pre, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	name := "stop"
	if set {
		name = "start"
	}
	return &Result{Command: name, Tasks: out}, nil
}

// runAnnotate appends a timestamped note built from the bare-word
// MODIFICATION args to every matched task.
func (d *Dispatcher) runAnnotate(ctx context.Context, matches []*task.Task, modArgs []*pipeline.Arg, now temporal.Date) (*Result, error) {
	var words []string
	for _, a := range modArgs {
		if a.Has(pipeline.Word) {
			words = append(words, a.Raw)
		}
	}
	text := strings.Join(words, " ")
	if strings.TrimSpace(text) == "" {
		return nil, errs.ValidationError("annotation", "annotate requires descriptive text")
	}

	var out []*task.Task
	for _, t := range matches {
		pre := t.Clone()
		t.AddAnnotation(now.Epoch, text)
		if err := d.Store.Update(t); err != nil {
			return nil, err
		}
		if err := d.Store.SnapshotUndo(pre, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	return &Result{Command: "annotate", Tasks: out}, nil
}

// runDenotate removes the first annotation containing the given substring
// from every matched task.
func (d *Dispatcher) runDenotate(ctx context.Context, matches []*task.Task, modArgs []*pipeline.Arg) (*Result, error) {
	var words []string
	for _, a := range modArgs {
		if a.Has(pipeline.Word) {
			words = append(words, a.Raw)
		}
	}
	substr := strings.Join(words, " ")

	var out []*task.Task
	for _, t := range matches {
		pre := t.Clone()
		if !t.RemoveAnnotationContaining(substr) {
			continue
		}
		if err := d.Store.Update(t); err != nil {
			return nil, err
		}
		if err := d.Store.SnapshotUndo(pre, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	return &Result{Command: "denotate", Tasks: out}, nil
}

// runUndo reverts the most recent undo checkpoint, per spec §4.D "Undo".
func (d *Dispatcher) runUndo(ctx context.Context) (*Result, error) {
	pre, post, ok, err := d.Store.PopUndo()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ValidationError("undo", "nothing to undo")
	}

	switch {
	case pre == nil && post != nil:
		// the checkpoint was a creation: undoing it removes the task.
		post.Set("status", string(task.Deleted))
		if err := d.Store.Update(post); err != nil {
			return nil, err
		}
	case pre != nil:
		if err := d.Store.Update(pre); err != nil {
			return nil, err
		}
	}
	if err := d.Store.Commit(); err != nil {
		return nil, err
	}
	return &Result{Command: "undo"}, nil
}

// runHook runs the named hook, if configured, returning t unchanged when
// no hook runner is wired (so tests without a Runner still pass).
func (d *Dispatcher) runHook(ctx context.Context, event hooks.Event, t *task.Task) (*task.Task, error) {
	if d.Hooks == nil {
		return t, nil
	}
	return d.Hooks.Run(ctx, event, t)
}
