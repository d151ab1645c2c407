// Package hooks implements the external hook subprocess interface from
// spec §6: named events spawn configured executables with a JSON task on
// stdin and expect a (possibly modified) task plus a zero exit on stdout.
//
// The spawn/timeout/pipe machinery is adapted from
// aretext/shell/cmd.go's Cmd.runInShell, generalized from "run a shell and
// let it take the terminal" to "run a filter program over stdin/stdout
// with a deadline", the same exec.Command + shlex.Split + pkg/errors
// wrapping shape.
package hooks

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/task"
)

// Event names one of the hook points from spec §6.
type Event string

const (
	OnLaunch   Event = "on-launch"
	OnExit     Event = "on-exit"
	PreAdd     Event = "on-add"
	PostAdd    Event = "post-add"
	PreModify  Event = "on-modify"
	PostModify Event = "post-modify"
)

// DefaultTimeout bounds a hook's runtime; the collaborator terminates it
// once this elapses, per spec §6 "Cancellation/timeouts".
const DefaultTimeout = 30 * time.Second

// Runner spawns hook programs configured for each Event.
type Runner struct {
	// Commands maps an Event to the configured shell command line
	// (hook.<event>=<command> in the rc file), parsed with shlex the way
	// aretext's shellProgAndArgs splits $SHELL.
	Commands map[Event]string
	Timeout  time.Duration
}

// NewRunner builds a Runner from the rc-file hook.<event> settings.
func NewRunner(commands map[Event]string) *Runner {
	return &Runner{Commands: commands, Timeout: DefaultTimeout}
}

// Configured reports whether any program is registered for event.
func (r *Runner) Configured(event Event) bool {
	_, ok := r.Commands[event]
	return ok
}

// Run invokes the hook registered for event, if any, feeding it t encoded
// as JSON on stdin and decoding its stdout back into a Task. A hook with
// no configured command is a no-op that returns t unchanged. A nonzero
// exit or unparsable stdout is a HookError (spec §7).
func (r *Runner) Run(ctx context.Context, event Event, t *task.Task) (*task.Task, error) {
	line, ok := r.Commands[event]
	if !ok || line == "" {
		return t, nil
	}

	args, err := shlex.Split(line)
	if err != nil || len(args) == 0 {
		return nil, errs.HookError(err, "parsing hook.%s command %q", event, line)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)

	payload, err := marshalTask(t)
	if err != nil {
		return nil, errs.HookError(err, "encoding task for hook.%s", event)
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.HookError(err, "hook.%s timed out after %s", event, timeout)
		}
		return nil, errs.HookError(
			errors.Wrapf(err, "stderr: %s", stderr.String()),
			"hook.%s exited with an error", event,
		)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return t, nil
	}
	modified, err := unmarshalTask(out)
	if err != nil {
		return nil, errs.HookError(err, "hook.%s produced malformed output", event)
	}
	return modified, nil
}

// RunEvent invokes the hook registered for a task-less lifecycle event
// (OnLaunch, OnExit): no task is exchanged, a nonzero exit is a HookError.
// A hook with no configured command is a no-op.
func (r *Runner) RunEvent(ctx context.Context, event Event) error {
	line, ok := r.Commands[event]
	if !ok || line == "" {
		return nil
	}

	args, err := shlex.Split(line)
	if err != nil || len(args) == 0 {
		return errs.HookError(err, "parsing hook.%s command %q", event, line)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return errs.HookError(err, "hook.%s timed out after %s", event, timeout)
		}
		return errs.HookError(
			errors.Wrapf(err, "stderr: %s", stderr.String()),
			"hook.%s exited with an error", event,
		)
	}
	return nil
}
