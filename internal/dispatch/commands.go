// Package dispatch implements the Dispatcher & modifier from spec §4.D:
// command lookup, the write-command safety gate, modification application,
// confirmation prompts and undo checkpointing.
package dispatch

// Spec describes one command's dispatch-relevant properties, named in
// spec §4.D "Dispatch": read_only, displays_id, needs_confirm.
type Spec struct {
	ReadOnly     bool
	DisplaysID   bool
	NeedsConfirm bool
}

// commandTable is the set of commands spec.md's examples and
// original_source/src/commands/Command.cpp imply for a working core:
// add, list, modify, done, delete, start/stop, annotate/denotate, undo,
// plus the implicit "information" pseudo-command from spec §4.A step 9.
var commandTable = map[string]Spec{
	"add":         {ReadOnly: false, DisplaysID: true, NeedsConfirm: false},
	"list":        {ReadOnly: true, DisplaysID: true, NeedsConfirm: false},
	"information": {ReadOnly: true, DisplaysID: true, NeedsConfirm: false},
	"modify":      {ReadOnly: false, DisplaysID: true, NeedsConfirm: true},
	"done":        {ReadOnly: false, DisplaysID: true, NeedsConfirm: true},
	"delete":      {ReadOnly: false, DisplaysID: true, NeedsConfirm: true},
	"start":       {ReadOnly: false, DisplaysID: true, NeedsConfirm: false},
	"stop":        {ReadOnly: false, DisplaysID: true, NeedsConfirm: false},
	"annotate":    {ReadOnly: false, DisplaysID: true, NeedsConfirm: false},
	"denotate":    {ReadOnly: false, DisplaysID: true, NeedsConfirm: true},
	"undo":        {ReadOnly: false, DisplaysID: false, NeedsConfirm: true},
}

// Lookup returns the Spec for a canonical command name.
func Lookup(name string) (Spec, bool) {
	s, ok := commandTable[name]
	return s, ok
}
