package dispatch

import "github.com/szaffarano/gotask/internal/task"

// taskIndex resolves a dependency token — a working-set id or a UUID — to
// its *task.Task, built from the pending set once renumber has assigned
// ids. Grounded on original_source/src/commands/Command.cpp's
// modify_task, which resolves `depends:` tokens exclusively against
// context.tdb2.pending: a task cannot depend on one already completed or
// deleted.
type taskIndex struct {
	byUUID map[string]*task.Task
	byID   map[string]*task.Task
}

func newTaskIndex(pending []*task.Task) *taskIndex {
	idx := &taskIndex{byUUID: map[string]*task.Task{}, byID: map[string]*task.Task{}}
	for _, t := range pending {
		idx.byUUID[t.UUID()] = t
		if id := t.Get("id"); id != "" {
			idx.byID[id] = t
		}
	}
	return idx
}

// Lookup implements task.Index.
func (idx *taskIndex) Lookup(id string) (*task.Task, bool) {
	if t, ok := idx.byUUID[id]; ok {
		return t, true
	}
	t, ok := idx.byID[id]
	return t, ok
}
