// Package task implements the Task model from spec §3: a mapping from
// attribute name to string value plus the derived tags, annotations and
// dependency collections, with the lifecycle invariants enforced on
// mutation.
//
// The attribute-map shape and Get/Set/Has/GetDate accessor style are
// adapted from gotas/pkg/task/task.Task, generalized from a sync-wire
// record into the richer in-memory model the expression engine and
// dispatcher operate on.
package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/szaffarano/gotask/internal/errs"
)

// Status is the task lifecycle state, spec §3.
type Status string

const (
	Pending   Status = "pending"
	Completed Status = "completed"
	Deleted   Status = "deleted"
	Waiting   Status = "waiting"
	Recurring Status = "recurring"
)

// Annotation is a timestamped note attached to a task.
type Annotation struct {
	Entry       int64
	Description string
}

// Task is a mutable attribute-map record plus its derived collections.
// Mandatory fields (uuid, entry, status, description) are always present
// once a Task is constructed via New.
type Task struct {
	data        map[string]string
	tags        map[string]bool
	annotations []Annotation
	depends     map[string]bool
}

// New creates a task with a freshly generated UUID and the given entry
// timestamp, status pending, per the add command's lifecycle rule
// (spec §3 "Lifecycle").
func New(description string, entry int64) *Task {
	t := &Task{
		data:    map[string]string{},
		tags:    map[string]bool{},
		depends: map[string]bool{},
	}
	t.data["uuid"] = uuid.New().String()
	t.data["entry"] = strconv.FormatInt(entry, 10)
	t.data["status"] = string(Pending)
	t.data["description"] = description
	return t
}

// FromMap reconstructs a Task from its persisted representation (used by
// the store when loading pending/completed logs).
func FromMap(data map[string]string, tags []string, annotations []Annotation, depends []string) *Task {
	t := &Task{
		data:        map[string]string{},
		tags:        map[string]bool{},
		annotations: annotations,
		depends:     map[string]bool{},
	}
	for k, v := range data {
		t.data[k] = v
	}
	for _, tg := range tags {
		t.tags[tg] = true
	}
	for _, d := range depends {
		t.depends[d] = true
	}
	return t
}

func (t *Task) UUID() string        { return t.data["uuid"] }
func (t *Task) Status() Status      { return Status(t.data["status"]) }
func (t *Task) Description() string { return t.data["description"] }

func (t *Task) Get(name string) string { return t.data[name] }
func (t *Task) Has(name string) bool {
	_, ok := t.data[name]
	return ok
}

func (t *Task) Set(name, value string) { t.data[name] = value }
func (t *Task) Remove(name string)     { delete(t.data, name) }

func (t *Task) GetInt(name string) int64 {
	n, _ := strconv.ParseInt(t.data[name], 10, 64)
	return n
}

func (t *Task) SetInt(name string, n int64) {
	t.data[name] = strconv.FormatInt(n, 10)
}

func (t *Task) AttrNames() []string {
	names := make([]string, 0, len(t.data))
	for k := range t.data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Tags returns the (sorted) tag set.
func (t *Task) Tags() []string {
	names := make([]string, 0, len(t.tags))
	for tg := range t.tags {
		names = append(names, tg)
	}
	sort.Strings(names)
	return names
}

func (t *Task) HasTag(tag string) bool { return t.tags[tag] }

// AddTag implements '+x': idempotent, testable property 6 ("after +x
// twice it contains exactly one x").
func (t *Task) AddTag(tag string) { t.tags[tag] = true }

// RemoveTag implements '-x'.
func (t *Task) RemoveTag(tag string) { delete(t.tags, tag) }

func (t *Task) Annotations() []Annotation { return t.annotations }

func (t *Task) AddAnnotation(entry int64, description string) {
	t.annotations = append(t.annotations, Annotation{Entry: entry, Description: description})
}

func (t *Task) RemoveAnnotationContaining(substr string) bool {
	for i, a := range t.annotations {
		if strings.Contains(a.Description, substr) {
			t.annotations = append(t.annotations[:i], t.annotations[i+1:]...)
			return true
		}
	}
	return false
}

// Dependencies returns the (sorted) set of dependency UUIDs.
func (t *Task) Dependencies() []string {
	ids := make([]string, 0, len(t.depends))
	for id := range t.depends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddDependency enforces that a task cannot depend on itself and that the
// new edge does not close a cycle in the supplied index, per spec §3's
// dependency invariant and testable property 7.
func (t *Task) AddDependency(dep string, index Index) error {
	if dep == t.UUID() {
		return errs.ValidationError(dep, "a task cannot depend on itself")
	}
	if t.depends[dep] {
		return nil
	}
	if wouldCycle(t.UUID(), dep, index) {
		return errs.ValidationError(dep, "adding dependency %s would create a cycle", dep)
	}
	t.depends[dep] = true
	return nil
}

func (t *Task) RemoveDependency(dep string) { delete(t.depends, dep) }

// Index resolves a UUID to its Task, for dependency cycle detection.
type Index interface {
	Lookup(id string) (*Task, bool)
}

// wouldCycle performs a DFS from `dep` looking for a path back to
// `start`; if found, adding the start->dep edge would close a cycle.
func wouldCycle(start, dep string, index Index) bool {
	seen := map[string]bool{}
	var visit func(id string) bool
	visit = func(id string) bool {
		if id == start {
			return true
		}
		if seen[id] {
			return false
		}
		seen[id] = true
		task, ok := index.Lookup(id)
		if !ok {
			return false
		}
		for _, next := range task.Dependencies() {
			if visit(next) {
				return true
			}
		}
		return false
	}
	return visit(dep)
}

// Validate enforces the lifecycle invariants from spec §3: start >= entry,
// end >= entry, wait < due, recurring tasks need due+recur, non-recurring
// tasks may not have `until`.
func (t *Task) Validate() error {
	entry := t.GetInt("entry")

	if t.Has("start") && t.GetInt("start") < entry {
		return errs.ValidationError("start", "start must not precede entry")
	}
	if t.Has("end") && t.GetInt("end") < entry {
		return errs.ValidationError("end", "end must not precede entry")
	}
	if t.Has("wait") && t.Has("due") && t.GetInt("wait") >= t.GetInt("due") {
		return errs.ValidationError("wait", "wait must precede due")
	}
	if t.Status() == Recurring {
		if !t.Has("due") || !t.Has("recur") {
			return errs.ValidationError("recur", "recurring tasks require both due and recur")
		}
	} else if t.Has("until") {
		return errs.ValidationError("until", "only recurring tasks may have an until date")
	}
	if t.Has("priority") {
		p := strings.ToUpper(t.Get("priority"))
		if p != "" && p != "H" && p != "M" && p != "L" {
			return errs.ValidationError("priority", "priority must be H, M, L or empty")
		}
	}
	if strings.ContainsAny(t.Description(), "\n\r\v\f") {
		return errs.ValidationError("description", "description must not contain vertical whitespace")
	}
	if strings.TrimSpace(t.Description()) == "" {
		return errs.ValidationError("description", "description must not be blank")
	}
	return nil
}

// Clone returns a deep copy, used by the dispatcher to capture undo
// pre-images before a mutation.
func (t *Task) Clone() *Task {
	c := &Task{
		data:    make(map[string]string, len(t.data)),
		tags:    make(map[string]bool, len(t.tags)),
		depends: make(map[string]bool, len(t.depends)),
	}
	for k, v := range t.data {
		c.data[k] = v
	}
	for k := range t.tags {
		c.tags[k] = true
	}
	for k := range t.depends {
		c.depends[k] = true
	}
	c.annotations = append(c.annotations, t.annotations...)
	return c
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, %s, %q)", t.UUID(), t.Status(), t.Description())
}
