package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/task"
)

const (
	pendingFile   = "pending.data"
	completedFile = "completed.data"
	undoFile      = "undo.data"
	lockFile      = "lock"
	tmpSuffix     = ".tmp"
)

// Store is the abstract task store interface from spec §6.
type Store interface {
	LoadPending() ([]*task.Task, error)
	LoadCompleted() ([]*task.Task, error)
	Append(t *task.Task) error
	Update(t *task.Task) error
	Commit() error
	GC() error
	Lock(exclusive bool) error
	Unlock() error
	SnapshotUndo(pre, post *task.Task) error
	PopUndo() (pre, post *task.Task, ok bool, err error)
}

// FileStore is the reference Store implementation: one pending log, one
// completed log and one undo log, all line-oriented per format.go, with
// tmp-file-then-rename commits adapted from
// gotas/pkg/task/repo/data.go's DefaultReadAppender.Append.
type FileStore struct {
	dir string

	mu        sync.Mutex
	lock      *fileLock
	pending   []*task.Task
	completed []*task.Task
	dirty     bool
}

// Open opens (creating if necessary) the pending/completed/undo logs under
// dir, without taking the file lock — callers must call Lock before doing
// any load/append/commit and Unlock when done.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.StoreError(err, "create data directory %s", dir)
	}
	for _, name := range []string{pendingFile, completedFile, undoFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0600); err != nil {
				return nil, errs.StoreError(err, "initialize %s", p)
			} else {
				f.Close()
			}
		}
	}
	return &FileStore{dir: dir}, nil
}

// Lock acquires the store's file lock, shared for read-only commands and
// exclusive for write commands.
func (s *FileStore) Lock(exclusive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := openLock(filepath.Join(s.dir, lockFile))
	if err != nil {
		return err
	}
	if exclusive {
		err = l.lockExclusive()
	} else {
		err = l.lockShared()
	}
	if err != nil {
		return err
	}
	s.lock = l
	return nil
}

// Unlock releases the store's file lock.
func (s *FileStore) Unlock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	err := s.lock.unlock()
	s.lock = nil
	return err
}

// LoadPending reads every task in the pending log.
func (s *FileStore) LoadPending() ([]*task.Task, error) {
	tasks, err := readLog(filepath.Join(s.dir, pendingFile))
	if err != nil {
		return nil, err
	}
	s.pending = tasks
	return tasks, nil
}

// LoadCompleted reads every task in the completed log. Callers honor the
// shortcut described in spec §4.E and skip this call entirely when the
// active filter doesn't need it.
func (s *FileStore) LoadCompleted() ([]*task.Task, error) {
	tasks, err := readLog(filepath.Join(s.dir, completedFile))
	if err != nil {
		return nil, err
	}
	s.completed = tasks
	return tasks, nil
}

func readLog(path string) ([]*task.Task, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.StoreError(err, "open %s", path)
	}
	defer f.Close()

	var tasks []*task.Task
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		t, err := DecodeTask(line)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.StoreError(err, "read %s", path)
	}
	return tasks, nil
}

// Append adds a newly created task to the pending set. The task is only
// persisted to disk once Commit is called, mirroring the teacher's
// copy-to-tmp-then-rename append pattern applied to the whole set at once
// rather than one line at a time.
func (s *FileStore) Append(t *task.Task) error {
	if t.Status() == task.Completed || t.Status() == task.Deleted {
		s.completed = append(s.completed, t)
	} else {
		s.pending = append(s.pending, t)
	}
	s.dirty = true
	return nil
}

// Update marks an existing task (found in either in-memory set by UUID) as
// modified; GC moves it between sets if its terminal status changed.
func (s *FileStore) Update(t *task.Task) error {
	if !replaceByUUID(s.pending, t) && !replaceByUUID(s.completed, t) {
		return errs.StoreError(nil, "update: task %s not loaded", t.UUID())
	}
	s.dirty = true
	return nil
}

func replaceByUUID(set []*task.Task, t *task.Task) bool {
	for i, existing := range set {
		if existing.UUID() == t.UUID() {
			set[i] = t
			return true
		}
	}
	return false
}

// Commit writes the in-memory pending/completed sets back to disk,
// tmp-file-then-rename, the same two-step gotas/pkg/task/repo/data.go uses
// to avoid a torn write being observed by a concurrent reader.
func (s *FileStore) Commit() error {
	if !s.dirty {
		return nil
	}
	if err := writeLog(filepath.Join(s.dir, pendingFile), s.pending); err != nil {
		return err
	}
	if err := writeLog(filepath.Join(s.dir, completedFile), s.completed); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func writeLog(path string, tasks []*task.Task) error {
	tmpPath := path + tmpSuffix
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errs.StoreError(err, "open %s", tmpPath)
	}
	w := bufio.NewWriter(f)
	for _, t := range tasks {
		if _, err := io.WriteString(w, EncodeTask(t)+"\n"); err != nil {
			f.Close()
			return errs.StoreError(err, "write %s", tmpPath)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errs.StoreError(err, "flush %s", tmpPath)
	}
	if err := f.Close(); err != nil {
		return errs.StoreError(err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.StoreError(err, "rename %s to %s", tmpPath, path)
	}
	return nil
}

// GC moves every terminal task (completed or deleted) out of the pending
// set and into the completed set, per spec §6's `gc()` operation. It does
// not renumber working-set IDs itself: IDs are assigned by the dispatcher
// from a task's position in the pending slice, so removing entries from
// that slice is the renumbering.
func (s *FileStore) GC() error {
	var stillPending []*task.Task
	for _, t := range s.pending {
		if t.Status() == task.Completed || t.Status() == task.Deleted {
			s.completed = append(s.completed, t)
		} else {
			stillPending = append(stillPending, t)
		}
	}
	s.pending = stillPending
	s.dirty = true
	return nil
}
