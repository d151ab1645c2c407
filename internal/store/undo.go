package store

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/task"
)

// undoRecord is one checkpoint: the task's pre- and post-mutation images,
// encoded as store lines so a nil Pre (task creation) or nil Post (task
// deletion from the working set) round-trips cleanly.
type undoRecord struct {
	Pre  string `yaml:"pre,omitempty"`
	Post string `yaml:"post,omitempty"`
}

// SnapshotUndo appends one undo checkpoint. Either pre or post may be nil
// (creation has no pre-image; a command that only reads has no reason to
// call this at all).
func (s *FileStore) SnapshotUndo(pre, post *task.Task) error {
	rec := undoRecord{}
	if pre != nil {
		rec.Pre = EncodeTask(pre)
	}
	if post != nil {
		rec.Post = EncodeTask(post)
	}

	records, err := readUndoLog(s.dir)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return writeUndoLog(s.dir, records)
}

// PopUndo removes and returns the most recent undo checkpoint, decoded
// back into Task values. ok is false when the undo log is empty.
func (s *FileStore) PopUndo() (pre, post *task.Task, ok bool, err error) {
	records, err := readUndoLog(s.dir)
	if err != nil {
		return nil, nil, false, err
	}
	if len(records) == 0 {
		return nil, nil, false, nil
	}

	last := records[len(records)-1]
	records = records[:len(records)-1]
	if err := writeUndoLog(s.dir, records); err != nil {
		return nil, nil, false, err
	}

	if last.Pre != "" {
		if pre, err = DecodeTask(last.Pre); err != nil {
			return nil, nil, false, err
		}
	}
	if last.Post != "" {
		if post, err = DecodeTask(last.Post); err != nil {
			return nil, nil, false, err
		}
	}
	return pre, post, true, nil
}

func undoLogPath(dir string) string { return filepath.Join(dir, undoFile) }

func readUndoLog(dir string) ([]undoRecord, error) {
	path := undoLogPath(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.StoreError(err, "read undo log %s", path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var records []undoRecord
	for {
		var rec undoRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeUndoLog(dir string, records []undoRecord) error {
	path := undoLogPath(dir)
	tmpPath := path + tmpSuffix

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errs.StoreError(err, "open %s", tmpPath)
	}
	enc := yaml.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			return errs.StoreError(err, "encode undo record")
		}
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return errs.StoreError(err, "flush undo log")
	}
	if err := f.Close(); err != nil {
		return errs.StoreError(err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.StoreError(err, "rename %s to %s", tmpPath, path)
	}
	return nil
}
