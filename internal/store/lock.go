package store

import (
	"os"
	"syscall"

	"github.com/szaffarano/gotask/internal/errs"
)

// fileLock wraps a single lock file with advisory flock(2) locking, shared
// for read-only commands and exclusive for write commands, per spec §6
// ("the pipeline holds an exclusive file lock over the task store for the
// entire write-command duration; read-only commands take a shared lock").
//
// Adapted from aretext/clientserver/filelock.go's acquireLock, generalized
// to take the lock mode as a parameter instead of always being exclusive.
type fileLock struct {
	file *os.File
}

func openLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, errs.StoreError(err, "open lock file %s", path)
	}
	return &fileLock{file: f}, nil
}

func (l *fileLock) lockExclusive() error {
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX); err != nil {
		return errs.StoreError(err, "acquire exclusive lock on %s", l.file.Name())
	}
	return nil
}

func (l *fileLock) lockShared() error {
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_SH); err != nil {
		return errs.StoreError(err, "acquire shared lock on %s", l.file.Name())
	}
	return nil
}

func (l *fileLock) unlock() error {
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		return errs.StoreError(err, "release lock on %s", l.file.Name())
	}
	return l.file.Close()
}
