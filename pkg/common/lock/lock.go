// Package lock provides the advisory file locking primitive shared by the
// index manager and the reference manager: a lock file created with
// O_CREAT|O_EXCL next to the resource it protects, released by removing it.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	cerr "github.com/utkarsh5026/SourceControl/pkg/common/err"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
)

// Lock represents an exclusive, advisory, file-based lock. Only one process
// can hold a Lock for a given path at a time; holding one is advisory only
// and depends on every writer going through this package.
type Lock struct {
	path string
	file *os.File
}

// Acquire creates a lock file named name inside dir. It fails immediately if
// the lock file already exists rather than waiting, since this engine is
// single-writer/multi-reader and never queues writers.
func Acquire(dir scpath.SourcePath, name string) (*Lock, error) {
	lockPath := filepath.Join(dir.String(), name)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, cerr.New("lock", cerr.CodeLockFailed, "acquire",
				fmt.Sprintf("%s: another process holds the lock", lockPath), nil)
		}
		return nil, fmt.Errorf("create lock file %s: %w", lockPath, err)
	}

	return &Lock{path: lockPath, file: file}, nil
}

// Release closes and removes the lock file. Releasing an already-released
// lock is not safe; callers should release exactly once, typically via defer.
func (l *Lock) Release() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close lock file: %w", err)
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}

	return nil
}

// Path returns the filesystem path of the lock file.
func (l *Lock) Path() string {
	return l.path
}
