package internal

import (
	"fmt"

	"github.com/utkarsh5026/SourceControl/pkg/common/lock"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
)

// workdirLockName is the lock file used to serialize working-directory
// transactions, mirroring the name Git itself uses for its index lock.
const workdirLockName = "index.lock"

// LockFile represents a file-based lock for repository operations.
// It prevents concurrent modifications to the working directory.
//
// This wraps the shared pkg/common/lock primitive, which also backs the
// index manager's and reference manager's own locks.
type LockFile struct {
	inner *lock.Lock
}

// AcquireLock attempts to acquire an exclusive lock on the working directory.
// Returns an error if another process already holds the lock.
func AcquireLock(sourceDir scpath.SourcePath) (*LockFile, error) {
	inner, err := lock.Acquire(sourceDir, workdirLockName)
	if err != nil {
		return nil, fmt.Errorf("lock error: %w", ErrLockAcquisitionFailed)
	}

	return &LockFile{inner: inner}, nil
}

// Release releases the lock by closing and deleting the lock file
func (l *LockFile) Release() error {
	return l.inner.Release()
}

// Path returns the lock file path
func (l *LockFile) Path() string {
	return l.inner.Path()
}
