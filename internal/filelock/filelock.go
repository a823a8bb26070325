// Package filelock publishes generated documents so that concurrent harvests
// targeting the same output never interleave and readers never observe a
// partially written file.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// LockSuffix is appended to the output path to name its lock file.
	LockSuffix = ".lock"

	lockRetryDelay       = 50 * time.Millisecond
	outputFilePermission = 0o644
	outputDirPermission  = 0o755
	temporaryPattern     = ".harvest-*.tmp"

	errorCreateDirFormat = "create directory %s: %w"
	errorAcquireFormat   = "acquire lock %s: %w"
	errorReleaseFormat   = "release lock %s: %w"
	errorNotAcquiredFmt  = "acquire lock %s: lock not acquired"
)

// OutputLock guards one output path across goroutines and processes.
type OutputLock struct {
	lock *flock.Flock
	path string
}

// NewOutputLock returns the lock guarding outputPath.
func NewOutputLock(outputPath string) *OutputLock {
	lockPath := outputPath + LockSuffix
	return &OutputLock{lock: flock.New(lockPath), path: lockPath}
}

// Path returns the lock file location.
func (outputLock *OutputLock) Path() string {
	return outputLock.path
}

// Acquire blocks until the lock is held or ctx is done.
func (outputLock *OutputLock) Acquire(ctx context.Context) error {
	acquired, err := outputLock.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf(errorAcquireFormat, outputLock.path, err)
	}
	if !acquired {
		return fmt.Errorf(errorNotAcquiredFmt, outputLock.path)
	}
	return nil
}

// Release gives up the lock.
func (outputLock *OutputLock) Release() error {
	if err := outputLock.lock.Unlock(); err != nil {
		return fmt.Errorf(errorReleaseFormat, outputLock.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data through a temporary sibling file and a
// rename, leaving any previous content untouched on failure.
func AtomicWrite(path string, data []byte) (err error) {
	directory := filepath.Dir(path)
	if err = os.MkdirAll(directory, outputDirPermission); err != nil {
		return fmt.Errorf(errorCreateDirFormat, directory, err)
	}
	temporary, err := os.CreateTemp(directory, temporaryPattern)
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", directory, err)
	}
	temporaryPath := temporary.Name()
	defer func() {
		if err != nil {
			_ = temporary.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, err = temporary.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", temporaryPath, err)
	}
	if err = temporary.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", temporaryPath, err)
	}
	if err = temporary.Chmod(outputFilePermission); err != nil {
		return fmt.Errorf("chmod %s: %w", temporaryPath, err)
	}
	if err = temporary.Close(); err != nil {
		return fmt.Errorf("close %s: %w", temporaryPath, err)
	}
	if err = os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", temporaryPath, path, err)
	}
	return nil
}

// LockAndWrite holds the output lock of path while atomically replacing it.
// Missing parent directories are created before the lock is taken. The lock
// file stays next to the output after the write.
func LockAndWrite(ctx context.Context, path string, data []byte) (err error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, outputDirPermission); err != nil {
		return fmt.Errorf(errorCreateDirFormat, directory, err)
	}
	outputLock := NewOutputLock(path)
	if err := outputLock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, outputLock.Release())
	}()
	return AtomicWrite(path, data)
}
