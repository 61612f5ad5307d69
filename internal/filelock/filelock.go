// Package filelock provides advisory file locks and atomic writes. Locks
// coordinate bulkrename processes that would otherwise rename inside the same
// directory at the same time; atomic writes keep plan and result logs whole.
package filelock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when a lock is held by another process.
var ErrLocked = errors.New("lock is held by another process")

// DefaultRetryDelay is the polling interval while waiting for a lock.
const DefaultRetryDelay = 50 * time.Millisecond

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// LockContext polls for the lock until it is acquired or ctx ends. A lock
// still held when ctx ends yields ErrLocked.
func (fl *FileLock) LockContext(ctx context.Context, retryDelay time.Duration) error {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if acquired {
		return nil
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrLocked, fl.path)
	}
	return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// DirLocker hands out one lock per directory. Lock files live in LockDir,
// never in the directories being renamed, and are named after a hash of the
// directory's absolute path.
type DirLocker struct {
	LockDir    string
	Timeout    time.Duration // How long to wait for a busy directory; 0 fails immediately
	RetryDelay time.Duration
}

// NewDirLocker creates a DirLocker storing its lock files in lockDir.
func NewDirLocker(lockDir string, timeout time.Duration) *DirLocker {
	return &DirLocker{LockDir: lockDir, Timeout: timeout, RetryDelay: DefaultRetryDelay}
}

// LockPath returns the lock file used for dir.
func (d *DirLocker) LockPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(d.LockDir, hex.EncodeToString(sum[:8])+".lock")
}

// Lock acquires the locks of every directory in dirs, in sorted order so two
// runs never wait on each other crosswise. On failure every lock already
// taken is released.
func (d *DirLocker) Lock(ctx context.Context, dirs []string) (func() error, error) {
	if err := os.MkdirAll(d.LockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", d.LockDir, err)
	}

	sorted := append([]string(nil), dirs...)
	sort.Strings(sorted)

	var held []*FileLock
	release := func() error {
		var errs []error
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(); err != nil {
				errs = append(errs, err)
			}
		}
		held = nil
		return errors.Join(errs...)
	}

	for _, dir := range sorted {
		lock := NewFileLock(d.LockPath(dir))
		if err := d.acquire(ctx, lock); err != nil {
			_ = release()
			if errors.Is(err, ErrLocked) {
				return nil, fmt.Errorf("%w: directory %s", ErrLocked, dir)
			}
			return nil, err
		}
		held = append(held, lock)
	}
	return release, nil
}

func (d *DirLocker) acquire(ctx context.Context, lock *FileLock) error {
	if d.Timeout <= 0 {
		ok, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLocked, lock.Path())
		}
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return lock.LockContext(ctx, d.RetryDelay)
}

// AtomicWrite writes data to a file atomically using a temp file and rename strategy.
// Readers never see partial writes, even if the write is interrupted.
//
// The process:
// 1. Create a temporary file in the same directory as the target
// 2. Write and sync the content
// 3. Rename the temporary file to the target path
//
// If the operation fails at any point, the original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
