package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// FS is the filesystem surface the engine mutates. Tests substitute fakes
// to inject failures at precise steps.
type FS interface {
	Rename(ctx context.Context, oldPath, newPath string) error
	Exists(path string) (bool, error)
	ReadDir(dir string) ([]string, error)
}

// OSFS is FS backed by the local filesystem. Renames are retried on
// transient errors with exponential backoff.
type OSFS struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// NewOSFS creates an OSFS with the default retry policy.
func NewOSFS() *OSFS {
	return &OSFS{MaxRetries: 5, BaseDelay: 100 * time.Millisecond}
}

// Rename renames oldPath to newPath.
func (o *OSFS) Rename(ctx context.Context, oldPath, newPath string) error {
	return o.retry(ctx, func() error {
		return os.Rename(oldPath, newPath)
	})
}

// Exists reports whether path names an entry, without following symlinks.
func (o *OSFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadDir lists the entry names of dir.
func (o *OSFS) ReadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (o *OSFS) retry(ctx context.Context, fn func() error) error {
	attempts := o.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(o.BaseDelay * (1 << (attempt - 1))):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
