package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrNotFound indicates the requested key has no stored value.
var ErrNotFound = errors.New("no stored value")

// Storage is the capability the Store persists through. It is injected at
// construction so callers decide whether real storage exists; no environment
// detection happens at call sites.
type Storage interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Remove(key string) error
}

// Dir is a Storage backed by one file per key inside a directory. Writes are
// atomic (temp file + rename) and serialized against other processes with a
// lock file.
type Dir struct {
	path string
	lock *flock.Flock
}

// NewDir creates the directory if needed and returns a Dir storage.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Dir{
		path: path,
		lock: flock.New(filepath.Join(path, ".lock")),
	}, nil
}

// Read returns the stored value for key, or ErrNotFound.
func (d *Dir) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.path, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write stores data under key atomically.
func (d *Dir) Write(key string, data []byte) error {
	if err := d.lock.Lock(); err != nil {
		return fmt.Errorf("lock state directory: %w", err)
	}
	defer func() { _ = d.lock.Unlock() }()

	tmp, err := os.CreateTemp(d.path, key+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, filepath.Join(d.path, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Removing an absent key is not an error.
func (d *Dir) Remove(key string) error {
	if err := d.lock.Lock(); err != nil {
		return fmt.Errorf("lock state directory: %w", err)
	}
	defer func() { _ = d.lock.Unlock() }()

	if err := os.Remove(filepath.Join(d.path, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Discard is the no-op Storage stand-in for contexts without local storage.
// Reads report absence; writes and removes succeed without effect.
type Discard struct{}

func (Discard) Read(string) ([]byte, error) { return nil, ErrNotFound }

func (Discard) Write(string, []byte) error { return nil }

func (Discard) Remove(string) error { return nil }
