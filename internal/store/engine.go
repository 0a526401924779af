// Package store provides the shared file-safe engine that the memory and
// task record stores build on: atomic writes, per-file locking, and a
// store-wide advisory lock for bulk operations.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Engine is the shared concurrency and durability primitive for a project
// tree rooted at Root. It has no knowledge of memories or tasks — those
// live in the sibling memory/task packages.
type Engine struct {
	Root string

	global    sync.RWMutex
	fileLocks sync.Map // absolute path -> *sync.Mutex
}

// NewEngine creates an engine rooted at root. The caller is responsible for
// ensuring root exists (see safeguard.EnsureLayout).
func NewEngine(root string) *Engine {
	return &Engine{Root: root}
}

func (e *Engine) fileLock(path string) *sync.Mutex {
	v, _ := e.fileLocks.LoadOrStore(path, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// WithFileLock serializes writers to a single file. Concurrent writers for
// different files proceed in parallel. It also takes the store-wide lock in
// shared mode, so a bulk operation holding Exclusive blocks all single-file
// writers until it completes.
//
// Locking happens at two levels: an in-process sync.Mutex guards goroutines
// within this server, and a gofrs/flock advisory lock on a sidecar .lock
// file guards against a second memstored process (or the CLI) touching the
// same file concurrently.
func (e *Engine) WithFileLock(path string, fn func() error) error {
	e.global.RLock()
	defer e.global.RUnlock()

	lock := e.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquiring file lock for %s: %w", path, err)
	}
	defer fl.Unlock()

	return fn()
}

// Exclusive runs fn holding the store-wide lock exclusively, for bulk
// operations (dedup, migration, batch enhance) that must not interleave
// with concurrent per-file writes.
func (e *Engine) Exclusive(fn func() error) error {
	e.global.Lock()
	defer e.global.Unlock()
	return fn()
}

// WriteAtomic writes data to path via write-to-temp-then-rename within the
// same directory, so readers never observe a partially written file.
// Callers must already hold the appropriate lock via WithFileLock.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
