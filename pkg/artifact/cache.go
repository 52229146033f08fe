// Package artifact provides a keyed cache of file-based artifacts with
// age-based expiry and directory-level eviction. The index is
// in-memory only; the files it references live on disk and their
// mtimes are the source of truth for staleness.
package artifact

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cache maps string keys to artifact file paths. All operations take a
// single mutex, so a concurrent read-evict-write on one key is atomic.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached path for key if the referenced file still
// exists and its last write is no older than maxAge. Any failing
// condition evicts the entry and reports a miss, so a later Get on the
// same key does not re-check the filesystem.
func (c *Cache) Get(key string, maxAge time.Duration) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, ok := c.entries[key]
	if !ok {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(c.entries, key)
		return "", false
	}
	if time.Since(info.ModTime()) > maxAge {
		delete(c.entries, key)
		return "", false
	}
	return path, true
}

// Put records the path for key. Last writer wins; there are no merge
// semantics.
func (c *Cache) Put(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = path
}

// Drop removes every entry whose key matches the predicate
func (c *Cache) Drop(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of indexed entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictOldest deletes artifact files in dir beyond the keep newest by
// last write time. Cleanup is best effort: individual deletion
// failures are logged and skipped, and the function never returns an
// error for them.
func EvictOldest(dir string, keep int) {
	if keep < 0 {
		keep = 0
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("evict: cannot list %s: %v", dir, err)
		return
	}

	type fileAge struct {
		path    string
		modTime time.Time
	}
	var files []fileAge
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, fileAge{
			path:    filepath.Join(dir, de.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	for _, f := range files[min(keep, len(files)):] {
		if err := os.Remove(f.path); err != nil {
			log.Debugf("evict: remove %s: %v", f.path, err)
		} else {
			log.Debugf("evict: removed stale artifact %s", f.path)
		}
	}
}
