// Package export produces and reuses file-based export artifacts. A
// full-model export is keyed by the document's identity and on-disk
// last-write-time, so saving the source document invalidates the
// artifact without an explicit call; room-scoped exports compose that
// key with the room's display name and land in a Rooms subdirectory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mdressler/bimscope/pkg/artifact"
	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/watcher"
)

// Identity describes a host document for cache keying. Saved documents
// are identified by path and last write time; unsaved ones by title
// and instance hash.
type Identity struct {
	Path         string
	LastWrite    time.Time
	Title        string
	InstanceHash string
	Saved        bool
}

// Options carries export parameters to the host document
type Options struct {
	// RoomName scopes the export to one room; empty exports the full
	// model
	RoomName string
}

// Document is the host-application export boundary
type Document interface {
	Identity() Identity

	// Export writes the artifact to filepath.Join(targetDir, fileName).
	// Failures are reported as an ExportError by the coordinator.
	Export(targetDir, fileName string, opts Options) error
}

// Config configures a Coordinator
type Config struct {
	// Dir is the export directory; room artifacts go to Dir/Rooms
	Dir string

	// MaxAge is how old an artifact may be before it is re-exported
	MaxAge time.Duration

	// Keep is how many artifacts to retain per directory after a new
	// export
	Keep int
}

// Coordinator wraps the artifact cache with export-specific keys and
// eviction. One mutex makes the read-evict-export-write sequence
// atomic per coordinator: two goroutines asking for the same document
// never run two redundant exports, and a second Put simply wins.
type Coordinator struct {
	cfg   Config
	cache *artifact.Cache
	mu    sync.Mutex
	dw    *watcher.DocumentWatcher
}

// NewCoordinator creates a coordinator over the given cache
func NewCoordinator(cache *artifact.Cache, cfg Config) *Coordinator {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 5
	}
	return &Coordinator{cfg: cfg, cache: cache}
}

// ModelFile returns the path of an up-to-date full-model export for
// the document, reusing the cached artifact when possible
func (c *Coordinator) ModelFile(doc Document) (string, error) {
	return c.ensure(doc, Options{}, c.cfg.Dir, exportFileName(doc.Identity(), ""))
}

// RoomModelFile returns the path of an up-to-date export scoped to the
// named room
func (c *Coordinator) RoomModelFile(doc Document, roomName string) (string, error) {
	dir := filepath.Join(c.cfg.Dir, "Rooms")
	return c.ensure(doc, Options{RoomName: roomName}, dir, exportFileName(doc.Identity(), roomName))
}

func (c *Coordinator) ensure(doc Document, opts Options, dir, fileName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := doc.Identity()
	key := cacheKey(id, opts.RoomName)
	if path, ok := c.cache.Get(key, c.cfg.MaxAge); ok {
		log.Debugf("export cache hit for %s", key)
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ifc.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	log.Infof("exporting %s to %s", documentName(id), fileName)
	if err := doc.Export(dir, fileName, opts); err != nil {
		return "", &ifc.ExportError{Document: documentName(id), Err: err}
	}

	path := filepath.Join(dir, fileName)
	c.cache.Put(key, path)
	artifact.EvictOldest(dir, c.cfg.Keep)
	return path, nil
}

// InvalidateDocument drops every cache entry derived from the document
// at path. Artifacts on disk are left for the eviction pass.
func (c *Coordinator) InvalidateDocument(path string) {
	prefix := path + "|"
	c.cache.Drop(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
	log.Debugf("invalidated cached exports for %s", path)
}

// WatchDocuments starts dropping cache entries when watched source
// documents change on disk. Call Add on the returned watcher for each
// document of interest; Close is handled by Shutdown.
func (c *Coordinator) WatchDocuments(debounce time.Duration) (*watcher.DocumentWatcher, error) {
	dw, err := watcher.New(debounce, c.InvalidateDocument)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.dw = dw
	c.mu.Unlock()
	return dw, nil
}

// Shutdown stops the document watcher, if any
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	dw := c.dw
	c.dw = nil
	c.mu.Unlock()
	if dw != nil {
		if err := dw.Close(); err != nil {
			log.Debugf("close watcher: %v", err)
		}
	}
}

// cacheKey builds the export cache key. Saved documents key on path
// and mtime so a save invalidates automatically; unsaved ones on title
// and instance hash. A room scope is composed onto the full-model key.
func cacheKey(id Identity, roomName string) string {
	var key string
	if id.Saved {
		key = id.Path + "|" + strconv.FormatInt(id.LastWrite.UnixNano(), 10)
	} else {
		key = id.Title + "|" + id.InstanceHash
	}
	if roomName != "" {
		key += "|room:" + roomName
	}
	return key
}

func documentName(id Identity) string {
	if id.Saved {
		return id.Path
	}
	return id.Title
}

func exportFileName(id Identity, roomName string) string {
	base := id.Title
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(id.Path), filepath.Ext(id.Path))
	}
	if roomName != "" {
		base += "_" + roomName
	}
	return sanitizeFileName(base) + ".ifc"
}

// sanitizeFileName keeps artifact names filesystem-safe
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name = replacer.Replace(name)
	if name == "" {
		name = fmt.Sprintf("export_%d", time.Now().Unix())
	}
	return name
}
