// Package app wires the engine together: a load request flows through
// the export cache into the model session, and filter requests flow
// through the visibility resolver back to the render collaborator.
// All collaborator callbacks cross a single marshal boundary, so the
// core stays thread-agnostic and testable without a UI message loop.
package app

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mdressler/bimscope/internal/export"
	"github.com/mdressler/bimscope/internal/session"
	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/visibility"
)

// RenderTarget is the rendering/UI collaborator. Every method is
// invoked on the interaction thread (via the configured marshal
// function), never directly from a worker goroutine.
type RenderTarget interface {
	// OnModelReady announces that a model finished loading and has
	// geometry
	OnModelReady(model ifc.Model)

	// OnGeometryProgress receives 0-100 generation ticks
	OnGeometryProgress(percent int)

	// OnVisibilitySetChanged hands over the labels to hide; nil means
	// show everything
	OnVisibilitySetChanged(hidden visibility.Set)

	// OnBoundingVolumeForFraming suggests a box to re-frame the camera
	// on; nil means keep the current framing
	OnBoundingVolumeForFraming(volume *geometry.Box)

	// OnSpaceListChanged populates the secondary room selector with
	// the spaces of the active storey
	OnSpaceListChanged(spaces []ifc.Entity)

	// OnLoadFailed reports a failed load with its typed cause
	OnLoadFailed(err error)
}

// Config configures a Controller
type Config struct {
	// Padding is the spatial-fallback margin policy
	Padding visibility.Padding

	// AdjustCoordinateSystem is forwarded to geometry generation
	AdjustCoordinateSystem bool

	// RunOnUI marshals a callback onto the interaction thread. Nil
	// runs callbacks inline, which suits tests and headless use.
	RunOnUI func(func())
}

// Controller is the public entry point of the engine
type Controller struct {
	cfg     Config
	session *session.Session
	exports *export.Coordinator
	target  RenderTarget

	mu        sync.Mutex
	resolver  *visibility.Resolver
	filterSeq int
}

// NewController builds the object graph. The export coordinator and
// its cache are constructed by the caller at startup and passed in;
// there is no shared static state.
func NewController(store ifc.Store, exports *export.Coordinator, target RenderTarget, cfg Config) *Controller {
	if cfg.Padding == (visibility.Padding{}) {
		cfg.Padding = visibility.DefaultPadding()
	}
	if cfg.RunOnUI == nil {
		cfg.RunOnUI = func(f func()) { f() }
	}

	c := &Controller{cfg: cfg, exports: exports, target: target}
	c.session = session.New(store, session.Options{
		AdjustCoordinateSystem: cfg.AdjustCoordinateSystem,
		OnProgress: func(pct int) {
			c.cfg.RunOnUI(func() { target.OnGeometryProgress(pct) })
		},
	})
	return c
}

// LoadDocument exports the document (or reuses a cached artifact),
// opens the resulting model and generates its geometry on a background
// goroutine, then announces the model on the interaction thread. A
// newer load supersedes an in-flight one; the superseded result is
// discarded silently.
func (c *Controller) LoadDocument(ctx context.Context, doc export.Document) {
	go func() {
		path, err := c.exports.ModelFile(doc)
		if err != nil {
			c.reportLoadFailure(err)
			return
		}
		c.loadPath(ctx, path)
	}()
}

// LoadRoomDocument loads a room-scoped export of the document
func (c *Controller) LoadRoomDocument(ctx context.Context, doc export.Document, roomName string) {
	go func() {
		path, err := c.exports.RoomModelFile(doc, roomName)
		if err != nil {
			c.reportLoadFailure(err)
			return
		}
		c.loadPath(ctx, path)
	}()
}

// LoadFile opens a model file directly, bypassing the export cache
func (c *Controller) LoadFile(ctx context.Context, path string) {
	go func() {
		c.loadPath(ctx, path)
	}()
}

func (c *Controller) loadPath(ctx context.Context, path string) {
	model, err := c.session.Load(ctx, path)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			log.Debugf("load of %s superseded", path)
			return
		}
		c.reportLoadFailure(err)
		return
	}

	c.mu.Lock()
	c.resolver = visibility.NewResolver(model, c.cfg.Padding)
	c.mu.Unlock()

	c.cfg.RunOnUI(func() { c.target.OnModelReady(model) })
}

func (c *Controller) reportLoadFailure(err error) {
	log.Errorf("load failed: %v", err)
	c.cfg.RunOnUI(func() { c.target.OnLoadFailed(err) })
}

// Levels returns the loaded model's storeys sorted by elevation, or
// nil when no model is loaded
func (c *Controller) Levels() []ifc.Entity {
	_, r, release := c.acquireResolver()
	if r == nil {
		return nil
	}
	defer release()
	return r.Storeys()
}

// acquireResolver leases the active model together with its resolver.
// The lease keeps the session from closing the handle while a filter
// computation is still querying it.
func (c *Controller) acquireResolver() (ifc.Model, *visibility.Resolver, func()) {
	model, release := c.session.Acquire()
	if model == nil {
		return nil, nil, nil
	}
	c.mu.Lock()
	r := c.resolver
	c.mu.Unlock()
	if r == nil {
		release()
		return nil, nil, nil
	}
	return model, r, release
}

// ShowStorey narrows the scene to the named storey. The computation
// runs on a background goroutine (the spatial fallback can be
// expensive); results are applied last-request-wins, so a stale
// still-computing filter never overwrites a newer selection. A false
// return means the storey was not found by name; nothing changes.
func (c *Controller) ShowStorey(name string) bool {
	model, r, release := c.acquireResolver()
	if r == nil {
		return false
	}
	storey, ok := r.FindStorey(name)
	if !ok {
		release()
		log.Debugf("storey %q not found", name)
		return false
	}

	seq := c.nextFilterSeq()
	go func() {
		defer release()
		result := r.ResolveForStorey(storey)
		hidden := visibility.ComputeHiddenSet(model.AllProductLabels(), result.Visible)
		frame := r.FrameBounds(storey)
		c.applyFilter(seq, hidden, frame, result.Spaces)
	}()
	return true
}

// ShowSpace narrows the scene to the named space. Same contract as
// ShowStorey.
func (c *Controller) ShowSpace(name string) bool {
	model, r, release := c.acquireResolver()
	if r == nil {
		return false
	}
	space, ok := r.FindSpace(name)
	if !ok {
		release()
		log.Debugf("space %q not found", name)
		return false
	}

	seq := c.nextFilterSeq()
	go func() {
		defer release()
		visible := r.ResolveForSpace(space)
		hidden := visibility.ComputeHiddenSet(model.AllProductLabels(), visible)
		frame := r.FrameBounds(space)
		c.applyFilter(seq, hidden, frame, nil)
	}()
	return true
}

// ShowAll restores full visibility
func (c *Controller) ShowAll() {
	seq := c.nextFilterSeq()
	c.applyFilter(seq, nil, nil, nil)
}

func (c *Controller) nextFilterSeq() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filterSeq++
	return c.filterSeq
}

// applyFilter hands a computed filter result to the render target
// unless a newer filter request has been made since it started
func (c *Controller) applyFilter(seq int, hidden visibility.Set, frame *geometry.Box, spaces []ifc.Entity) {
	c.cfg.RunOnUI(func() {
		c.mu.Lock()
		stale := seq != c.filterSeq
		c.mu.Unlock()
		if stale {
			log.Debugf("discarding stale filter result")
			return
		}
		if spaces != nil {
			c.target.OnSpaceListChanged(spaces)
		}
		c.target.OnVisibilitySetChanged(hidden)
		c.target.OnBoundingVolumeForFraming(frame)
	})
}

// Shutdown disposes the session and stops the export coordinator's
// watcher. In-flight background work is awaited with a bounded wait.
func (c *Controller) Shutdown() {
	c.session.Dispose()
	c.exports.Shutdown()
	c.mu.Lock()
	c.resolver = nil
	c.mu.Unlock()
}
