// Package session owns the lifecycle of the single open model handle:
// open, size the geometry budget, generate, expose the model to
// queries, and dispose. A newer load supersedes an in-flight older one
// instead of racing two models onto the caller.
package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/perf"
)

// Options configures a Session
type Options struct {
	// AdjustCoordinateSystem is passed through to geometry generation
	AdjustCoordinateSystem bool

	// DisposeTimeout bounds how long Dispose waits for in-flight
	// background work before releasing the handle anyway
	DisposeTimeout time.Duration

	// OnProgress receives 0-100 geometry generation ticks. May be
	// called from the loading goroutine; the caller marshals.
	OnProgress ifc.ProgressFunc
}

// handle pairs a model with the queries currently leased on it, so the
// handle is never closed mid-query
type handle struct {
	model ifc.Model
	refs  sync.WaitGroup
}

// Session holds at most one open model handle at a time
type Session struct {
	store ifc.Store
	opts  Options

	mu       sync.Mutex
	cur      *handle
	path     string
	derived  []ifc.Model
	cancel   context.CancelFunc
	loadSeq  int
	inflight sync.WaitGroup
}

// New creates a session over the given store
func New(store ifc.Store, opts Options) *Session {
	if opts.DisposeTimeout <= 0 {
		opts.DisposeTimeout = 5 * time.Second
	}
	return &Session{store: store, opts: opts}
}

// Load opens the model at path, sizes the generation budget from the
// instance count, ensures geometry exists, and installs the result as
// the current model (closing the previous one). Calling Load again
// while an older Load is still generating cancels the older one; the
// superseded call returns context.Canceled and its model is released,
// never installed.
//
// Load blocks; callers wanting a responsive surface run it on a
// background goroutine and marshal the result.
func (s *Session) Load(ctx context.Context, path string) (ifc.Model, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	s.inflight.Add(1)
	defer s.inflight.Done()

	model, err := s.store.Open(path)
	if err != nil {
		return nil, err
	}

	count := model.InstanceCount()
	cfg := GenerateConfig{
		MaxThreads:             perf.ThreadBudget(count),
		Deflection:             perf.DetailLevel(count),
		AdjustCoordinateSystem: s.opts.AdjustCoordinateSystem,
		OnProgress:             s.opts.OnProgress,
	}
	log.Infof("loading %s: %d instances, %d threads, %s detail",
		path, count, cfg.MaxThreads, perf.DescribeDetail(cfg.Deflection))

	if err := EnsureGeometry(ctx, model, cfg); err != nil {
		// Abort cleanly: never leave a half-initialized session
		closeQuietly(model)
		return nil, err
	}

	s.mu.Lock()
	if s.loadSeq != seq {
		// A newer load superseded this one while it was generating;
		// its model was never exposed, so close it directly
		s.mu.Unlock()
		closeQuietly(model)
		return nil, context.Canceled
	}
	old := s.cur
	oldDerived := s.derived
	s.cur = &handle{model: model}
	s.path = path
	s.derived = nil
	s.mu.Unlock()

	if old != nil || len(oldDerived) > 0 {
		// Release the superseded model off the load path: queries
		// leased on it may still be scanning, and waitAndClose blocks
		// until they finish
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			for _, d := range oldDerived {
				closeQuietly(d)
			}
			if old != nil {
				s.waitAndClose(old)
			}
		}()
	}
	return model, nil
}

// Current returns the active model, or nil when none is loaded
func (s *Session) Current() ifc.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	return s.cur.model
}

// Acquire leases the active model for a query. The session will not
// close the handle while the lease is outstanding, so the model stays
// safe to query until the release function is called. Returns nil when
// no model is loaded; release is idempotent.
func (s *Session) Acquire() (ifc.Model, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil, nil
	}
	h := s.cur
	h.refs.Add(1)
	var once sync.Once
	return h.model, func() { once.Do(h.refs.Done) }
}

// Path returns the file path of the active model
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// AdoptDerived registers a filtered sub-model so it is released
// alongside the session
func (s *Session) AdoptDerived(m ifc.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.derived = append(s.derived, m)
}

// Dispose cancels any in-flight load, waits (bounded) for background
// work tied to the session, and releases the model handle and every
// derived sub-model. Safe to call more than once.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loadSeq++ // any still-running load must not install its model
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.opts.DisposeTimeout):
		log.Errorf("dispose: in-flight work did not finish within %v", s.opts.DisposeTimeout)
	}

	s.mu.Lock()
	cur := s.cur
	derived := s.derived
	s.cur = nil
	s.path = ""
	s.derived = nil
	s.mu.Unlock()

	for _, d := range derived {
		closeQuietly(d)
	}
	if cur != nil {
		s.waitAndClose(cur)
	}
}

// waitAndClose waits (bounded) for outstanding query leases on the
// handle, then releases it. Closing anyway after the timeout matches
// the disposal contract: the wait is bounded, not indefinite.
func (s *Session) waitAndClose(h *handle) {
	done := make(chan struct{})
	go func() {
		h.refs.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.opts.DisposeTimeout):
		log.Errorf("release: queries on the model did not finish within %v", s.opts.DisposeTimeout)
	}
	closeQuietly(h.model)
}

func closeQuietly(m ifc.Model) {
	if err := m.Close(); err != nil {
		log.Debugf("close model: %v", err)
	}
}
