// Package memstore provides an in-memory implementation of the ifc
// model-store boundary. It is loadable from a JSON scene file, so the
// CLI and the tests can run without a native IFC toolkit. Geometry
// generation is simulated: it walks the progress range and then marks
// the scene's boxes as available.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
)

type record struct {
	entity ifc.Entity
	boxes  []geometry.Box
}

// Model is an in-memory ifc.Model
type Model struct {
	mu         sync.Mutex
	name       string
	entities   map[ifc.Label]*record
	order      []ifc.Label
	contains   map[ifc.Label][]ifc.Label
	decomposes map[ifc.Label][]ifc.Label
	geomReady  bool
	closed     bool

	failBounds map[ifc.Label]bool
	lookups    int
	lastOpts   ifc.GenerateOptions
}

// NewModel creates an empty in-memory model
func NewModel(name string) *Model {
	return &Model{
		name:       name,
		entities:   make(map[ifc.Label]*record),
		contains:   make(map[ifc.Label][]ifc.Label),
		decomposes: make(map[ifc.Label][]ifc.Label),
		failBounds: make(map[ifc.Label]bool),
	}
}

// Name returns the model name
func (m *Model) Name() string { return m.name }

// AddEntity adds an entity with its raw geometric boxes
func (m *Model) AddEntity(e ifc.Entity, boxes ...geometry.Box) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entities[e.Label]; !exists {
		m.order = append(m.order, e.Label)
	}
	m.entities[e.Label] = &record{entity: e, boxes: boxes}
}

// AddContains records a contains-relation from container to element
func (m *Model) AddContains(container ifc.Label, elements ...ifc.Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contains[container] = append(m.contains[container], elements...)
}

// AddDecomposes records that child decomposes into parent
func (m *Model) AddDecomposes(parent ifc.Label, children ...ifc.Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decomposes[parent] = append(m.decomposes[parent], children...)
}

// SetGeometryReady marks the scene boxes as available without running
// a generation pass
func (m *Model) SetGeometryReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geomReady = ready
}

// FailBoundsFor makes GeometricBounds return an error for the label,
// for exercising per-entity degradation
func (m *Model) FailBoundsFor(label ifc.Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBounds[label] = true
}

// BoundsLookups returns how many GeometricBounds calls were made
func (m *Model) BoundsLookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

// LastGenerateOptions returns the options of the most recent
// GenerateGeometry call
func (m *Model) LastGenerateOptions() ifc.GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}

// IsGeometryEmpty reports whether no tessellated geometry is available
func (m *Model) IsGeometryEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.geomReady
}

// GenerateGeometry simulates a tessellation pass: it emits progress in
// 5% steps, honoring cancellation between ticks, then marks the scene
// geometry available. Cancellation discards the pass.
func (m *Model) GenerateGeometry(ctx context.Context, opts ifc.GenerateOptions) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("model %s is closed", m.name)
	}
	m.lastOpts = opts
	m.mu.Unlock()

	for pct := 0; pct <= 100; pct += 5 {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.geomReady = false
			m.mu.Unlock()
			return ctx.Err()
		default:
		}
		if opts.Progress != nil {
			opts.Progress(pct)
		}
	}

	m.mu.Lock()
	m.geomReady = true
	m.mu.Unlock()
	return nil
}

// EntitiesOfKind returns entities of the given kind in insertion order
func (m *Model) EntitiesOfKind(kind ifc.Kind) []ifc.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ifc.Entity
	for _, label := range m.order {
		if rec := m.entities[label]; rec.entity.Kind == kind {
			out = append(out, rec.entity)
		}
	}
	return out
}

// GeometricBounds returns the raw boxes recorded for the entity
func (m *Model) GeometricBounds(label ifc.Label) ([]geometry.Box, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.failBounds[label] {
		return nil, fmt.Errorf("corrupt geometry for label %d", label)
	}
	rec, ok := m.entities[label]
	if !ok {
		return nil, nil
	}
	boxes := make([]geometry.Box, len(rec.boxes))
	copy(boxes, rec.boxes)
	return boxes, nil
}

// ContainedElements returns the contains-relations anchored at the
// container
func (m *Model) ContainedElements(container ifc.Label) []ifc.Label {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ifc.Label, len(m.contains[container]))
	copy(out, m.contains[container])
	return out
}

// DecomposedBy returns the children that decompose into the parent
func (m *Model) DecomposedBy(parent ifc.Label) []ifc.Label {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ifc.Label, len(m.decomposes[parent]))
	copy(out, m.decomposes[parent])
	return out
}

// AllProductLabels returns every product label in insertion order
func (m *Model) AllProductLabels() []ifc.Label {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ifc.Label
	for _, label := range m.order {
		if m.entities[label].entity.Kind == ifc.KindProduct {
			out = append(out, label)
		}
	}
	return out
}

// InstanceCount returns the total entity count
func (m *Model) InstanceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}

// Close releases the model. Further generation calls fail.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
