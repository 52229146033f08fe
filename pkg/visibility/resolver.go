// Package visibility computes, for a storey or space of a loaded
// model, the set of entity labels that must stay visible. Explicit
// containment relations are authoritative; when a model ships without
// them (common in interoperable IFC exports) the resolver falls back
// to bounding-box intersection against the container's padded volume.
package visibility

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
)

// Padding controls how much margin is added around a container's box
// before intersection tests, so boundary walls are caught. Storeys pad
// proportionally to include surrounding context; rooms pad by a fixed
// distance in model units. The values are empirical, not load-bearing.
type Padding struct {
	StoreyPercent float64
	RoomFixed     float64
}

// DefaultPadding returns the stock padding policy
func DefaultPadding() Padding {
	return Padding{StoreyPercent: 0.1, RoomFixed: 0.5}
}

// Resolver answers visibility queries against one model
type Resolver struct {
	model ifc.Model
	pad   Padding
}

// NewResolver creates a resolver over the model with the given padding
// policy
func NewResolver(model ifc.Model, pad Padding) *Resolver {
	return &Resolver{model: model, pad: pad}
}

// StoreyResult is the outcome of resolving a storey: the labels to
// keep visible and the spaces belonging to the storey (for a secondary
// room selector; not folded into the label set). Spaces is never nil:
// a storey without rooms yields an empty slice so the selector is
// cleared rather than left showing a previous storey's rooms.
type StoreyResult struct {
	Visible Set
	Spaces  []ifc.Entity
}

// Storeys returns the model's storeys sorted by elevation, lowest
// first. Storeys with a missing or unparseable elevation sort first.
func (r *Resolver) Storeys() []ifc.Entity {
	storeys := r.model.EntitiesOfKind(ifc.KindStorey)
	sort.SliceStable(storeys, func(i, j int) bool {
		return storeys[i].ElevationValue() < storeys[j].ElevationValue()
	})
	return storeys
}

// FindStorey looks a storey up by display name. A false result is a
// miss, not an error.
func (r *Resolver) FindStorey(name string) (ifc.Entity, bool) {
	return findByName(r.model.EntitiesOfKind(ifc.KindStorey), name)
}

// FindSpace looks a space up by display name
func (r *Resolver) FindSpace(name string) (ifc.Entity, bool) {
	return findByName(r.model.EntitiesOfKind(ifc.KindSpace), name)
}

func findByName(entities []ifc.Entity, name string) (ifc.Entity, bool) {
	for _, e := range entities {
		if e.DisplayName() == name {
			return e, true
		}
	}
	return ifc.Entity{}, false
}

// ResolveForStorey computes the labels to keep visible for a storey
// and the storey's spaces. The visible set is seeded with the storey
// itself plus everything in its contains-relations. Spaces come from
// relations first; only when relations yield none does the resolver
// fall back to intersecting each space's box with the storey's padded
// box.
func (r *Resolver) ResolveForStorey(storey ifc.Entity) StoreyResult {
	visible := NewSet(storey.Label)
	for _, l := range r.model.ContainedElements(storey.Label) {
		visible.Add(l)
	}

	spaces := r.spacesByRelation(storey)
	if len(spaces) == 0 {
		spaces = r.spacesByIntersection(storey)
	}
	if spaces == nil {
		// Non-nil so callers can tell "storey has no rooms" (selector
		// must be cleared) from "no storey result at all"
		spaces = []ifc.Entity{}
	}

	return StoreyResult{Visible: visible, Spaces: spaces}
}

// spacesByRelation collects the storey's spaces from decomposition and
// containment relations
func (r *Resolver) spacesByRelation(storey ifc.Entity) []ifc.Entity {
	spaceByLabel := make(map[ifc.Label]ifc.Entity)
	for _, s := range r.model.EntitiesOfKind(ifc.KindSpace) {
		spaceByLabel[s.Label] = s
	}

	var spaces []ifc.Entity
	seen := make(Set)
	for _, l := range r.model.DecomposedBy(storey.Label) {
		if s, ok := spaceByLabel[l]; ok && !seen.Has(l) {
			seen.Add(l)
			spaces = append(spaces, s)
		}
	}
	for _, l := range r.model.ContainedElements(storey.Label) {
		if s, ok := spaceByLabel[l]; ok && !seen.Has(l) {
			seen.Add(l)
			spaces = append(spaces, s)
		}
	}
	return spaces
}

// spacesByIntersection is the spatial fallback for models with
// incomplete relational data: every space whose box intersects the
// storey's padded box belongs to the storey.
func (r *Resolver) spacesByIntersection(storey ifc.Entity) []ifc.Entity {
	storeyBox := r.EntityBounds(storey.Label)
	if storeyBox == nil {
		return nil
	}
	padded := storeyBox.PadPercent(r.pad.StoreyPercent)

	var spaces []ifc.Entity
	for _, s := range r.model.EntitiesOfKind(ifc.KindSpace) {
		box := r.EntityBounds(s.Label)
		if box == nil {
			continue
		}
		if padded.Intersects(*box) {
			spaces = append(spaces, s)
		}
	}
	return spaces
}

// ResolveForSpace computes the labels to keep visible for a space. If
// the space's contains-relations yield nothing beyond the space itself
// the resolver scans every product in the model and keeps those whose
// boxes intersect the space's padded box. That scan is the most
// expensive path, so the cardinality guard skips it whenever relation
// data is present.
func (r *Resolver) ResolveForSpace(space ifc.Entity) Set {
	visible := NewSet(space.Label)
	for _, l := range r.model.ContainedElements(space.Label) {
		visible.Add(l)
	}
	if visible.Len() >= 2 {
		return visible
	}

	spaceBox := r.EntityBounds(space.Label)
	if spaceBox == nil {
		return visible
	}
	padded := spaceBox.PadFixed(r.pad.RoomFixed, r.pad.RoomFixed, r.pad.RoomFixed)

	for _, l := range r.model.AllProductLabels() {
		box := r.EntityBounds(l)
		if box == nil {
			continue
		}
		if padded.Intersects(*box) {
			visible.Add(l)
		}
	}
	return visible
}

// EntityBounds returns the union of the entity's geometric boxes, or
// nil when the entity has no geometry. A failed lookup is treated the
// same as no geometry so one corrupt entity cannot fail a whole filter
// operation; callers must branch on nil and skip the entity from
// spatial comparisons.
func (r *Resolver) EntityBounds(label ifc.Label) *geometry.Box {
	boxes, err := r.model.GeometricBounds(label)
	if err != nil {
		log.Debugf("bounds lookup for label %d failed, treating as no geometry: %v", label, err)
		return nil
	}

	var union *geometry.Box
	for i := range boxes {
		union = geometry.Union(union, &boxes[i])
	}
	return union
}

// FrameBounds returns the padded box to re-frame the camera on after
// filtering to the container, or nil when the container has no
// geometry. Storeys use percentage padding, spaces fixed padding.
func (r *Resolver) FrameBounds(container ifc.Entity) *geometry.Box {
	box := r.EntityBounds(container.Label)
	if box == nil {
		return nil
	}
	var padded geometry.Box
	if container.Kind == ifc.KindStorey {
		padded = box.PadPercent(r.pad.StoreyPercent)
	} else {
		padded = box.PadFixed(r.pad.RoomFixed, r.pad.RoomFixed, r.pad.RoomFixed)
	}
	return &padded
}
