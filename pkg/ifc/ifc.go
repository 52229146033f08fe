// Package ifc defines the boundary to the IFC model store: the entity
// and relation query surface the visibility engine consumes, and the
// typed failure kinds that cross it. Concrete stores (a native IFC
// toolkit binding, or the in-memory memstore used by tests and the CLI)
// implement these interfaces.
package ifc

import (
	"context"
	"math"
	"strconv"

	"github.com/mdressler/bimscope/pkg/geometry"
)

// Label is the stable integer identifier of a model entity
type Label int

// Kind classifies an entity for queries
type Kind int

const (
	KindProduct Kind = iota
	KindStorey
	KindSpace
)

func (k Kind) String() string {
	switch k {
	case KindStorey:
		return "Storey"
	case KindSpace:
		return "Space"
	default:
		return "Product"
	}
}

// Entity is a model element as reported by the store. Elevation is the
// raw attribute string for storeys; other kinds leave it empty.
type Entity struct {
	Label     Label
	Kind      Kind
	Name      string
	LongName  string
	Elevation string
}

// DisplayName returns the name to show for the entity, falling back
// from Name to LongName to "<Kind>_<label>"
func (e Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.LongName != "" {
		return e.LongName
	}
	return e.Kind.String() + "_" + strconv.Itoa(int(e.Label))
}

// ElevationValue parses the storey elevation for sort order. A missing
// or unparseable elevation sorts first (negative infinity).
func (e Entity) ElevationValue() float64 {
	v, err := strconv.ParseFloat(e.Elevation, 64)
	if err != nil {
		return math.Inf(-1)
	}
	return v
}

// ProgressFunc receives 0-100 integer ticks during geometry generation
type ProgressFunc func(percent int)

// GenerateOptions carries the budget for a geometry generation pass
type GenerateOptions struct {
	Threads                int
	Deflection             float64
	AdjustCoordinateSystem bool
	Progress               ProgressFunc
}

// Model is one open model handle. Implementations are not required to
// be safe for concurrent use; the session serializes access.
type Model interface {
	// IsGeometryEmpty reports whether the model has no tessellated
	// geometry yet. Must be cheap.
	IsGeometryEmpty() bool

	// GenerateGeometry runs the tessellation pass with the given
	// budget, forwarding progress ticks. Cancelled via ctx; partially
	// generated geometry is discarded on cancellation.
	GenerateGeometry(ctx context.Context, opts GenerateOptions) error

	// EntitiesOfKind returns every entity of the given kind
	EntitiesOfKind(kind Kind) []Entity

	// GeometricBounds returns zero or more raw boxes for the entity's
	// geometric representations. No geometry yields an empty slice; a
	// failed lookup yields an error the caller treats as "no box".
	GeometricBounds(label Label) ([]geometry.Box, error)

	// ContainedElements returns the labels related to the container by
	// a contains-relation anchored at it
	ContainedElements(container Label) []Label

	// DecomposedBy returns the labels of entities that decompose into
	// the given parent (e.g. spaces of a storey)
	DecomposedBy(parent Label) []Label

	// AllProductLabels returns the labels of every product in the model
	AllProductLabels() []Label

	// InstanceCount returns the number of geometric instances, used to
	// size the generation budget
	InstanceCount() int

	// Close releases the handle. Safe to call more than once.
	Close() error
}

// Store opens model files
type Store interface {
	// Open parses the file at path into a Model. Fails with a
	// NotFoundError or ParseError.
	Open(path string) (Model, error)
}
