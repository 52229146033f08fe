package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/ifc/memstore"
)

func box(x, y, z, sx, sy, sz float64) geometry.Box {
	return geometry.NewBox(geometry.NewVector3(x, y, z), geometry.NewVector3(sx, sy, sz))
}

func storey(label int, name string, elevation string) ifc.Entity {
	return ifc.Entity{Label: ifc.Label(label), Kind: ifc.KindStorey, Name: name, Elevation: elevation}
}

func space(label int, name string) ifc.Entity {
	return ifc.Entity{Label: ifc.Label(label), Kind: ifc.KindSpace, Name: name}
}

func product(label int, name string) ifc.Entity {
	return ifc.Entity{Label: ifc.Label(label), Kind: ifc.KindProduct, Name: name}
}

func TestResolveForStoreyWithRelations(t *testing.T) {
	m := memstore.NewModel("relational")
	m.AddEntity(storey(1, "Level 1", "0.0"))
	m.AddEntity(product(10, "Wall A"))
	m.AddEntity(product(11, "Wall B"))
	m.AddContains(1, 10, 11)

	r := NewResolver(m, DefaultPadding())
	st, ok := r.FindStorey("Level 1")
	require.True(t, ok)

	result := r.ResolveForStorey(st)

	assert.Equal(t, 3, result.Visible.Len())
	assert.True(t, result.Visible.Has(1), "storey includes itself")
	assert.True(t, result.Visible.Has(10))
	assert.True(t, result.Visible.Has(11))
}

func TestResolveForStoreyRelationsSkipGeometryLookups(t *testing.T) {
	m := memstore.NewModel("relational")
	m.AddEntity(storey(1, "Level 1", "0.0"), box(0, 0, 0, 10, 10, 3))
	m.AddEntity(space(5, "Kitchen"), box(0, 0, 0, 4, 4, 3))
	m.AddEntity(product(10, "Wall A"), box(0, 0, 0, 1, 1, 3))
	m.AddContains(1, 10)
	m.AddDecomposes(1, 5)
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	result := r.ResolveForStorey(storey(1, "Level 1", "0.0"))

	assert.Equal(t, 0, m.BoundsLookups(), "relation path must not touch geometry")
	require.Len(t, result.Spaces, 1)
	assert.Equal(t, "Kitchen", result.Spaces[0].DisplayName())
}

func TestResolveForStoreySpatialFallbackForSpaces(t *testing.T) {
	m := memstore.NewModel("no-relations")
	m.AddEntity(storey(1, "Level 1", "0.0"), box(0, 0, 0, 20, 20, 3))
	m.AddEntity(space(5, "Inside"), box(2, 2, 0, 4, 4, 3))
	m.AddEntity(space(6, "Above"), box(2, 2, 10, 4, 4, 3))
	m.AddEntity(space(7, "Touching"), box(20, 0, 0, 4, 4, 3))
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	result := r.ResolveForStorey(storey(1, "Level 1", "0.0"))

	names := make([]string, 0, len(result.Spaces))
	for _, s := range result.Spaces {
		names = append(names, s.DisplayName())
	}
	assert.ElementsMatch(t, []string{"Inside", "Touching"}, names,
		"exactly the spaces whose boxes intersect the padded storey box")
	assert.Greater(t, m.BoundsLookups(), 0)
}

func TestResolveForStoreyFallbackSkipsSpacesWithoutGeometry(t *testing.T) {
	m := memstore.NewModel("partial-geometry")
	m.AddEntity(storey(1, "Level 1", "0.0"), box(0, 0, 0, 20, 20, 3))
	m.AddEntity(space(5, "HasBox"), box(2, 2, 0, 4, 4, 3))
	m.AddEntity(space(6, "NoBox"))
	m.AddEntity(space(7, "Corrupt"), box(3, 3, 0, 2, 2, 3))
	m.FailBoundsFor(7)
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	result := r.ResolveForStorey(storey(1, "Level 1", "0.0"))

	require.Len(t, result.Spaces, 1, "absent and corrupt geometry degrade per entity")
	assert.Equal(t, "HasBox", result.Spaces[0].DisplayName())
}

func TestResolveForStoreyWithoutGeometryYieldsNoSpaces(t *testing.T) {
	m := memstore.NewModel("bare")
	m.AddEntity(storey(1, "Level 1", "0.0"))
	m.AddEntity(space(5, "Kitchen"), box(0, 0, 0, 4, 4, 3))

	r := NewResolver(m, DefaultPadding())
	result := r.ResolveForStorey(storey(1, "Level 1", "0.0"))

	require.NotNil(t, result.Spaces, "callers clear their room selector off an empty slice")
	assert.Empty(t, result.Spaces, "no storey box means no spatial matches")
	assert.Equal(t, 1, result.Visible.Len())
}

func TestResolveForSpaceWithRelations(t *testing.T) {
	m := memstore.NewModel("relational")
	m.AddEntity(space(5, "Kitchen"), box(0, 0, 0, 4, 4, 3))
	m.AddEntity(product(10, "Sink"))
	m.AddEntity(product(11, "Oven"))
	m.AddEntity(product(12, "Elsewhere"))
	m.AddContains(5, 10, 11)
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	visible := r.ResolveForSpace(space(5, "Kitchen"))

	assert.Equal(t, 3, visible.Len())
	assert.True(t, visible.Has(5))
	assert.True(t, visible.Has(10))
	assert.True(t, visible.Has(11))
	assert.False(t, visible.Has(12))
	assert.Equal(t, 0, m.BoundsLookups(), "cardinality guard skips the product scan")
}

func TestResolveForSpaceSpatialFallback(t *testing.T) {
	m := memstore.NewModel("no-relations")
	m.AddEntity(space(5, "Kitchen"), box(0, 0, 0, 5, 5, 3))
	// 3 of 10 products intersect the padded space box
	for i := 0; i < 3; i++ {
		m.AddEntity(product(10+i, "In"), box(float64(i), 1, 0, 1, 1, 2))
	}
	for i := 3; i < 10; i++ {
		m.AddEntity(product(10+i, "Out"), box(100+float64(i), 0, 0, 1, 1, 2))
	}
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	visible := r.ResolveForSpace(space(5, "Kitchen"))

	assert.Equal(t, 4, visible.Len(), "space plus the 3 intersecting products")
	assert.True(t, visible.Has(5))
	for i := 0; i < 3; i++ {
		assert.True(t, visible.Has(ifc.Label(10+i)))
	}
}

func TestResolveForSpaceWithoutGeometryStaysMinimal(t *testing.T) {
	m := memstore.NewModel("bare")
	m.AddEntity(space(5, "Kitchen"))
	m.AddEntity(product(10, "Sink"), box(0, 0, 0, 1, 1, 1))

	r := NewResolver(m, DefaultPadding())
	visible := r.ResolveForSpace(space(5, "Kitchen"))

	assert.Equal(t, 1, visible.Len(), "no space box, nothing to intersect against")
}

func TestComputeHiddenSet(t *testing.T) {
	all := []ifc.Label{1, 2, 3, 4, 5}
	visible := NewSet(2, 4)

	hidden := ComputeHiddenSet(all, visible)

	assert.Equal(t, 3, hidden.Len())
	for _, l := range all {
		assert.NotEqual(t, visible.Has(l), hidden.Has(l), "label %d in exactly one of the sets", l)
	}
}

func TestStoreysSortedByElevation(t *testing.T) {
	m := memstore.NewModel("tower")
	m.AddEntity(storey(3, "Roof", "9.0"))
	m.AddEntity(storey(1, "Ground", "0.0"))
	m.AddEntity(storey(4, "Mezzanine", "not-a-number"))
	m.AddEntity(storey(2, "Basement", "-3.2"))

	r := NewResolver(m, DefaultPadding())
	storeys := r.Storeys()

	names := make([]string, len(storeys))
	for i, s := range storeys {
		names[i] = s.DisplayName()
	}
	assert.Equal(t, []string{"Mezzanine", "Basement", "Ground", "Roof"}, names,
		"unparseable elevation sorts first")
}

func TestFindStoreyMiss(t *testing.T) {
	m := memstore.NewModel("empty")
	r := NewResolver(m, DefaultPadding())

	_, ok := r.FindStorey("Level 99")
	assert.False(t, ok, "a miss is a boolean, not an error")
}

func TestDisplayNameFallback(t *testing.T) {
	withName := ifc.Entity{Label: 7, Kind: ifc.KindSpace, Name: "Kitchen", LongName: "The Kitchen"}
	assert.Equal(t, "Kitchen", withName.DisplayName())

	longOnly := ifc.Entity{Label: 7, Kind: ifc.KindSpace, LongName: "The Kitchen"}
	assert.Equal(t, "The Kitchen", longOnly.DisplayName())

	anonymous := ifc.Entity{Label: 7, Kind: ifc.KindSpace}
	assert.Equal(t, "Space_7", anonymous.DisplayName())
}

func TestEntityBoundsUnionsAllRepresentations(t *testing.T) {
	m := memstore.NewModel("multi-rep")
	m.AddEntity(product(10, "Stair"),
		box(0, 0, 0, 1, 1, 1),
		box(4, 4, 4, 1, 1, 1))
	m.SetGeometryReady(true)

	r := NewResolver(m, DefaultPadding())
	got := r.EntityBounds(10)

	require.NotNil(t, got)
	assert.Equal(t, geometry.NewVector3(0, 0, 0), got.Min())
	assert.Equal(t, geometry.NewVector3(5, 5, 5), got.Max())
}

func TestFrameBoundsPaddingPolicy(t *testing.T) {
	m := memstore.NewModel("frame")
	m.AddEntity(storey(1, "Level 1", "0.0"), box(0, 0, 0, 10, 10, 3))
	m.AddEntity(space(5, "Kitchen"), box(0, 0, 0, 4, 4, 3))
	m.SetGeometryReady(true)

	r := NewResolver(m, Padding{StoreyPercent: 0.1, RoomFixed: 0.5})

	sb := r.FrameBounds(storey(1, "Level 1", "0.0"))
	require.NotNil(t, sb)
	assert.InDelta(t, -1.0, sb.Origin.X, 1e-10, "storey pads by percent")

	rb := r.FrameBounds(space(5, "Kitchen"))
	require.NotNil(t, rb)
	assert.InDelta(t, -0.5, rb.Origin.X, 1e-10, "room pads by fixed distance")

	assert.Nil(t, r.FrameBounds(space(99, "Ghost")), "no geometry means no framing box")
}
