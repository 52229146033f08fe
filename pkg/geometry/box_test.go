package geometry

import (
	"math"
	"testing"
)

func boxesEqual(a, b Box) bool {
	return math.Abs(a.Origin.X-b.Origin.X) < 1e-10 &&
		math.Abs(a.Origin.Y-b.Origin.Y) < 1e-10 &&
		math.Abs(a.Origin.Z-b.Origin.Z) < 1e-10 &&
		math.Abs(a.Size.X-b.Size.X) < 1e-10 &&
		math.Abs(a.Size.Y-b.Size.Y) < 1e-10 &&
		math.Abs(a.Size.Z-b.Size.Z) < 1e-10
}

func TestBoxUnionIdempotent(t *testing.T) {
	boxes := []Box{
		NewBox(NewVector3(0, 0, 0), NewVector3(1, 2, 3)),
		NewBox(NewVector3(-5, 1.5, 2), NewVector3(0, 0, 0)),
		NewBox(NewVector3(10, -10, 0.25), NewVector3(100, 0.5, 7)),
	}
	for _, b := range boxes {
		if got := b.Union(b); !boxesEqual(got, b) {
			t.Errorf("Union(b, b) failed: expected %+v, got %+v", b, got)
		}
	}
}

func TestBoxUnionContainsBoth(t *testing.T) {
	a := NewBox(NewVector3(0, 0, 0), NewVector3(1, 1, 1))
	b := NewBox(NewVector3(3, -2, 0.5), NewVector3(1, 1, 1))

	u := a.Union(b)

	expected := FromMinMax(NewVector3(0, -2, 0), NewVector3(4, 1, 1.5))
	if !boxesEqual(u, expected) {
		t.Errorf("Union failed: expected %+v, got %+v", expected, u)
	}
}

func TestBoxIntersectsSymmetry(t *testing.T) {
	cases := []struct {
		a, b Box
		want bool
	}{
		{NewBox(NewVector3(0, 0, 0), NewVector3(2, 2, 2)), NewBox(NewVector3(1, 1, 1), NewVector3(2, 2, 2)), true},
		{NewBox(NewVector3(0, 0, 0), NewVector3(1, 1, 1)), NewBox(NewVector3(2, 0, 0), NewVector3(1, 1, 1)), false},
		// Face contact counts as intersecting
		{NewBox(NewVector3(0, 0, 0), NewVector3(1, 1, 1)), NewBox(NewVector3(1, 0, 0), NewVector3(1, 1, 1)), true},
		// Separated on Z only
		{NewBox(NewVector3(0, 0, 0), NewVector3(5, 5, 1)), NewBox(NewVector3(0, 0, 3), NewVector3(5, 5, 1)), false},
	}
	for i, c := range cases {
		if got := c.a.Intersects(c.b); got != c.want {
			t.Errorf("case %d: Intersects(a, b) = %v, want %v", i, got, c.want)
		}
		if got := c.b.Intersects(c.a); got != c.want {
			t.Errorf("case %d: Intersects(b, a) = %v, want %v (not symmetric)", i, got, c.want)
		}
	}
}

func TestBoxIntersectsSelf(t *testing.T) {
	b := NewBox(NewVector3(-1, -2, -3), NewVector3(0, 4, 5))
	if !b.Intersects(b) {
		t.Error("a box must intersect itself")
	}
}

func TestDegenerateBoxIsValid(t *testing.T) {
	point := NewBox(NewVector3(1, 2, 3), NewVector3(0, 0, 0))
	big := NewBox(NewVector3(0, 0, 0), NewVector3(10, 10, 10))

	if !point.Intersects(big) {
		t.Error("degenerate box inside a larger box should intersect it")
	}
	if got := point.Union(point); !boxesEqual(got, point) {
		t.Errorf("union of a point box with itself changed it: %+v", got)
	}
}

func TestBoxPadFixed(t *testing.T) {
	b := NewBox(NewVector3(1, 1, 1), NewVector3(2, 2, 2))
	p := b.PadFixed(0.5, 1, 0)

	expected := NewBox(NewVector3(0.5, 0, 1), NewVector3(3, 4, 2))
	if !boxesEqual(p, expected) {
		t.Errorf("PadFixed failed: expected %+v, got %+v", expected, p)
	}
}

func TestBoxPadPercent(t *testing.T) {
	b := NewBox(NewVector3(0, 0, 0), NewVector3(10, 20, 0))
	p := b.PadPercent(0.1)

	expected := NewBox(NewVector3(-1, -2, 0), NewVector3(12, 24, 0))
	if !boxesEqual(p, expected) {
		t.Errorf("PadPercent failed: expected %+v, got %+v", expected, p)
	}
}

func TestOptionalUnion(t *testing.T) {
	a := NewBox(NewVector3(0, 0, 0), NewVector3(1, 1, 1))
	b := NewBox(NewVector3(2, 2, 2), NewVector3(1, 1, 1))

	if got := Union(nil, nil); got != nil {
		t.Errorf("Union(nil, nil) = %+v, want nil", got)
	}
	if got := Union(&a, nil); got == nil || !boxesEqual(*got, a) {
		t.Errorf("Union(a, nil) = %+v, want a", got)
	}
	if got := Union(nil, &b); got == nil || !boxesEqual(*got, b) {
		t.Errorf("Union(nil, b) = %+v, want b", got)
	}
	if got := Union(&a, &b); got == nil || !boxesEqual(*got, FromMinMax(NewVector3(0, 0, 0), NewVector3(3, 3, 3))) {
		t.Errorf("Union(a, b) = %+v", got)
	}
}

func TestBoxCenterAndDiagonal(t *testing.T) {
	b := NewBox(NewVector3(1, 2, 3), NewVector3(2, 4, 6))

	center := b.Center()
	if math.Abs(center.X-2) > 1e-10 || math.Abs(center.Y-4) > 1e-10 || math.Abs(center.Z-6) > 1e-10 {
		t.Errorf("Center failed: got %+v", center)
	}

	expected := math.Sqrt(4 + 16 + 36)
	if got := b.Diagonal(); math.Abs(got-expected) > 1e-10 {
		t.Errorf("Diagonal failed: expected %v, got %v", expected, got)
	}
}

func TestFromMinMaxRoundTrip(t *testing.T) {
	min := NewVector3(-1, 2, -3)
	max := NewVector3(4, 2, 0)
	b := FromMinMax(min, max)

	if got := b.Min(); got != min {
		t.Errorf("Min failed: expected %+v, got %+v", min, got)
	}
	if got := b.Max(); math.Abs(got.X-max.X) > 1e-10 || math.Abs(got.Y-max.Y) > 1e-10 || math.Abs(got.Z-max.Z) > 1e-10 {
		t.Errorf("Max failed: expected %+v, got %+v", max, got)
	}
	if b.Size.Y != 0 {
		t.Errorf("expected degenerate Y size, got %v", b.Size.Y)
	}
}
