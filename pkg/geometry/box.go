package geometry

// Box represents an axis-aligned bounding box as an origin point and
// non-negative sizes. A box with a zero size on some axis is a valid
// degenerate box (a plane, line or point). "No box at all" is expressed
// as a nil *Box, never as a zero-sized Box.
type Box struct {
	Origin Vector3
	Size   Vector3
}

// NewBox creates a box from an origin point and sizes
func NewBox(origin, size Vector3) Box {
	return Box{Origin: origin, Size: size}
}

// FromMinMax creates a box spanning the two corner points
func FromMinMax(min, max Vector3) Box {
	return Box{Origin: min, Size: max.Sub(min)}
}

// Min returns the minimum corner of the box
func (b Box) Min() Vector3 {
	return b.Origin
}

// Max returns the maximum corner of the box
func (b Box) Max() Vector3 {
	return b.Origin.Add(b.Size)
}

// Center returns the center point of the box
func (b Box) Center() Vector3 {
	return b.Origin.Add(b.Size.Mul(0.5))
}

// Diagonal returns the length of the box diagonal
func (b Box) Diagonal() float64 {
	return b.Size.Length()
}

// Union returns the minimal box containing both boxes
func (b Box) Union(other Box) Box {
	min := b.Min().Min(other.Min())
	max := b.Max().Max(other.Max())
	return FromMinMax(min, max)
}

// Intersects reports whether the two boxes overlap. Bounds are
// inclusive: boxes that merely touch on a face count as intersecting.
func (b Box) Intersects(other Box) bool {
	aMin, aMax := b.Min(), b.Max()
	bMin, bMax := other.Min(), other.Max()
	if aMax.X < bMin.X || bMax.X < aMin.X {
		return false
	}
	if aMax.Y < bMin.Y || bMax.Y < aMin.Y {
		return false
	}
	if aMax.Z < bMin.Z || bMax.Z < aMin.Z {
		return false
	}
	return true
}

// PadFixed returns a box grown by a fixed distance on each side.
// The origin shrinks by (dx, dy, dz) and the size grows by twice that.
func (b Box) PadFixed(dx, dy, dz float64) Box {
	return Box{
		Origin: b.Origin.Sub(Vector3{X: dx, Y: dy, Z: dz}),
		Size:   b.Size.Add(Vector3{X: 2 * dx, Y: 2 * dy, Z: 2 * dz}),
	}
}

// PadPercent returns a box grown per axis by the given fraction of its
// own size on that axis, so larger boxes get proportionally more margin.
func (b Box) PadPercent(fraction float64) Box {
	return b.PadFixed(b.Size.X*fraction, b.Size.Y*fraction, b.Size.Z*fraction)
}

// Union combines two optional boxes. If either input is nil the other
// is returned unchanged; if both are nil the result is nil. The inputs
// are never mutated.
func Union(a, b *Box) *Box {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	u := a.Union(*b)
	return &u
}
