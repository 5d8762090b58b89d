package types

// Vector is a point in voxel space.
type Vector struct {
	X, Y, Z int32
}

// Box is an axis-aligned region. Both bounds are inclusive.
type Box struct {
	Lower Vector
	Upper Vector
}

// Cube returns box of the edge length starting at origin.
func Cube(origin Vector, edgeLength uint32) Box {
	last := int64(edgeLength) - 1
	return Box{
		Lower: origin,
		Upper: Vector{
			X: int32(int64(origin.X) + last),
			Y: int32(int64(origin.Y) + last),
			Z: int32(int64(origin.Z) + last),
		},
	}
}

// Point returns box containing single voxel.
func Point(p Vector) Box {
	return Box{Lower: p, Upper: p}
}

// Empty returns true if lower corner lies above upper one on any axis.
func (b Box) Empty() bool {
	return b.Lower.X > b.Upper.X || b.Lower.Y > b.Upper.Y || b.Lower.Z > b.Upper.Z
}

// Contains returns true if point lies inside the box.
func (b Box) Contains(p Vector) bool {
	return p.X >= b.Lower.X && p.X <= b.Upper.X &&
		p.Y >= b.Lower.Y && p.Y <= b.Upper.Y &&
		p.Z >= b.Lower.Z && p.Z <= b.Upper.Z
}

// ContainsBox returns true if other box is fully covered by this one.
func (b Box) ContainsBox(other Box) bool {
	return b.Contains(other.Lower) && b.Contains(other.Upper)
}

// Intersects returns true if boxes share at least one voxel.
func (b Box) Intersects(other Box) bool {
	return b.Lower.X <= other.Upper.X && other.Lower.X <= b.Upper.X &&
		b.Lower.Y <= other.Upper.Y && other.Lower.Y <= b.Upper.Y &&
		b.Lower.Z <= other.Upper.Z && other.Lower.Z <= b.Upper.Z
}

// Extend returns the smallest box covering both boxes.
func (b Box) Extend(other Box) Box {
	return Box{
		Lower: Vector{
			X: min(b.Lower.X, other.Lower.X),
			Y: min(b.Lower.Y, other.Lower.Y),
			Z: min(b.Lower.Z, other.Lower.Z),
		},
		Upper: Vector{
			X: max(b.Upper.X, other.Upper.X),
			Y: max(b.Upper.Y, other.Upper.Y),
			Z: max(b.Upper.Z, other.Upper.Z),
		},
	}
}

// Size returns number of voxels along each axis.
func (b Box) Size() (uint64, uint64, uint64) {
	return uint64(int64(b.Upper.X)-int64(b.Lower.X)) + 1,
		uint64(int64(b.Upper.Y)-int64(b.Lower.Y)) + 1,
		uint64(int64(b.Upper.Z)-int64(b.Lower.Z)) + 1
}

// Volume returns number of voxels inside the box.
func (b Box) Volume() uint64 {
	x, y, z := b.Size()
	return x * y * z
}

// Center returns the geometric center of the box, treating voxels as unit cubes.
func (b Box) Center() (float64, float64, float64) {
	return (float64(b.Lower.X) + float64(b.Upper.X) + 1) / 2,
		(float64(b.Lower.Y) + float64(b.Upper.Y) + 1) / 2,
		(float64(b.Lower.Z) + float64(b.Upper.Z) + 1) / 2
}
