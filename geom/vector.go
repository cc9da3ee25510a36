// Package geom implements the 3-vector and 3x3-matrix primitives used to
// compose pair transforms into a chain of module centres of mass.
package geom

import "math"

// Vec3 is a point or displacement in R^3.
type Vec3 struct {
	X, Y, Z float64
}

// Path is an ordered sequence of points, e.g. a reference specification
// path or the realised CoM chain of a chromosome.
type Path []Vec3

// Add returns v+rhs.
func (v Vec3) Add(rhs Vec3) Vec3 {
	return Vec3{v.X + rhs.X, v.Y + rhs.Y, v.Z + rhs.Z}
}

// Sub returns v-rhs.
func (v Vec3) Sub(rhs Vec3) Vec3 {
	return Vec3{v.X - rhs.X, v.Y - rhs.Y, v.Z - rhs.Z}
}

// Scale returns v*f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

// Dot returns the scalar product v.rhs.
func (v Vec3) Dot(rhs Vec3) float64 {
	return v.X*rhs.X + v.Y*rhs.Y + v.Z*rhs.Z
}

// RotateBy treats v as a row vector and returns v*m.
func (v Vec3) RotateBy(m Mat3) Vec3 {
	return Vec3{
		X: v.X*m.Rows[0].X + v.Y*m.Rows[1].X + v.Z*m.Rows[2].X,
		Y: v.X*m.Rows[0].Y + v.Y*m.Rows[1].Y + v.Z*m.Rows[2].Y,
		Z: v.X*m.Rows[0].Z + v.Y*m.Rows[1].Z + v.Z*m.Rows[2].Z,
	}
}

// Dist returns the Euclidean distance between v and rhs.
func (v Vec3) Dist(rhs Vec3) float64 {
	dx, dy, dz := v.X-rhs.X, v.Y-rhs.Y, v.Z-rhs.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Approx reports whether v and ref are equal within tolerance on every axis.
func (v Vec3) Approx(ref Vec3, tolerance float64) bool {
	return math.Abs(v.X-ref.X) <= tolerance &&
		math.Abs(v.Y-ref.Y) <= tolerance &&
		math.Abs(v.Z-ref.Z) <= tolerance
}

// TotalLength returns the cumulative piecewise-linear length of p.
func (p Path) TotalLength() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i].Dist(p[i-1])
	}
	return total
}
