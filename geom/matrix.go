package geom

// Mat3 is a row-major 3x3 matrix, used for pair-transform rotations.
type Mat3 struct {
	Rows [3]Vec3
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{[3]Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

// Apply treats v as a column vector and returns m*v.
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m.Rows[0].X*v.X + m.Rows[0].Y*v.Y + m.Rows[0].Z*v.Z,
		Y: m.Rows[1].X*v.X + m.Rows[1].Y*v.Y + m.Rows[1].Z*v.Z,
		Z: m.Rows[2].X*v.X + m.Rows[2].Y*v.Y + m.Rows[2].Z*v.Z,
	}
}

// Mul returns m*rhs.
func (m Mat3) Mul(rhs Mat3) Mat3 {
	col := func(j int) Vec3 {
		switch j {
		case 0:
			return Vec3{rhs.Rows[0].X, rhs.Rows[1].X, rhs.Rows[2].X}
		case 1:
			return Vec3{rhs.Rows[0].Y, rhs.Rows[1].Y, rhs.Rows[2].Y}
		default:
			return Vec3{rhs.Rows[0].Z, rhs.Rows[1].Z, rhs.Rows[2].Z}
		}
	}
	c0, c1, c2 := col(0), col(1), col(2)
	row := func(r Vec3) Vec3 {
		return Vec3{r.Dot(c0), r.Dot(c1), r.Dot(c2)}
	}
	return Mat3{[3]Vec3{row(m.Rows[0]), row(m.Rows[1]), row(m.Rows[2])}}
}

// Transpose returns the transpose of m.
func (m Mat3) Transpose() Mat3 {
	return Mat3{[3]Vec3{
		{m.Rows[0].X, m.Rows[1].X, m.Rows[2].X},
		{m.Rows[0].Y, m.Rows[1].Y, m.Rows[2].Y},
		{m.Rows[0].Z, m.Rows[1].Z, m.Rows[2].Z},
	}}
}
