package kabsch

import (
	"math"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// Mode selects how much RosettaKabsch computes: RMSOnly skips the
// eigenvector pass entirely (cheaper, used for population scoring), Full
// also returns the best-fit rotation and translation.
type Mode int

const (
	RMSOnly Mode = 0
	Full    Mode = 1
)

var ip = [9]int{0, 1, 3, 1, 2, 4, 3, 4, 5}
var ip2312 = [4]int{1, 2, 0, 1}

const kabschEpsilon = 0.00000001
const kabschTol = 0.01

// rosettaKabsch is a direct port of the closed-form cubic-eigenvalue
// Kabsch solver from the Hybridization protocol of the Rosetta suite (by
// way of TMalign.cc), avoiding a generic SVD/Jacobi solver in favour of
// the exact same arithmetic path the reference implementation takes.
// x and y hold n point triples; mode selects RMSOnly or Full.
func rosettaKabsch(x, y [][3]float64, mode Mode) (rms float64, u [3][3]float64, t [3]float64, ok bool) {
	n := len(x)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				u[i][j] = 1.0
			}
		}
	}
	if n < 1 {
		return 0, u, t, false
	}

	var xc, yc [3]float64
	for m := 0; m < n; m++ {
		xc[0] += x[m][0]
		xc[1] += x[m][1]
		xc[2] += x[m][2]
		yc[0] += y[m][0]
		yc[1] += y[m][1]
		yc[2] += y[m][2]
	}
	for i := 0; i < 3; i++ {
		xc[i] /= float64(n)
		yc[i] /= float64(n)
	}

	var e0 float64
	var r [3][3]float64
	for m := 0; m < n; m++ {
		for i := 0; i < 3; i++ {
			e0 += (x[m][i]-xc[i])*(x[m][i]-xc[i]) + (y[m][i]-yc[i])*(y[m][i]-yc[i])
			d := y[m][i] - yc[i]
			for j := 0; j < 3; j++ {
				r[i][j] += d * (x[m][j] - xc[j])
			}
		}
	}

	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
	sigma := det

	var rr [6]float64
	m := 0
	for j := 0; j < 3; j++ {
		for i := 0; i <= j; i++ {
			rr[m] = r[0][i]*r[0][j] + r[1][i]*r[1][j] + r[2][i]*r[2][j]
			m++
		}
	}

	spur := (rr[0] + rr[2] + rr[5]) / 3.0
	cof := (((((rr[2]*rr[5]-rr[4]*rr[4])+rr[0]*rr[5])-rr[3]*rr[3])+rr[0]*rr[2])-rr[1]*rr[1]) / 3.0
	det = det * det

	var e [3]float64
	for i := 0; i < 3; i++ {
		e[i] = spur
	}

	aFailed, bFailed := false, false
	var a [3][3]float64
	for i := 0; i < 3; i++ {
		a[i][i] = 1.0
	}
	var b [3][3]float64

	if spur > 0 {
		d := spur * spur
		h := d - cof
		g := (spur*cof-det)/2.0 - spur*h

		if h > 0 {
			sqrth := math.Sqrt(h)
			d = h*h*h - g*g
			if d < 0.0 {
				d = 0.0
			}
			d = math.Atan2(math.Sqrt(d), -g) / 3.0
			cth := sqrth * math.Cos(d)
			sth := sqrth * math.Sqrt(3.0) * math.Sin(d)
			e[0] = (spur + cth) + cth
			e[1] = (spur - cth) + sth
			e[2] = (spur - cth) - sth

			if mode != RMSOnly {
				for l := 0; l < 3; l += 2 {
					d := e[l]
					var ss [6]float64
					ss[0] = (d-rr[2])*(d-rr[5]) - rr[4]*rr[4]
					ss[1] = (d-rr[5])*rr[1] + rr[3]*rr[4]
					ss[2] = (d-rr[0])*(d-rr[5]) - rr[3]*rr[3]
					ss[3] = (d-rr[2])*rr[3] + rr[1]*rr[4]
					ss[4] = (d-rr[0])*rr[4] + rr[1]*rr[3]
					ss[5] = (d-rr[0])*(d-rr[2]) - rr[1]*rr[1]

					for k := range ss {
						if math.Abs(ss[k]) <= kabschEpsilon {
							ss[k] = 0.0
						}
					}

					var j int
					if math.Abs(ss[0]) >= math.Abs(ss[2]) {
						j = 0
						if math.Abs(ss[0]) < math.Abs(ss[5]) {
							j = 2
						}
					} else if math.Abs(ss[2]) >= math.Abs(ss[5]) {
						j = 1
					} else {
						j = 2
					}

					d = 0.0
					j = 3 * j
					for i := 0; i < 3; i++ {
						k := ip[i+j]
						a[i][l] = ss[k]
						d += ss[k] * ss[k]
					}

					if d > kabschEpsilon {
						d = 1.0 / math.Sqrt(d)
					} else {
						d = 0.0
					}
					for i := 0; i < 3; i++ {
						a[i][l] *= d
					}
				}

				d := a[0][0]*a[0][2] + a[1][0]*a[1][2] + a[2][0]*a[2][2]
				var m1, m2 int
				if (e[0] - e[1]) > (e[1] - e[2]) {
					m1, m2 = 2, 0
				} else {
					m1, m2 = 0, 2
				}
				p := 0.0
				for i := 0; i < 3; i++ {
					a[i][m1] = a[i][m1] - d*a[i][m2]
					p += a[i][m1] * a[i][m1]
				}
				if p <= kabschTol {
					p = 1.0
					j := 0
					for i := 0; i < 3; i++ {
						if p < math.Abs(a[i][m2]) {
							continue
						}
						p = math.Abs(a[i][m2])
						j = i
					}
					k := ip2312[j]
					l := ip2312[j+1]
					p = math.Sqrt(a[k][m2]*a[k][m2] + a[l][m2]*a[l][m2])
					if p > kabschTol {
						a[j][m1] = 0.0
						a[k][m1] = -a[l][m2] / p
						a[l][m1] = a[k][m2] / p
					} else {
						aFailed = true
					}
				} else {
					p = 1.0 / math.Sqrt(p)
					for i := 0; i < 3; i++ {
						a[i][m1] *= p
					}
				}
				if !aFailed {
					a[0][1] = a[1][2]*a[2][0] - a[1][0]*a[2][2]
					a[1][1] = a[2][2]*a[0][0] - a[2][0]*a[0][2]
					a[2][1] = a[0][2]*a[1][0] - a[0][0]*a[1][2]
				}
			}
		}

		if mode != RMSOnly && !aFailed {
			for l := 0; l < 2; l++ {
				d := 0.0
				for i := 0; i < 3; i++ {
					b[i][l] = r[i][0]*a[0][l] + r[i][1]*a[1][l] + r[i][2]*a[2][l]
					d += b[i][l] * b[i][l]
				}
				if d > kabschEpsilon {
					d = 1.0 / math.Sqrt(d)
				} else {
					d = 0.0
				}
				for i := 0; i < 3; i++ {
					b[i][l] *= d
				}
			}
			d := b[0][0]*b[0][1] + b[1][0]*b[1][1] + b[2][0]*b[2][1]
			p := 0.0
			for i := 0; i < 3; i++ {
				b[i][1] = b[i][1] - d*b[i][0]
				p += b[i][1] * b[i][1]
			}

			if p <= kabschTol {
				p = 1.0
				j := 0
				for i := 0; i < 3; i++ {
					if p < math.Abs(b[i][0]) {
						continue
					}
					p = math.Abs(b[i][0])
					j = i
				}
				k := ip2312[j]
				l := ip2312[j+1]
				p = math.Sqrt(b[k][0]*b[k][0] + b[l][0]*b[l][0])
				if p > kabschTol {
					b[j][1] = 0.0
					b[k][1] = -b[l][0] / p
					b[l][1] = b[k][0] / p
				} else {
					bFailed = true
				}
			} else {
				p = 1.0 / math.Sqrt(p)
				for i := 0; i < 3; i++ {
					b[i][1] *= p
				}
			}

			if !bFailed {
				b[0][2] = b[1][0]*b[2][1] - b[1][1]*b[2][0]
				b[1][2] = b[2][0]*b[0][1] - b[2][1]*b[0][0]
				b[2][2] = b[0][0]*b[1][1] - b[0][1]*b[1][0]
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						u[i][j] = b[i][0]*a[j][0] + b[i][1]*a[j][1] + b[i][2]*a[j][2]
					}
				}
			}

			for i := 0; i < 3; i++ {
				t[i] = ((yc[i] - u[i][0]*xc[0]) - u[i][1]*xc[1]) - u[i][2]*xc[2]
			}
		} else {
			for i := 0; i < 3; i++ {
				t[i] = ((yc[i] - u[i][0]*xc[0]) - u[i][1]*xc[1]) - u[i][2]*xc[2]
			}
		}
	} else {
		for i := 0; i < 3; i++ {
			t[i] = ((yc[i] - u[i][0]*xc[0]) - u[i][1]*xc[1]) - u[i][2]*xc[2]
		}
	}

	for i := 0; i < 3; i++ {
		if e[i] < 0 {
			e[i] = 0
		}
		e[i] = math.Sqrt(e[i])
	}
	d := e[2]
	if sigma < 0.0 {
		d = -d
	}
	d = (d + e[1]) + e[0]
	rms = (e0 - d) - d
	if rms < 0.0 {
		rms = 0.0
	}

	return rms, u, t, true
}

func pathToTriples(p geom.Path) [][3]float64 {
	out := make([][3]float64, len(p))
	for i, v := range p {
		out[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return out
}

// Superpose runs the Kabsch solver on two equal-length paths: mobile is
// the set being rotated and translated onto ref. Mode Full also returns
// the best-fit rotation and translation; RMSOnly returns the identity
// rotation and the offset between the two centroids as the translation.
func Superpose(mobile, ref geom.Path, mode Mode) (rms float64, rot geom.Mat3, tran geom.Vec3, ok bool) {
	if len(mobile) != len(ref) || len(mobile) == 0 {
		return 0, geom.Mat3{}, geom.Vec3{}, false
	}

	x := pathToTriples(mobile)
	y := pathToTriples(ref)

	rmsVal, u, t, ok := rosettaKabsch(x, y, mode)
	if !ok {
		return 0, geom.Mat3{}, geom.Vec3{}, false
	}

	rot = geom.Mat3{Rows: [3]geom.Vec3{
		{X: u[0][0], Y: u[0][1], Z: u[0][2]},
		{X: u[1][0], Y: u[1][1], Z: u[1][2]},
		{X: u[2][0], Y: u[2][1], Z: u[2][2]},
	}}
	tran = geom.Vec3{X: t[0], Y: t[1], Z: t[2]}

	return rmsVal, rot, tran, true
}

// Score reports the Kabsch RMS between a synthesised chain's CoMs and a
// reference path, resampling mobile to ref's length first when the
// lengths differ. It panics if the solver fails, which only happens on
// malformed (empty) input that the caller should have already rejected.
func Score(mobile, ref geom.Path) float64 {
	if len(ref) != len(mobile) {
		mobile = Resample(ref, mobile)
	}

	rms, _, _, ok := Superpose(mobile, ref, RMSOnly)
	if !ok {
		panic("kabsch: solver failed on well-formed input")
	}
	return rms
}
