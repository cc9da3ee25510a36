// Package kabsch implements arc-length-proportional resampling and the
// closed-form Kabsch superposition used to score a synthesised chain
// against a reference path.
package kabsch

import "github.com/Parmeggiani-Lab/elfin/geom"

// Resample reshapes pts, by linear interpolation along its own polyline, so
// that it has exactly len(ref) points spaced at the same cumulative
// arc-length proportions as ref. The first point of pts is kept as-is; the
// rest are picked off by walking both polylines' proportional arc length
// in lockstep, the same two-pointer sweep used for profile alignment in
// the original distillation's chain scorer.
func Resample(ref, pts geom.Path) geom.Path {
	n := len(ref)
	if n == 0 || len(pts) == 0 {
		return pts
	}

	refTotLen := ref.TotalLength()
	ptsTotLen := pts.TotalLength()

	resampled := make(geom.Path, 0, n)
	resampled = append(resampled, pts[0])

	var refProp, ptsProp float64
	mpi := 1
	for i := 1; i < len(pts); i++ {
		base := pts[i-1]
		next := pts[i]
		baseProp := ptsProp
		segment := next.Dist(base) / ptsTotLen
		vec := next.Sub(base)

		ptsProp += segment
		for refProp <= ptsProp && mpi < n {
			refSegment := ref[mpi].Dist(ref[mpi-1]) / refTotLen
			if refProp+refSegment > ptsProp {
				break
			}
			refProp += refSegment

			s := (refProp - baseProp) / segment
			resampled = append(resampled, base.Add(vec.Scale(s)))
			mpi++
		}
	}

	if len(resampled) < n {
		resampled = append(resampled, pts[len(pts)-1])
	}

	return resampled
}
