// Package chain implements chain synthesis: deriving each module's global
// centre of mass by composing pair transforms along a sequence, and the
// self-collision predicate that guards every growth step.
package chain

import (
	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
)

// Gene is one module placement within a chain: a stable module id plus its
// CoM in the global frame, valid only once the enclosing sequence has been
// synthesised.
type Gene struct {
	ID  int
	CoM geom.Vec3
}

// Sequence is an ordered list of Genes, synthesised in place.
type Sequence []Gene

// NodeIDs returns the module ids in order, e.g. for checksum or naming.
func (s Sequence) NodeIDs() []int {
	ids := make([]int, len(s))
	for i, g := range s {
		ids[i] = g.ID
	}
	return ids
}

// CoMs returns the realised centres of mass in chain order.
func (s Sequence) CoMs() geom.Path {
	pts := make(geom.Path, len(s))
	for i, g := range s {
		pts[i] = g.CoM
	}
	return pts
}

// Collides reports whether newID placed at newCoM would violate the
// collision predicate against any gene in genes[lo:hi] (both clamped to
// valid bounds). The caller is responsible for excluding the immediate
// neighbour window, which is non-colliding by construction of the pair
// transform. Exported for the chromosome operators in package ga, which
// run the same check while growing a chain candidate node by node.
func Collides(db *moduledb.Database, newID int, newCoM geom.Vec3, genes Sequence, lo, hi int) bool {
	if lo < 0 {
		lo = 0
	}
	if hi > len(genes) {
		hi = len(genes)
	}
	newRadius := db.Radii(newID).CollisionMeasure()
	for i := lo; i < hi; i++ {
		other := genes[i]
		required := db.Radii(other.ID).CollisionMeasure() + newRadius
		if other.CoM.Dist(newCoM) < required {
			return true
		}
	}
	return false
}
