package chain

import (
	"fmt"

	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
)

// MissingTransformError marks the invariant violation of encountering two
// consecutive genes with no pair transform between them. Callers must
// pre-validate every adjacent pair before calling Synthesise; seeing this
// means that validation was skipped somewhere upstream.
type MissingTransformError struct {
	A, B int
}

func (e *MissingTransformError) Error() string {
	return fmt.Sprintf("chain: no pair transform for (%d, %d)", e.A, e.B)
}

// Synthesise derives each gene's CoM in place by composing pair transforms
// left to right. On return, the last gene sits at the chain tip's local
// origin and every earlier gene is expressed in that tip's frame. It
// returns (false, nil) if growing the chain would self-collide, and
// (false, *MissingTransformError) if a consecutive pair has no transform
// at all — a precondition the caller must already have checked; callers
// that treat this as an invariant violation typically panic on it.
func Synthesise(db *moduledb.Database, genes Sequence) (bool, error) {
	if len(genes) == 0 {
		return true, nil
	}
	for i := range genes {
		genes[i].CoM = geom.Vec3{}
	}

	for i := 1; i < len(genes); i++ {
		lhs, rhs := genes[i-1], genes[i]
		t := db.Transform(lhs.ID, rhs.ID)
		if t == nil {
			return false, &MissingTransformError{A: lhs.ID, B: rhs.ID}
		}

		if Collides(db, rhs.ID, t.ComB, genes, 0, i-2) {
			return false, nil
		}

		for j := 0; j < i; j++ {
			genes[j].CoM = genes[j].CoM.RotateBy(t.Rot).Add(t.Tran)
		}
	}

	return true, nil
}

// SynthesiseReverse is the mirror of Synthesise, growing from the right
// tip leftward using the inverse rotation and negated translation of each
// pair transform. On return, the first gene sits at the chain tip's local
// origin.
func SynthesiseReverse(db *moduledb.Database, genes Sequence) (bool, error) {
	n := len(genes)
	if n == 0 {
		return true, nil
	}
	for i := range genes {
		genes[i].CoM = geom.Vec3{}
	}

	for i := n - 1; i > 0; i-- {
		lhs, rhs := genes[i-1], genes[i]
		t := db.Transform(lhs.ID, rhs.ID)
		if t == nil {
			return false, &MissingTransformError{A: lhs.ID, B: rhs.ID}
		}

		if Collides(db, lhs.ID, t.Tran, genes, i+2, n) {
			return false, nil
		}

		for j := i; j < n; j++ {
			genes[j].CoM = genes[j].CoM.Sub(t.Tran).RotateBy(t.RotInv)
		}
	}

	return true, nil
}
