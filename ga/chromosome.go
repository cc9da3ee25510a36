// Package ga implements the chromosome-level evolutionary operators and
// the generational engine that drives them: random generation, point
// mutation, limb mutation, crossover, checksum-based deduplication, and
// the double-buffered population loop that ties them together.
package ga

import (
	"math"

	"github.com/Parmeggiani-Lab/elfin/chain"
	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/kabsch"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
)

// Origin records which operator produced a chromosome, for provenance
// and debugging; it has no effect on fitness or selection.
type Origin int

const (
	OriginNew Origin = iota
	OriginCopy
	OriginGeneCopy
	OriginAutoMutate
	OriginCross
	OriginPointMutate
	OriginLimbMutate
	OriginRandom
)

func (o Origin) String() string {
	switch o {
	case OriginNew:
		return "New"
	case OriginCopy:
		return "Copy"
	case OriginGeneCopy:
		return "GeneCopy"
	case OriginAutoMutate:
		return "AutoMutate"
	case OriginCross:
		return "Cross"
	case OriginPointMutate:
		return "PointMutate"
	case OriginLimbMutate:
		return "LimbMutate"
	case OriginRandom:
		return "Random"
	default:
		return "Unknown"
	}
}

// maxStochasticFails bounds retries for operators whose success depends
// on random sampling: crossover point selection, limb-mutation sever
// position, and limb regeneration.
const maxStochasticFails = 10

// Chromosome is one candidate chain: an ordered gene sequence, its
// fitness as of the last EvaluateScore, and a provenance tag.
// NewChromosome starts Score at NaN; Copy keeps the source's score, and
// Cross, Randomise and the mutation operators do not reset it, so it
// holds zero or a stale value until EvaluateScore runs again.
type Chromosome struct {
	Genes  chain.Sequence
	Score  float64
	Origin Origin
}

// NewChromosome wraps a gene sequence as a freshly-built chromosome.
func NewChromosome(genes chain.Sequence) Chromosome {
	return Chromosome{Genes: genes, Score: math.NaN(), Origin: OriginGeneCopy}
}

// Copy returns an independent copy tagged Origin=Copy.
func (c Chromosome) Copy() Chromosome {
	genes := make(chain.Sequence, len(c.Genes))
	copy(genes, c.Genes)
	return Chromosome{Genes: genes, Score: c.Score, Origin: OriginCopy}
}

// Len reports the chromosome's length in genes.
func (c Chromosome) Len() int { return len(c.Genes) }

// EvaluateScore computes and stores the Kabsch RMSD of the chromosome's
// synthesised CoMs against ref.
func (c *Chromosome) EvaluateScore(ref geom.Path) {
	c.Score = kabsch.Score(c.Genes.CoMs(), ref)
}

// NodeIDs returns the module ids in chain order.
func (c Chromosome) NodeIDs() []int { return c.Genes.NodeIDs() }

// Bounds is the [MinLen, MaxLen] chain-length window derived from the
// reference path length: L_exp = round(total/avgPairDist)+1, expanded
// by the configured deviation on either side.
type Bounds struct {
	MinLen, MaxLen int
}

// DeriveBounds computes L_min/L_max from a reference path and the
// configured average pair distance and length deviation.
func DeriveBounds(ref geom.Path, avgPairDist float64, dev int) Bounds {
	lExp := int(math.Round(ref.TotalLength()/avgPairDist)) + 1
	minLen := lExp - dev
	if minLen < 1 {
		minLen = 1
	}
	return Bounds{MinLen: minLen, MaxLen: lExp + dev}
}

func mustSynthesise(db *moduledb.Database, genes chain.Sequence) bool {
	ok, err := chain.Synthesise(db, genes)
	if err != nil {
		panic(err)
	}
	return ok
}

func mustSynthesiseReverse(db *moduledb.Database, genes chain.Sequence) bool {
	ok, err := chain.SynthesiseReverse(db, genes)
	if err != nil {
		panic(err)
	}
	return ok
}
