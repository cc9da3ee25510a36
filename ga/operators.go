package ga

import (
	"github.com/Parmeggiani-Lab/elfin/chain"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
	"github.com/Parmeggiani-Lab/elfin/rng"
)

// GenRandom grows a chain forward by neighbour-weighted roulette, adding
// a gene whenever the chain holds at most maxLen genes and a candidate
// exists, so a chain that never runs out of candidates ends with
// maxLen+1 genes. If seed is empty, the starting node is drawn from the
// module database's global roulette; otherwise seed is synthesised and
// grown from its tip. The length checks are the caller's
// responsibility, since randomness may fail to reach the minimum.
func GenRandom(db *moduledb.Database, maxLen int, seed chain.Sequence, s *rng.Stream) chain.Sequence {
	genes := make(chain.Sequence, len(seed))
	copy(genes, seed)

	if len(genes) == 0 {
		roulette := db.GlobalRoulette()
		genes = append(genes, chain.Gene{ID: roulette[s.Dice(len(roulette))]})
	} else {
		mustSynthesise(db, genes)
	}

	for len(genes) <= maxLen {
		curr := genes[len(genes)-1]

		var wheel []int
		for i := 0; i < db.Size(); i++ {
			t := db.Transform(curr.ID, i)
			if t == nil {
				continue
			}
			if chain.Collides(db, i, t.ComB, genes, 0, len(genes)-2) {
				continue
			}
			for j := 0; j < db.Neighbours(i).Out; j++ {
				wheel = append(wheel, i)
			}
		}
		if len(wheel) == 0 {
			break
		}

		nextID := wheel[s.Dice(len(wheel))]
		t := db.Transform(curr.ID, nextID)
		for j := range genes {
			genes[j].CoM = genes[j].CoM.RotateBy(t.Rot).Add(t.Tran)
		}
		genes = append(genes, chain.Gene{ID: nextID})
	}

	return genes
}

// GenRandomReverse is the mirror of GenRandom: it grows at the left end
// using rot_inv/-tran and in-degree weighting. Internally the sequence
// is reversed so the growth tip is always at the slice's back, matching
// GenRandom's loop shape, then reversed back before returning.
func GenRandomReverse(db *moduledb.Database, maxLen int, seed chain.Sequence, s *rng.Stream) chain.Sequence {
	genes := make(chain.Sequence, len(seed))
	copy(genes, seed)

	if len(genes) == 0 {
		roulette := db.GlobalRoulette()
		genes = append(genes, chain.Gene{ID: roulette[s.Dice(len(roulette))]})
	} else {
		mustSynthesiseReverse(db, genes)
	}

	reverseSequence(genes)

	for len(genes) <= maxLen {
		curr := genes[len(genes)-1]

		var wheel []int
		for i := 0; i < db.Size(); i++ {
			t := db.Transform(i, curr.ID)
			if t == nil {
				continue
			}
			if chain.Collides(db, i, t.Tran, genes, 0, len(genes)-2) {
				continue
			}
			for j := 0; j < db.Neighbours(i).In; j++ {
				wheel = append(wheel, i)
			}
		}
		if len(wheel) == 0 {
			break
		}

		nextID := wheel[s.Dice(len(wheel))]
		t := db.Transform(nextID, curr.ID)
		for j := range genes {
			genes[j].CoM = genes[j].CoM.Sub(t.Tran).RotateBy(t.RotInv)
		}
		genes = append(genes, chain.Gene{ID: nextID})
	}

	reverseSequence(genes)
	return genes
}

func reverseSequence(genes chain.Sequence) {
	for i, j := 0, len(genes)-1; i < j; i, j = i+1, j-1 {
		genes[i], genes[j] = genes[j], genes[i]
	}
}

// Randomise replaces the chromosome's genes with a fresh random chain
// within [bounds.MinLen, bounds.MaxLen], tagged Origin=Random.
func (c *Chromosome) Randomise(db *moduledb.Database, bounds Bounds, s *rng.Stream) {
	for {
		c.Genes = GenRandom(db, bounds.MaxLen-1, nil, s)
		if c.Len() >= bounds.MinLen && c.Len() <= bounds.MaxLen {
			break
		}
	}
	c.Origin = OriginRandom
}

type idPair struct{ i, j int }

// PointMutate tries Swap, Insert, and Delete in a random order without
// replacement, stopping at the first mode that yields at least one
// synthesisable candidate. It reports whether any mode succeeded.
func (c *Chromosome) PointMutate(db *moduledb.Database, bounds Bounds, s *rng.Stream) bool {
	modes := []int{0, 1, 2} // Swap, Insert, Delete
	for len(modes) > 0 {
		idx := s.Dice(len(modes))
		mode := modes[idx]
		modes = append(modes[:idx], modes[idx+1:]...)

		switch mode {
		case 0:
			if c.trySwap(db, s) {
				return true
			}
		case 1:
			if c.tryInsert(db, bounds, s) {
				return true
			}
		case 2:
			if c.tryDelete(db, bounds, s) {
				return true
			}
		}
	}
	return false
}

func (c *Chromosome) trySwap(db *moduledb.Database, s *rng.Stream) bool {
	n := c.Len()
	var candidates []idPair
	for i := 0; i < n; i++ {
		for j := 0; j < db.Size(); j++ {
			if j == c.Genes[i].ID {
				continue
			}
			if i > 0 && db.Transform(c.Genes[i-1].ID, j) == nil {
				continue
			}
			if i < n-1 && db.Transform(j, c.Genes[i+1].ID) == nil {
				continue
			}
			test := make(chain.Sequence, n)
			copy(test, c.Genes)
			test[i].ID = j
			if mustSynthesise(db, test) {
				candidates = append(candidates, idPair{i, j})
			}
		}
	}
	if len(candidates) == 0 {
		return false
	}
	pick := candidates[s.Dice(len(candidates))]
	c.Genes[pick.i].ID = pick.j
	mustSynthesise(db, c.Genes)
	c.Origin = OriginPointMutate
	return true
}

func (c *Chromosome) tryInsert(db *moduledb.Database, bounds Bounds, s *rng.Stream) bool {
	n := c.Len()
	if n >= bounds.MaxLen {
		return false
	}
	var candidates []idPair
	for i := 0; i <= n; i++ {
		for j := 0; j < db.Size(); j++ {
			if i > 0 && db.Transform(c.Genes[i-1].ID, j) == nil {
				continue
			}
			if i < n && db.Transform(j, c.Genes[i].ID) == nil {
				continue
			}
			test := make(chain.Sequence, 0, n+1)
			test = append(test, c.Genes[:i]...)
			test = append(test, chain.Gene{ID: j})
			test = append(test, c.Genes[i:]...)
			if mustSynthesise(db, test) {
				candidates = append(candidates, idPair{i, j})
			}
		}
	}
	if len(candidates) == 0 {
		return false
	}
	pick := candidates[s.Dice(len(candidates))]
	grown := make(chain.Sequence, 0, n+1)
	grown = append(grown, c.Genes[:pick.i]...)
	grown = append(grown, chain.Gene{ID: pick.j})
	grown = append(grown, c.Genes[pick.i:]...)
	c.Genes = grown
	mustSynthesise(db, c.Genes)
	c.Origin = OriginPointMutate
	return true
}

func (c *Chromosome) tryDelete(db *moduledb.Database, bounds Bounds, s *rng.Stream) bool {
	n := c.Len()
	if n <= bounds.MinLen {
		return false
	}
	var candidates []int
	for i := 0; i < n; i++ {
		if i > 0 && i < n-1 && db.Transform(c.Genes[i-1].ID, c.Genes[i+1].ID) == nil {
			continue
		}
		test := make(chain.Sequence, 0, n-1)
		test = append(test, c.Genes[:i]...)
		test = append(test, c.Genes[i+1:]...)
		if mustSynthesise(db, test) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	pick := candidates[s.Dice(len(candidates))]
	grown := make(chain.Sequence, 0, n-1)
	grown = append(grown, c.Genes[:pick]...)
	grown = append(grown, c.Genes[pick+1:]...)
	c.Genes = grown
	mustSynthesise(db, c.Genes)
	c.Origin = OriginPointMutate
	return true
}

// LimbMutate severs one end of the chain at a randomly chosen node
// (retrying up to maxStochasticFails times) and regrows it from
// scratch, retrying regeneration the same number of times and accepting
// the first result of length >= bounds.MinLen.
func (c *Chromosome) LimbMutate(db *moduledb.Database, bounds Bounds, s *rng.Stream) bool {
	n := c.Len()
	if n < 2 {
		return false
	}

	severID := -1
	mutateLeft := false
	for i := 0; i < maxStochasticFails; i++ {
		geneID := s.Dice(n-1) + 1
		nodeID := c.Genes[geneID].ID
		counts := db.Neighbours(nodeID)

		if counts.In == 1 && counts.Out == 1 {
			continue
		}
		if counts.In == 1 {
			mutateLeft = false
		} else if counts.Out == 1 {
			mutateLeft = true
		} else {
			mutateLeft = s.Dice(2) == 1
		}
		severID = geneID
		break
	}
	if severID == -1 {
		return false
	}

	remainder := make(chain.Sequence, n)
	copy(remainder, c.Genes)
	if mutateLeft {
		remainder = remainder[severID:]
	} else {
		remainder = remainder[:severID+1]
	}

	var regrown chain.Sequence
	for i := 0; i < maxStochasticFails; i++ {
		if mutateLeft {
			regrown = GenRandomReverse(db, bounds.MaxLen, remainder, s)
		} else {
			regrown = GenRandom(db, bounds.MaxLen, remainder, s)
		}
		if len(regrown) >= bounds.MinLen {
			break
		}
	}
	if len(regrown) < bounds.MinLen {
		return false
	}

	c.Genes = regrown
	c.Origin = OriginLimbMutate
	return true
}

// Cross produces a child by splicing mother's genes before index i onto
// father's genes from index j onward, for (i, j) pairs sharing a module
// id and yielding a child length within bounds. It samples
// candidate pairs uniformly at random, up to maxStochasticFails times,
// until the spliced chain synthesises without self-collision.
func Cross(db *moduledb.Database, bounds Bounds, mother, father Chromosome, s *rng.Stream) (Chromosome, bool) {
	var candidates []idPair
	for i := 0; i < mother.Len(); i++ {
		for j := 0; j < father.Len(); j++ {
			if mother.Genes[i].ID != father.Genes[j].ID {
				continue
			}
			childLen := (i + 1) + (father.Len() - j - 1)
			if childLen < bounds.MinLen || childLen > bounds.MaxLen {
				continue
			}
			candidates = append(candidates, idPair{i, j})
		}
	}
	if len(candidates) == 0 {
		return Chromosome{}, false
	}

	for attempt := 0; attempt < maxStochasticFails; attempt++ {
		pick := candidates[s.Dice(len(candidates))]
		// Exclusive of mother[pick.i]: father[pick.j] carries the same
		// module id (the candidate filter above guarantees it), so only
		// one of the two crossing genes belongs in the child.
		child := make(chain.Sequence, 0, pick.i+(father.Len()-pick.j))
		child = append(child, mother.Genes[:pick.i]...)
		child = append(child, father.Genes[pick.j:]...)

		if mustSynthesise(db, child) {
			return Chromosome{Genes: child, Origin: OriginCross}, true
		}
	}

	return Chromosome{}, false
}

// AutoMutate tries point mutation, then limb mutation, then falls back
// to a fresh random chain, tagging the chromosome's origin with whichever
// operator actually succeeded.
func (c *Chromosome) AutoMutate(db *moduledb.Database, bounds Bounds, s *rng.Stream) {
	if c.PointMutate(db, bounds, s) {
		return
	}
	if c.LimbMutate(db, bounds, s) {
		return
	}
	c.Randomise(db, bounds, s)
}
