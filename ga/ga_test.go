package ga

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parmeggiani-Lab/elfin/chain"
	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
	"github.com/Parmeggiani-Lab/elfin/rng"
)

// ringSource is a small synthetic module database: a ring of 6 modules
// in which every node has exactly one successor and one predecessor.
// Point mutation can still insert or delete at either end and crossover
// can splice at shared ids, without needing the (unavailable) bundled
// xDB.json; limb mutation finds no sever point, since every node has
// in- and out-degree 1.
type ringSource struct{}

func (ringSource) Load() ([]moduledb.RawModule, [][]*moduledb.RawPairTransform, error) {
	const n = 6
	modules := make([]moduledb.RawModule, n)
	for i := range modules {
		modules[i] = moduledb.RawModule{
			Name:  string(rune('A' + i)),
			Radii: moduledb.Radii{AvgAll: 1, MaxCA: 1, MaxHeavy: 1},
		}
	}

	rot := geom.Identity3()
	pairs := make([][]*moduledb.RawPairTransform, n)
	for i := range pairs {
		pairs[i] = make([]*moduledb.RawPairTransform, n)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pairs[i][j] = &moduledb.RawPairTransform{
			ComB: geom.Vec3{X: 10},
			Rot:  rot,
			Tran: geom.Vec3{X: 10},
		}
	}
	return modules, pairs, nil
}

func buildRingDB(t *testing.T) *moduledb.Database {
	t.Helper()
	db, err := moduledb.Build(ringSource{})
	require.NoError(t, err, "building ring database")
	return db
}

func straightRef(n int) geom.Path {
	ref := make(geom.Path, n)
	for i := range ref {
		ref[i] = geom.Vec3{X: float64(i) * 10}
	}
	return ref
}

func TestGenRandomProducesValidChain(t *testing.T) {
	db := buildRingDB(t)
	s := rng.New(1, 1).Worker(0)

	genes := GenRandom(db, 4, nil, s)
	require.GreaterOrEqual(t, len(genes), 1, "expected at least one gene")
	ok, err := chain.Synthesise(db, genes)
	require.NoError(t, err)
	assert.True(t, ok, "expected freshly generated chain to synthesise cleanly")
}

func TestGenRandomReverseProducesValidChain(t *testing.T) {
	db := buildRingDB(t)
	s := rng.New(2, 1).Worker(0)

	genes := GenRandomReverse(db, 4, nil, s)
	require.GreaterOrEqual(t, len(genes), 1, "expected at least one gene")
	ok, err := chain.SynthesiseReverse(db, genes)
	require.NoError(t, err)
	assert.True(t, ok, "expected freshly generated reverse chain to synthesise cleanly")
}

func TestChecksumStableAndSensitive(t *testing.T) {
	a := chain.Sequence{{ID: 0, CoM: geom.Vec3{X: 1}}, {ID: 1, CoM: geom.Vec3{X: 2}}}
	b := chain.Sequence{{ID: 0, CoM: geom.Vec3{X: 1}}, {ID: 1, CoM: geom.Vec3{X: 2}}}
	c := chain.Sequence{{ID: 0, CoM: geom.Vec3{X: 1}}, {ID: 1, CoM: geom.Vec3{X: 2.0001}}}

	assert.Equal(t, Checksum(a), Checksum(b), "identical gene CoMs must produce identical checksums")
	assert.NotEqual(t, Checksum(a), Checksum(c), "differing gene CoMs should (almost always) differ in checksum")
}

func TestPointMutatePreservesValidity(t *testing.T) {
	db := buildRingDB(t)
	s := rng.New(3, 1).Worker(0)
	bounds := Bounds{MinLen: 2, MaxLen: 6}

	c := Chromosome{}
	c.Randomise(db, bounds, s)
	before := c.Len()

	c.PointMutate(db, bounds, s)

	ok, err := chain.Synthesise(db, c.Genes)
	require.NoError(t, err, "synthesise after point mutate")
	assert.True(t, ok, "point-mutated chromosome must still synthesise")
	assert.GreaterOrEqual(t, c.Len(), bounds.MinLen-1, "length drifted too far below bounds (was %d)", before)
	assert.LessOrEqual(t, c.Len(), bounds.MaxLen+1, "length drifted too far above bounds (was %d)", before)
}

func TestAutoMutateNeverLeavesNaNScore(t *testing.T) {
	db := buildRingDB(t)
	s := rng.New(4, 1).Worker(0)
	bounds := Bounds{MinLen: 2, MaxLen: 6}

	c := Chromosome{}
	c.Randomise(db, bounds, s)
	c.AutoMutate(db, bounds, s)

	ref := straightRef(c.Len())
	c.EvaluateScore(ref)
	assert.False(t, math.IsNaN(c.Score), "expected a concrete score after evaluation")
}

func TestDeriveBounds(t *testing.T) {
	ref := straightRef(10) // total length 90
	b := DeriveBounds(ref, 10, 2)
	// L_exp = round(90/10)+1 = 10
	assert.Equal(t, Bounds{MinLen: 8, MaxLen: 12}, b)
}

func TestConfigValidateNormalizesOverflowingRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SurviveRate = 0.5
	cfg.CrossRate = 0.5
	cfg.PointMutateRate = 0.5
	cfg.LimbMutateRate = 0.5

	normalized, err := cfg.Validate()
	require.NoError(t, err)
	assert.True(t, normalized, "expected rates summing > 1 to trigger normalization")
	sum := cfg.CrossRate + cfg.PointMutateRate + cfg.LimbMutateRate
	assert.InDelta(t, 1.0, sum, 1e-3, "normalized non-survival rates should sum to 1")
}

func TestConfigValidateRejectsBadPopSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PopSize = 0
	_, err := cfg.Validate()
	assert.Error(t, err, "expected an error for non-positive popSize")
}

func TestEngineRunConverges(t *testing.T) {
	db := buildRingDB(t)
	ref := straightRef(4)

	cfg := DefaultConfig()
	cfg.PopSize = 20
	cfg.Generations = 30
	cfg.LenDev = 2
	cfg.AvgPairDist = 10
	cfg.RandSeed = 7
	cfg.ScoreStopThreshold = 1e-6
	cfg.NBestSols = 2
	_, err := cfg.Validate()
	require.NoError(t, err)

	eng := NewEngine(db, ref, cfg)
	result := eng.Run()

	require.Len(t, result.Best, cfg.NBestSols)
	assert.False(t, math.IsNaN(result.Best[0].Score), "best solution must have a concrete score")
}

// TestEngineRunIsReproducibleWithSameSeed pins down the hard invariant
// that the same RandSeed and Config always drive the evolve/initPopulation
// shards to the same draws regardless of goroutine scheduling. Workers is
// set above 1 and PopSize large enough that traverse.Each actually spreads
// shards across multiple goroutines, so a run that shared a stream across
// goroutines (or otherwise let draw order depend on scheduling) would show
// up here as a mismatch between the two runs.
func TestEngineRunIsReproducibleWithSameSeed(t *testing.T) {
	newCfg := func() Config {
		cfg := DefaultConfig()
		cfg.PopSize = 40
		cfg.Generations = 15
		cfg.Workers = 4
		cfg.LenDev = 2
		cfg.AvgPairDist = 10
		cfg.RandSeed = 11
		cfg.NBestSols = 3
		_, err := cfg.Validate()
		require.NoError(t, err)
		return cfg
	}

	db := buildRingDB(t)
	ref := straightRef(4)

	first := NewEngine(db, ref, newCfg()).Run()
	second := NewEngine(db, ref, newCfg()).Run()

	require.Equal(t, first.Generation, second.Generation)
	require.Equal(t, first.Reason, second.Reason)
	require.Len(t, second.Best, len(first.Best))
	for i := range first.Best {
		assert.Equal(t, first.Best[i].Score, second.Best[i].Score, "best[%d] score diverged between identically-seeded runs", i)
		assert.Equal(t, Checksum(first.Best[i].Genes), Checksum(second.Best[i].Genes), "best[%d] genes diverged between identically-seeded runs", i)
	}
}
