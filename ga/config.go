package ga

import "github.com/grailbio/base/errors"

// Config holds every tunable the evolution engine consumes. Zero values
// are not valid defaults for most fields; use DefaultConfig and override.
type Config struct {
	PopSize            int     `json:"popSize"`
	Generations        int     `json:"generations"`
	SurviveRate        float64 `json:"surviveRate"`
	CrossRate          float64 `json:"crossRate"`
	PointMutateRate    float64 `json:"pointMutateRate"`
	LimbMutateRate     float64 `json:"limbMutateRate"`
	ScoreStopThreshold float64 `json:"scoreStopThreshold"`
	MaxStagnantGens    int     `json:"maxStagnantGens"`
	LenDev             int     `json:"lenDev"`
	AvgPairDist        float64 `json:"avgPairDist"`
	RandSeed           int64   `json:"randSeed"`
	NBestSols          int     `json:"nBestSols"`
	Workers            int     `json:"workers"`
}

// DefaultConfig mirrors the original distillation's OptionPack defaults:
// a middling population run to 1000 generations with a small survivor
// fraction, favouring point mutation over crossover and limb mutation.
func DefaultConfig() Config {
	return Config{
		PopSize:            256,
		Generations:        1000,
		SurviveRate:        0.1,
		CrossRate:          0.2,
		PointMutateRate:    0.5,
		LimbMutateRate:     0.2,
		ScoreStopThreshold: 0.01,
		MaxStagnantGens:    50,
		LenDev:             3,
		AvgPairDist:        38.0,
		RandSeed:           0,
		NBestSols:          3,
		Workers:            1,
	}
}

// Validate checks range invariants and normalizes the evolve-phase rates
// if their sum exceeds 1, per spec: the three non-survival rates
// (cross/point/limb) are renormalized by their sum and a warning is
// logged by the caller (the config layer only reports whether it had
// to normalize).
func (c *Config) Validate() (normalized bool, err error) {
	if c.PopSize <= 0 {
		return false, errors.E("ga: popSize must be > 0, got", c.PopSize)
	}
	if c.Generations <= 0 {
		return false, errors.E("ga: generations must be > 0, got", c.Generations)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"surviveRate", c.SurviveRate},
		{"crossRate", c.CrossRate},
		{"pointMutateRate", c.PointMutateRate},
		{"limbMutateRate", c.LimbMutateRate},
	} {
		if r.v < 0 || r.v > 1 {
			return false, errors.E("ga:", r.name, "must be in [0,1], got", r.v)
		}
	}
	if c.ScoreStopThreshold < 0 {
		return false, errors.E("ga: scoreStopThreshold must be >= 0, got", c.ScoreStopThreshold)
	}
	if c.MaxStagnantGens < 0 {
		return false, errors.E("ga: maxStagnantGens must be >= 0, got", c.MaxStagnantGens)
	}
	if c.LenDev < 0 {
		return false, errors.E("ga: lenDev must be >= 0, got", c.LenDev)
	}
	if c.AvgPairDist <= 0 {
		return false, errors.E("ga: avgPairDist must be > 0, got", c.AvgPairDist)
	}
	if c.NBestSols < 1 || c.NBestSols > c.PopSize {
		return false, errors.E("ga: nBestSols must be in [1, popSize], got", c.NBestSols)
	}

	sum := c.SurviveRate + c.CrossRate + c.PointMutateRate + c.LimbMutateRate
	if sum > 1 {
		nonSurvive := c.CrossRate + c.PointMutateRate + c.LimbMutateRate
		c.CrossRate /= nonSurvive
		c.PointMutateRate /= nonSurvive
		c.LimbMutateRate /= nonSurvive
		normalized = true
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}

	return normalized, nil
}
