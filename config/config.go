// Package config loads the evolution engine's tunables from a JSON file
// and applies command-line flag overrides on top, mirroring how the
// original distillation's OptionPack combined config.json with its own
// getopt-style flags. Range validation and rate normalization live in
// ga.Config.Validate; this package is only the loading/override layer.
package config

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/ga"
)

// Paths names the input/output files a run needs, kept separate from the
// GA tunables in ga.Config since they aren't evolution parameters.
type Paths struct {
	DBPath     string
	SpecPath   string
	OutputDir  string
	ConfigPath string
}

// Load reads a JSON config file (if path is non-empty) into a ga.Config
// seeded with DefaultConfig, so a partial file only overrides the fields
// it mentions.
func Load(path string) (ga.Config, error) {
	cfg := ga.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.E(err, "config: opening", path)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, errors.E(err, "config: decoding", path)
	}
	return cfg, nil
}

// RegisterFlags binds command-line flags that override a ga.Config and
// the run's I/O paths, binding directly into a pre-populated struct.
func RegisterFlags(fs *flag.FlagSet, cfg *ga.Config, paths *Paths) {
	fs.StringVar(&paths.ConfigPath, "config", "", "Path to a JSON config file (default uses built-in defaults)")
	fs.StringVar(&paths.DBPath, "db", "", "Path to the module database JSON file")
	fs.StringVar(&paths.SpecPath, "spec", "", "Path to the reference spec path (.csv or .json)")
	fs.StringVar(&paths.OutputDir, "output", "./output", "Directory to write solutions into")

	fs.IntVar(&cfg.PopSize, "pop-size", cfg.PopSize, "Population size")
	fs.IntVar(&cfg.Generations, "generations", cfg.Generations, "Maximum number of generations")
	fs.Float64Var(&cfg.SurviveRate, "survive-rate", cfg.SurviveRate, "Fraction of population carried over unchanged")
	fs.Float64Var(&cfg.CrossRate, "cross-rate", cfg.CrossRate, "Fraction of non-survivors produced by crossover")
	fs.Float64Var(&cfg.PointMutateRate, "point-mutate-rate", cfg.PointMutateRate, "Fraction of non-survivors produced by point mutation")
	fs.Float64Var(&cfg.LimbMutateRate, "limb-mutate-rate", cfg.LimbMutateRate, "Fraction of non-survivors produced by limb mutation")
	fs.Float64Var(&cfg.ScoreStopThreshold, "score-stop-threshold", cfg.ScoreStopThreshold, "Stop once the best score drops below this")
	fs.IntVar(&cfg.MaxStagnantGens, "max-stagnant-generations", cfg.MaxStagnantGens, "Stop after this many generations with no improvement")
	fs.IntVar(&cfg.LenDev, "len-dev", cfg.LenDev, "Allowed chain length deviation from the expected length")
	fs.Float64Var(&cfg.AvgPairDist, "avg-pair-dist", cfg.AvgPairDist, "Average module pair distance, used to derive the expected chain length")
	fs.Int64Var(&cfg.RandSeed, "rand-seed", cfg.RandSeed, "Global RNG seed (0 picks one from the wall clock)")
	fs.IntVar(&cfg.NBestSols, "n-best", cfg.NBestSols, "Number of best solutions to keep and emit")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of parallel worker streams")
}
