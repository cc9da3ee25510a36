// Package output writes finished solutions to disk: a per-solution JSON
// summary ({"nodes": [...], "score": ...}) and a CSV of realised centres
// of mass, mirroring original_source's elfin.cpp output stage and
// Chromosome::toCSVString.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/chain"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
)

// Solution is the minimal view output needs of a scored chromosome,
// decoupling this package from ga.Chromosome.
type Solution struct {
	Genes chain.Sequence
	Score float64
}

// Sink persists a batch of solutions.
type Sink interface {
	Write(db *moduledb.Database, solutions []Solution) error
}

// jsonSummary mirrors the {"nodes": [...], "score": ...} shape the
// original's interrupt handler dumps per solution.
type jsonSummary struct {
	Nodes []string `json:"nodes"`
	Score float64  `json:"score"`
}

// DirSink writes one <index>.json and one <index>.csv per solution into
// Dir, creating it if necessary.
type DirSink struct {
	Dir string
}

// Write implements Sink.
func (s DirSink) Write(db *moduledb.Database, solutions []Solution) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.E(err, "output: creating", s.Dir)
	}

	for i, sol := range solutions {
		names := make([]string, len(sol.Genes))
		for j, g := range sol.Genes {
			names[j] = db.Name(g.ID)
		}

		summary := jsonSummary{Nodes: names, Score: sol.Score}
		blob, err := json.Marshal(summary)
		if err != nil {
			return errors.E(err, "output: marshalling solution", i)
		}
		jsonPath := filepath.Join(s.Dir, fmt.Sprintf("%d.json", i))
		if err := os.WriteFile(jsonPath, blob, 0o644); err != nil {
			return errors.E(err, "output: writing", jsonPath)
		}

		csvPath := filepath.Join(s.Dir, fmt.Sprintf("%d.csv", i))
		if err := os.WriteFile(csvPath, []byte(genesToCSV(sol.Genes)), 0o644); err != nil {
			return errors.E(err, "output: writing", csvPath)
		}
	}

	return nil
}

// genesToCSV renders one "x,y,z" row per gene, matching
// Chromosome::toCSVString's genesToCSVString helper.
func genesToCSV(genes chain.Sequence) string {
	var out string
	for _, g := range genes {
		out += fmt.Sprintf("%g,%g,%g\n", g.CoM.X, g.CoM.Y, g.CoM.Z)
	}
	return out
}
