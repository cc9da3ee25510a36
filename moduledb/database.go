// Package moduledb implements the immutable, read-only-after-construction
// lookup of module collision radii and pairwise rigid-body transforms that
// the chain-synthesis and chromosome-operator components consume.
package moduledb

import (
	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// Radii holds the three collision-radius measures an original module may
// carry. CollisionMeasure picks maxHeavy, per spec.
type Radii struct {
	AvgAll   float64
	MaxCA    float64
	MaxHeavy float64
}

// CollisionMeasure returns the radius used for self-collision checks.
func (r Radii) CollisionMeasure() float64 {
	return r.MaxHeavy
}

// PairTransform places module b immediately after module a in a chain.
// ComB is b's CoM in a's local frame; Rot/RotInv/Tran carry that frame
// forward onto everything already placed.
type PairTransform struct {
	ComB   geom.Vec3
	Rot    geom.Mat3
	RotInv geom.Mat3
	Tran   geom.Vec3
}

// RawPairTransform is the subset of a pair transform an external source
// supplies; RotInv is derived, never authoritative input.
type RawPairTransform struct {
	ComB geom.Vec3
	Rot  geom.Mat3
	Tran geom.Vec3
}

// RawModule is one module's externally-sourced attributes.
type RawModule struct {
	Name  string
	Radii Radii
}

// Source is the external collaborator that supplies the raw module
// database content (e.g. parsed from a JSON file). The core never parses
// files itself; see package pathio and moduledb/jsondb.go for a concrete
// implementation.
type Source interface {
	Load() (modules []RawModule, pairs [][]*RawPairTransform, err error)
}

// NeighbourCount is the (in_degree, out_degree) pair for a module id in
// the pair-transform graph.
type NeighbourCount struct {
	In, Out int
}

// Database is the immutable, process-wide module lookup built once at
// startup from a Source and consulted read-only thereafter.
type Database struct {
	names      []string
	nameToID   map[string]int
	radii      []Radii
	dim        int
	transforms []*PairTransform // dense dim*dim, indexed a*dim+b

	neighbours     []NeighbourCount
	globalRoulette []int
}

// Build validates and assembles a Database from a Source.
func Build(src Source) (*Database, error) {
	modules, pairs, err := src.Load()
	if err != nil {
		return nil, errors.E(err, "moduledb: loading source")
	}

	dim := len(modules)
	if len(pairs) != dim {
		return nil, errors.E("moduledb: pair matrix row count", len(pairs), "!= module count", dim)
	}
	for i, row := range pairs {
		if len(row) != dim {
			return nil, errors.E("moduledb: pair matrix row", i, "has", len(row), "columns, want", dim, "(matrix must be square)")
		}
	}

	db := &Database{
		names:          make([]string, dim),
		nameToID:       make(map[string]int, dim),
		radii:          make([]Radii, dim),
		dim:            dim,
		transforms:     make([]*PairTransform, dim*dim),
		neighbours:     make([]NeighbourCount, dim),
		globalRoulette: nil,
	}

	for id, m := range modules {
		if _, dup := db.nameToID[m.Name]; dup {
			return nil, errors.E("moduledb: duplicate module name", m.Name)
		}
		db.names[id] = m.Name
		db.nameToID[m.Name] = id
		db.radii[id] = m.Radii
	}

	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			raw := pairs[a][b]
			if raw == nil {
				continue
			}
			db.transforms[a*dim+b] = &PairTransform{
				ComB:   raw.ComB,
				Rot:    raw.Rot,
				RotInv: raw.Rot.Transpose(),
				Tran:   raw.Tran,
			}
		}
	}

	for a := 0; a < dim; a++ {
		var out int
		for b := 0; b < dim; b++ {
			if db.transforms[a*dim+b] != nil {
				out++
			}
		}
		var in int
		for b := 0; b < dim; b++ {
			if db.transforms[b*dim+a] != nil {
				in++
			}
		}
		db.neighbours[a] = NeighbourCount{In: in, Out: out}
	}

	for a := 0; a < dim; a++ {
		for j := 0; j < db.neighbours[a].Out; j++ {
			db.globalRoulette = append(db.globalRoulette, a)
		}
	}

	return db, nil
}

// Size returns the number of modules, M.
func (db *Database) Size() int { return db.dim }

// Name returns the stable name for a module id.
func (db *Database) Name(id int) string { return db.names[id] }

// ID returns the module id for a stable name.
func (db *Database) ID(name string) (int, bool) {
	id, ok := db.nameToID[name]
	return id, ok
}

// Radii returns the collision-radius triple for a module id.
func (db *Database) Radii(id int) Radii { return db.radii[id] }

// Transform returns T(a,b), or nil if the pair is forbidden.
func (db *Database) Transform(a, b int) *PairTransform {
	return db.transforms[a*db.dim+b]
}

// Neighbours returns (in_degree, out_degree) for a module id.
func (db *Database) Neighbours(id int) NeighbourCount { return db.neighbours[id] }

// GlobalRoulette returns the multiset of module ids weighted by
// out_degree, used to pick random starting nodes.
func (db *Database) GlobalRoulette() []int { return db.globalRoulette }
