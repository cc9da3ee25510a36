// Package pathio loads a reference specification path — the target 3D
// point sequence the evolution engine scores candidate chains against —
// from CSV or JSON, mirroring the module database's Source pattern: the
// core never opens a file itself.
package pathio

import (
	"github.com/Parmeggiani-Lab/elfin/geom"
)

// Source supplies a reference path for the engine to score against.
type Source interface {
	Load() (geom.Path, error)
}
