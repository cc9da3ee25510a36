package pathio

import (
	"encoding/json"
	"os"

	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// jsonSpec mirrors original_source's JSONParser::parseSpec: a "coms" array
// of 3-element [x, y, z] tuples.
type jsonSpec struct {
	Coms [][3]float64 `json:"coms"`
}

// JSONSource loads a reference path from a JSON file shaped {"coms": [...]}.
type JSONSource struct {
	Path string
}

// Load implements Source.
func (s JSONSource) Load() (geom.Path, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.E(err, "pathio: opening", s.Path)
	}
	defer f.Close()

	var parsed jsonSpec
	if err := json.NewDecoder(f).Decode(&parsed); err != nil {
		return nil, errors.E(err, "pathio: decoding", s.Path)
	}

	path := make(geom.Path, len(parsed.Coms))
	for i, c := range parsed.Coms {
		path[i] = geom.Vec3{X: c[0], Y: c[1], Z: c[2]}
	}
	return path, nil
}
