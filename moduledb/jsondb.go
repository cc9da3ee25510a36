package moduledb

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// jsonPairTransform mirrors one neighbour entry in the on-disk module
// database: comB/tran are 3-vectors, rot is a row-major 3x3 matrix
// flattened to 9 floats, matching original_source's Mat3x3(begin,end)
// constructor contract.
type jsonPairTransform struct {
	ComB [3]float64 `json:"comB"`
	Rot  [9]float64 `json:"rot"`
	Tran [3]float64 `json:"tran"`
}

type jsonModule struct {
	Radii struct {
		AvgAll   float64 `json:"avgAll"`
		MaxCA    float64 `json:"maxCA"`
		MaxHeavy float64 `json:"maxHeavy"`
	} `json:"radii"`
	Pairs map[string]jsonPairTransform `json:"pairs"`
}

type jsonFile struct {
	Modules map[string]jsonModule `json:"modules"`
}

// JSONSource loads a module database from the JSON file format used by the
// original elfin project's xDB.json: a map of module name to its collision
// radii and its outgoing pair transforms, keyed by neighbour name.
type JSONSource struct {
	Path string
}

// Load implements Source.
func (s JSONSource) Load() ([]RawModule, [][]*RawPairTransform, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, errors.E(err, "moduledb: opening", s.Path)
	}
	defer f.Close()
	return decodeJSONDB(f)
}

func decodeJSONDB(r io.Reader) ([]RawModule, [][]*RawPairTransform, error) {
	var parsed jsonFile
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, nil, errors.E(err, "moduledb: decoding JSON database")
	}

	names := make([]string, 0, len(parsed.Modules))
	for name := range parsed.Modules {
		names = append(names, name)
	}
	// Stable id assignment: a deterministic name order keeps module ids
	// reproducible across runs of the same database file.
	sort.Strings(names)

	nameToID := make(map[string]int, len(names))
	for id, name := range names {
		nameToID[name] = id
	}

	modules := make([]RawModule, len(names))
	pairs := make([][]*RawPairTransform, len(names))
	for a, name := range names {
		jm := parsed.Modules[name]
		modules[a] = RawModule{
			Name: name,
			Radii: Radii{
				AvgAll:   jm.Radii.AvgAll,
				MaxCA:    jm.Radii.MaxCA,
				MaxHeavy: jm.Radii.MaxHeavy,
			},
		}

		row := make([]*RawPairTransform, len(names))
		for neighbourName, jt := range jm.Pairs {
			b, ok := nameToID[neighbourName]
			if !ok {
				return nil, nil, errors.E("moduledb: pair references unknown module", neighbourName, "from", name)
			}
			row[b] = &RawPairTransform{
				ComB: geom.Vec3{X: jt.ComB[0], Y: jt.ComB[1], Z: jt.ComB[2]},
				Rot: geom.Mat3{Rows: [3]geom.Vec3{
					{X: jt.Rot[0], Y: jt.Rot[1], Z: jt.Rot[2]},
					{X: jt.Rot[3], Y: jt.Rot[4], Z: jt.Rot[5]},
					{X: jt.Rot[6], Y: jt.Rot[7], Z: jt.Rot[8]},
				}},
				Tran: geom.Vec3{X: jt.Tran[0], Y: jt.Tran[1], Z: jt.Tran[2]},
			}
		}
		pairs[a] = row
	}

	return modules, pairs, nil
}
