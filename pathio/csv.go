package pathio

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// CSVSource loads a reference path from a whitespace-delimited text file,
// one point per line ("x y z"), matching original_source's CSVParser
// (despite the name, the original delimits on spaces, not commas).
type CSVSource struct {
	Path string
}

// Load implements Source.
func (s CSVSource) Load() (geom.Path, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "pathio: opening %s", s.Path)
	}
	defer f.Close()

	var path geom.Path
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errors.Errorf("pathio: line %d of %s has %d components, want 3", lineNo, s.Path, len(fields))
		}
		var v geom.Vec3
		coords := [3]*float64{&v.X, &v.Y, &v.Z}
		for i, field := range fields {
			parsed, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "pathio: parsing component %d on line %d of %s", i, lineNo, s.Path)
			}
			*coords[i] = parsed
		}
		path = append(path, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "pathio: reading %s", s.Path)
	}

	return path, nil
}
