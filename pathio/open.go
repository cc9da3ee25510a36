package pathio

import (
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// Open loads a reference path, picking CSVSource or JSONSource by file
// extension, mirroring elfin.cpp's own regex dispatch on the input file.
func Open(path string) (geom.Path, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return CSVSource{Path: path}.Load()
	case ".json":
		return JSONSource{Path: path}.Load()
	default:
		return nil, errors.E("pathio: unrecognised spec file extension for", path)
	}
}
