package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Parmeggiani-Lab/elfin/chain"
	"github.com/Parmeggiani-Lab/elfin/geom"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
)

type twoModuleSource struct{}

func (twoModuleSource) Load() ([]moduledb.RawModule, [][]*moduledb.RawPairTransform, error) {
	modules := []moduledb.RawModule{
		{Name: "alpha", Radii: moduledb.Radii{AvgAll: 1, MaxCA: 1, MaxHeavy: 1}},
		{Name: "beta", Radii: moduledb.Radii{AvgAll: 1, MaxCA: 1, MaxHeavy: 1}},
	}
	pairs := [][]*moduledb.RawPairTransform{{nil, nil}, {nil, nil}}
	return modules, pairs, nil
}

func TestDirSinkWritesJSONAndCSV(t *testing.T) {
	db, err := moduledb.Build(twoModuleSource{})
	if err != nil {
		t.Fatalf("building database: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	sink := DirSink{Dir: dir}
	solutions := []Solution{
		{
			Genes: chain.Sequence{
				{ID: 0, CoM: geom.Vec3{X: 1, Y: 2, Z: 3}},
				{ID: 1, CoM: geom.Vec3{X: 4, Y: 5, Z: 6}},
			},
			Score: 1.5,
		},
	}

	if err := sink.Write(db, solutions); err != nil {
		t.Fatalf("write: %v", err)
	}

	jsonBlob, err := os.ReadFile(filepath.Join(dir, "0.json"))
	if err != nil {
		t.Fatalf("reading json output: %v", err)
	}
	var summary jsonSummary
	if err := json.Unmarshal(jsonBlob, &summary); err != nil {
		t.Fatalf("unmarshalling: %v", err)
	}
	if len(summary.Nodes) != 2 || summary.Nodes[0] != "alpha" || summary.Nodes[1] != "beta" {
		t.Fatalf("unexpected node names: %v", summary.Nodes)
	}
	if summary.Score != 1.5 {
		t.Fatalf("score: got %v want 1.5", summary.Score)
	}

	csvBlob, err := os.ReadFile(filepath.Join(dir, "0.csv"))
	if err != nil {
		t.Fatalf("reading csv output: %v", err)
	}
	want := "1,2,3\n4,5,6\n"
	if string(csvBlob) != want {
		t.Fatalf("csv: got %q want %q", string(csvBlob), want)
	}
}
