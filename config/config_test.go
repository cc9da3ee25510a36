package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Parmeggiani-Lab/elfin/ga"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != ga.DefaultConfig() {
		t.Fatal("expected Load(\"\") to return DefaultConfig()")
	}
}

func TestLoadOverridesOnlyMentionedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"popSize": 42}`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := ga.DefaultConfig()
	want.PopSize = 42
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestRegisterFlagsOverridesConfig(t *testing.T) {
	cfg := ga.DefaultConfig()
	paths := Paths{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, &cfg, &paths)

	if err := fs.Parse([]string{"-pop-size=64", "-spec=ref.csv", "-db=mod.json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.PopSize != 64 {
		t.Fatalf("popSize: got %d want 64", cfg.PopSize)
	}
	if paths.SpecPath != "ref.csv" || paths.DBPath != "mod.json" {
		t.Fatalf("paths: got %+v", paths)
	}
}
