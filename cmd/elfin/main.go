// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
elfin runs the module-assembly evolution engine against a module database
and a reference spec path, writing the N best solutions to an output
directory.
*/

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/Parmeggiani-Lab/elfin/config"
	"github.com/Parmeggiani-Lab/elfin/ga"
	"github.com/Parmeggiani-Lab/elfin/moduledb"
	"github.com/Parmeggiani-Lab/elfin/output"
	"github.com/Parmeggiani-Lab/elfin/pathio"
)

func elfinUsage() {
	fmt.Printf("Usage: %s -db xDB.json -spec spec.csv [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = elfinUsage
	shutdown := grail.Init()
	defer shutdown()

	cfg := ga.DefaultConfig()
	paths := config.Paths{}
	config.RegisterFlags(flag.CommandLine, &cfg, &paths)
	flag.Parse()

	if paths.ConfigPath != "" {
		loaded, err := config.Load(paths.ConfigPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
		// Flags parsed above win over the file for any flag the user set
		// explicitly; re-register and re-parse against the loaded config.
		config.RegisterFlags(flag.NewFlagSet("elfin", flag.ContinueOnError), &cfg, &paths)
		flag.Parse()
	}
	if paths.DBPath == "" {
		log.Fatalf("missing required -db flag")
	}
	if paths.SpecPath == "" {
		log.Fatalf("missing required -spec flag")
	}

	if normalized, err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	} else if normalized {
		log.Printf("evolve-phase rates summed to more than 1; normalized to fit")
	}

	db, err := moduledb.Build(moduledb.JSONSource{Path: paths.DBPath})
	if err != nil {
		log.Fatalf("loading module database: %v", err)
	}
	ref, err := pathio.Open(paths.SpecPath)
	if err != nil {
		log.Fatalf("loading reference spec path: %v", err)
	}
	if len(ref) < 2 {
		log.Fatalf("reference spec path has %d point(s), need at least 2", len(ref))
	}

	engine := ga.NewEngine(db, ref, cfg)

	var interrupted int32
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Printf("caught interrupt, stopping after the current generation")
		atomic.StoreInt32(&interrupted, 1)
	}()
	engine.Stop = func() bool { return atomic.LoadInt32(&interrupted) != 0 }

	result := engine.Run()
	log.Printf("stopped after generation %d: %s", result.Generation, result.Reason)

	solutions := make([]output.Solution, len(result.Best))
	for i, c := range result.Best {
		solutions[i] = output.Solution{Genes: c.Genes, Score: c.Score}
	}
	sink := output.DirSink{Dir: paths.OutputDir}
	if err := sink.Write(db, solutions); err != nil {
		log.Fatalf("writing output: %v", err)
	}
	log.Printf("wrote %d solution(s) to %s", len(solutions), paths.OutputDir)
}
