// worldgen pre-generates structure placement data for a square region
// around the origin without building any visual objects, writes the result
// as a snapshot, and prints placement stats per structure kind.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"structureforge/internal/gen/structures"
	"structureforge/internal/gen/zone"
	"structureforge/internal/persistence/snapshot"
	"structureforge/internal/tuning"
)

func main() {
	var (
		seed       = flag.Int64("seed", 1337, "world seed")
		radius     = flag.Int("radius", 10, "chunk radius around the origin")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		outDir     = flag.String("out", "./data", "output directory for the snapshot")
		fixedZone  = flag.String("zone", "", "force a fixed zone (empty: default classification)")
		skipInit   = flag.Bool("skip_init", false, "skip the fixed starting landmarks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[worldgen] ", log.LstdFlags)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	var classifier zone.Classifier
	if z := strings.TrimSpace(*fixedZone); z != "" {
		fixed := zone.Name(z)
		classifier = zone.ClassifierFunc(func(x, zPos float64) zone.Name { return fixed })
	}

	mgr := structures.New(tune.Config(*seed), nil, nil, classifier, nil)
	if !*skipInit {
		mgr.Init()
	}

	start := time.Now()
	for cx := -*radius; cx <= *radius; cx++ {
		for cz := -*radius; cz <= *radius; cz++ {
			mgr.GenerateStructuresForChunk(cx, cz, true)
		}
	}
	elapsed := time.Since(start)

	st := mgr.Save()
	now := time.Now().Unix()
	p := snapshot.Path(*outDir, now)
	if err := snapshot.Write(p, snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, Seed: *seed, SavedAt: now},
		State:  st,
	}); err != nil {
		logger.Fatalf("write snapshot: %v", err)
	}

	byKind := map[string]int{}
	total := 0
	for _, recs := range st.StructuresPlaced {
		for _, r := range recs {
			byKind[string(r.Kind)]++
			total++
		}
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	logger.Printf("generated %d chunks in %s -> %s", len(st.StructuresPlaced), elapsed.Round(time.Millisecond), p)
	logger.Printf("%d structures, %d landmarks registered", total, len(st.SpecialStructures))
	for _, k := range kinds {
		fmt.Printf("  %-12s %6d\n", k, byKind[k])
	}
	stats := mgr.Stats()
	if stats.LandmarkRejections > 0 {
		logger.Printf("%d landmark candidates rejected by the separation rule", stats.LandmarkRejections)
	}
}
