package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"structureforge/internal/gen/catalog"
	"structureforge/internal/gen/scene"
	"structureforge/internal/gen/structures"
	"structureforge/internal/gen/zone"
	"structureforge/internal/persistence/indexdb"
	"structureforge/internal/persistence/snapshot"
	"structureforge/internal/transport/ws"
	"structureforge/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
		fixedZone  = flag.String("zone", "", "force a fixed zone for the whole world (empty: default classification)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
		saveEvery  = flag.Duration("save_every", 5*time.Minute, "periodic snapshot interval (0 to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	_ = os.MkdirAll(*dataDir, 0o755)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	cfg := tune.Config(*seed)

	var classifier zone.Classifier
	if z := strings.TrimSpace(*fixedZone); z != "" {
		fixed := zone.Name(z)
		classifier = zone.ClassifierFunc(func(x, z float64) zone.Name { return fixed })
	}

	// Headless scene: tracks placed objects so eviction/disposal behaves the
	// same as under a renderer.
	sc := scene.NewMemory()
	mgr := structures.New(cfg, sc, nil, classifier, nil)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"), logger)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	// Resume from snapshot or seed a fresh world.
	toLoad := strings.TrimSpace(*snapPath)
	if toLoad == "" && *loadLatest {
		toLoad = snapshot.Latest(*dataDir)
	}
	if toLoad != "" {
		snap, err := snapshot.Read(toLoad)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", toLoad, err)
		}
		mgr.Load(snap.State)
		logger.Printf("resumed from %s (%d chunks)", toLoad, len(snap.State.StructuresPlaced))
	} else {
		mgr.Init()
		logger.Printf("fresh world, seed %d", *seed)
	}

	// applyDefaults lives inside the manager; re-derive the effective values
	// the transport advertises.
	effective := cfg
	if effective.ChunkSize <= 0 {
		effective.ChunkSize = 100
	}

	server := ws.NewServer(mgr, effective, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", server.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	save := func() {
		st := mgr.Save()
		now := time.Now().Unix()
		p := snapshot.Path(*dataDir, now)
		if err := snapshot.Write(p, snapshot.SnapshotV1{
			Header: snapshot.Header{Version: 1, Seed: *seed, SavedAt: now},
			State:  st,
		}); err != nil {
			logger.Printf("write snapshot: %v", err)
			return
		}
		stats := mgr.Stats()
		logger.Printf("snapshot %s (%d chunks, %d records, %d scene nodes)",
			p, len(st.StructuresPlaced), stats.RecordsPlaced, sc.Count())
		if idx != nil {
			idx.RecordSnapshot(indexdb.SnapshotRow{
				SavedAt:   now,
				Path:      p,
				Seed:      *seed,
				Chunks:    len(st.StructuresPlaced),
				Records:   stats.RecordsPlaced,
				Landmarks: len(st.SpecialStructures),
			})
			for key, recs := range st.StructuresPlaced {
				landmark := false
				for _, r := range recs {
					if r.Kind == catalog.KindDarkSanctum {
						landmark = true
					}
				}
				idx.RecordChunk(indexdb.ChunkRow{
					ChunkKey: key,
					Zone:     string(chunkZone(classifier, key, effective.ChunkSize)),
					Records:  len(recs),
					Landmark: landmark,
				})
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *saveEvery > 0 {
		ticker := time.NewTicker(*saveEvery)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					save()
				}
			}
		}()
	}

	<-ctx.Done()
	logger.Printf("shutting down")
	save()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

func chunkZone(c zone.Classifier, key string, chunkSize float64) zone.Name {
	cx, cz, err := structures.ParseKey(key)
	if err != nil {
		return zone.Default
	}
	return zone.At(c, (float64(cx)+0.5)*chunkSize, (float64(cz)+0.5)*chunkSize)
}
