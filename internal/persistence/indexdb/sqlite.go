// Package indexdb keeps a small sqlite read-model of generation activity:
// snapshot metadata and per-chunk placement stats. It is diagnostics only
// and never feeds back into generation, so writes go through an async
// single-writer goroutine and are allowed to lag.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db  *sql.DB
	log *log.Logger

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders enqueue against Close so nothing sends on a closed channel.
	mu     sync.Mutex
	closed atomic.Bool
}

type reqKind int

const (
	reqSnapshot reqKind = iota + 1
	reqChunk
)

type req struct {
	kind reqKind

	snapshot SnapshotRow
	chunk    ChunkRow
}

// SnapshotRow records one written snapshot file.
type SnapshotRow struct {
	SavedAt   int64
	Path      string
	Seed      int64
	Chunks    int
	Records   int
	Landmarks int
}

// ChunkRow records the outcome of one chunk generation pass.
type ChunkRow struct {
	ChunkKey string
	Zone     string
	Records  int
	Landmark bool
}

func OpenSQLite(path string, logger *log.Logger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	x := &SQLiteIndex{
		db:  db,
		log: logger,
		ch:  make(chan req, 1024),
	}
	x.wg.Add(1)
	go x.writer()
	return x, nil
}

func initPragmas(db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	saved_at   INTEGER NOT NULL,
	path       TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	chunks     INTEGER NOT NULL,
	records    INTEGER NOT NULL,
	landmarks  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chunk_stats (
	chunk_key  TEXT PRIMARY KEY,
	zone       TEXT NOT NULL,
	records    INTEGER NOT NULL,
	landmark   INTEGER NOT NULL
);`
	_, err := db.Exec(schema)
	return err
}

func (x *SQLiteIndex) writer() {
	defer x.wg.Done()
	for r := range x.ch {
		var err error
		switch r.kind {
		case reqSnapshot:
			_, err = x.db.Exec(
				`INSERT INTO snapshots (saved_at, path, seed, chunks, records, landmarks) VALUES (?, ?, ?, ?, ?, ?)`,
				r.snapshot.SavedAt, r.snapshot.Path, r.snapshot.Seed,
				r.snapshot.Chunks, r.snapshot.Records, r.snapshot.Landmarks)
		case reqChunk:
			landmark := 0
			if r.chunk.Landmark {
				landmark = 1
			}
			_, err = x.db.Exec(
				`INSERT INTO chunk_stats (chunk_key, zone, records, landmark) VALUES (?, ?, ?, ?)
				 ON CONFLICT(chunk_key) DO UPDATE SET zone=excluded.zone, records=excluded.records, landmark=excluded.landmark`,
				r.chunk.ChunkKey, r.chunk.Zone, r.chunk.Records, landmark)
		}
		if err != nil && x.log != nil {
			x.log.Printf("indexdb write: %v", err)
		}
	}
}

func (x *SQLiteIndex) enqueue(r req) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed.Load() {
		return
	}
	select {
	case x.ch <- r:
	default:
		// Index lag is acceptable; generation never blocks on it.
		if x.log != nil {
			x.log.Printf("indexdb queue full, dropping %d", r.kind)
		}
	}
}

// RecordSnapshot indexes a written snapshot. Non-blocking.
func (x *SQLiteIndex) RecordSnapshot(row SnapshotRow) {
	x.enqueue(req{kind: reqSnapshot, snapshot: row})
}

// RecordChunk indexes one chunk generation outcome. Non-blocking.
func (x *SQLiteIndex) RecordChunk(row ChunkRow) {
	x.enqueue(req{kind: reqChunk, chunk: row})
}

// SnapshotCount reports how many snapshots are indexed.
func (x *SQLiteIndex) SnapshotCount(ctx context.Context) (int, error) {
	var n int
	err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}

// ChunkStats fetches the indexed row for a chunk key.
func (x *SQLiteIndex) ChunkStats(ctx context.Context, chunkKey string) (ChunkRow, bool, error) {
	var row ChunkRow
	var landmark int
	err := x.db.QueryRowContext(ctx,
		`SELECT chunk_key, zone, records, landmark FROM chunk_stats WHERE chunk_key = ?`,
		chunkKey).Scan(&row.ChunkKey, &row.Zone, &row.Records, &landmark)
	if err == sql.ErrNoRows {
		return ChunkRow{}, false, nil
	}
	if err != nil {
		return ChunkRow{}, false, err
	}
	row.Landmark = landmark != 0
	return row, true, nil
}

// Close drains pending writes and closes the database.
func (x *SQLiteIndex) Close() error {
	var err error
	x.once.Do(func() {
		x.mu.Lock()
		x.closed.Store(true)
		x.mu.Unlock()
		close(x.ch)
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}
