// Package snapshot persists the structure placement tables to disk as
// zstd-compressed JSON. The payload is the save-game fragment itself, so the
// field names inside are the save-compatibility contract.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"structureforge/internal/gen/structures"
)

type Header struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	SavedAt int64 `json:"saved_at_unix"`
}

type SnapshotV1 struct {
	Header Header               `json:"header"`
	State  structures.SaveState `json:"state"`
}

const suffix = ".snap.zst"

// Write stores a snapshot at path, creating parent directories.
func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap.State); err != nil {
		enc.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads a snapshot. A missing or partially-shaped state decodes to the
// zero tables rather than failing; only unreadable files and broken framing
// are errors.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	hb, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(hb, &snap.Header); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&snap.State); err != nil {
		return snap, fmt.Errorf("decode state: %w", err)
	}
	return snap, nil
}

// Path builds the canonical snapshot filename for a directory and timestamp.
func Path(dir string, unix int64) string {
	return filepath.Join(dir, fmt.Sprintf("structures_%d%s", unix, suffix))
}

// Latest returns the newest snapshot path in dir, or "" when none exist.
func Latest(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "structures_") && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1])
}
