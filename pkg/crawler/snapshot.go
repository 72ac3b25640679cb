package crawler

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"
)

// snapshotFormatVersion guards against decoding a gob stream produced by an
// incompatible future layout of sessionSnapshot.
const snapshotFormatVersion = 1

// sessionSnapshot is the durable representation of a SessionController's
// state, written by Snapshot and consumed by LoadSnapshot. The frontier's pending
// candidates, its dedup set, the session's stats, and elapsed run time all
// round-trip; the two opaque capabilities (BrowserSession, HttpProbe) do
// not and are re-opened fresh on resume.
type sessionSnapshot struct {
	Version       int
	Configuration CrawlerConfiguration
	Pending       []CrawlCandidate
	Visited       []string // fingerprints already admitted, for dedup on resume
	Stats         StatsSnapshot
	ElapsedNanos  int64
}

// gobEncode is a package-local helper used by types implementing
// gob.GobEncoder to serialize a single value to bytes.
func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gobDecode is the gobEncode counterpart.
func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// writeSnapshot serializes a sessionSnapshot as a binary blob: a one-byte
// version prefix followed by a gob stream, matching the fixed layout the
// corpus favors for on-disk state over a textual format.
func writeSnapshot(w io.Writer, snap sessionSnapshot) error {
	snap.Version = snapshotFormatVersion
	if _, err := w.Write([]byte{byte(snap.Version)}); err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(snap)
}

// readSnapshot parses a blob written by writeSnapshot.
func readSnapshot(r io.Reader) (sessionSnapshot, error) {
	var versionByte [1]byte
	if _, err := io.ReadFull(r, versionByte[:]); err != nil {
		return sessionSnapshot{}, fmt.Errorf("crawler: reading snapshot header: %w", err)
	}
	if versionByte[0] != snapshotFormatVersion {
		return sessionSnapshot{}, fmt.Errorf("crawler: unsupported snapshot version %d", versionByte[0])
	}
	var snap sessionSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return sessionSnapshot{}, fmt.Errorf("crawler: decoding snapshot: %w", err)
	}
	return snap, nil
}

// SnapshotSummary is the subset of a persisted snapshot an operator tool
// needs without restoring a full SessionController.
type SnapshotSummary struct {
	Configuration CrawlerConfiguration
	Stats         StatsSnapshot
	PendingCount  int
	Elapsed       time.Duration
}

// ReadSnapshotSummary parses a blob written by SessionController.Snapshot
// without reconstructing the frontier, for read-only CLI inspection (the
// "describe"/"stats" subcommands).
func ReadSnapshotSummary(r io.Reader) (SnapshotSummary, error) {
	snap, err := readSnapshot(r)
	if err != nil {
		return SnapshotSummary{}, err
	}
	return SnapshotSummary{
		Configuration: snap.Configuration,
		Stats:         snap.Stats,
		PendingCount:  len(snap.Pending),
		Elapsed:       time.Duration(snap.ElapsedNanos),
	}, nil
}
