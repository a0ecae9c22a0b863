/*
Package snapshot saves and restores a classifier's frequency table as msgpack.

A snapshot holds a format version and the (word, label, count) triples of the table:

	{"v": 1, "e": [{"w": "novel", "b": "book", "c": 3}, ...]}

Reading checks the triples before they ever reach a classifier: unknown versions,
empty words or labels, counts below 1 and repeated keys are rejected.
*/
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Version is the snapshot format written by this package
const Version = 1

// ErrInvalidSnapshot is returned for snapshots that cannot be restored
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Record is one table triple on disk
type Record struct {
	Word  string `msgpack:"w"`
	Label string `msgpack:"b"`
	Count int    `msgpack:"c"`
}

// File is the top level snapshot document
type File struct {
	Version int      `msgpack:"v"`
	Entries []Record `msgpack:"e"`
}

// Write encodes entries as a snapshot
func Write(w io.Writer, entries []bucket.Entry) error {
	file := File{
		Version: Version,
		Entries: make([]Record, len(entries)),
	}
	for i, e := range entries {
		file.Entries[i] = Record{Word: e.Word, Label: e.Label, Count: e.Count}
	}
	if err := msgpack.NewEncoder(w).Encode(&file); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Read decodes and validates a snapshot
func Read(r io.Reader) ([]bucket.Entry, error) {
	var file File
	if err := msgpack.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if file.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, file.Version)
	}

	seen := make(map[bucket.Key]struct{}, len(file.Entries))
	entries := make([]bucket.Entry, 0, len(file.Entries))
	for i, rec := range file.Entries {
		if rec.Word == "" || rec.Label == "" {
			return nil, fmt.Errorf("%w: record %d has an empty word or label", ErrInvalidSnapshot, i)
		}
		if rec.Count < 1 {
			return nil, fmt.Errorf("%w: record %d (%s/%s) has count %d", ErrInvalidSnapshot, i, rec.Word, rec.Label, rec.Count)
		}
		key := bucket.Key{Label: rec.Label, Word: rec.Word}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: record %d repeats %s/%s", ErrInvalidSnapshot, i, rec.Word, rec.Label)
		}
		seen[key] = struct{}{}
		entries = append(entries, bucket.Entry{Word: rec.Word, Label: rec.Label, Count: rec.Count})
	}
	return entries, nil
}

// Save writes the classifier's table to path, replacing it atomically
func Save(path string, c *bucket.Classifier) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	entries := c.Dump()
	writer := bufio.NewWriter(tmp)
	if err := Write(writer, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	log.Debugf("Saved snapshot with %d entries to %s", len(entries), path)
	return nil
}

// Load reads the snapshot at path into the classifier, replacing its table
func Load(path string, c *bucket.Classifier) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer file.Close()

	entries, err := Read(bufio.NewReader(file))
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := c.Restore(entries); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	log.Debugf("Loaded snapshot with %d entries from %s", len(entries), path)
	return nil
}
