// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package storage provides durable persistence for the recommendation model.
//
// The model is serialized with gob, checksummed with SHA-256, gzip-compressed
// and written to a single fixed path. Writes go to a temp file first and are
// renamed into place, so a crash mid-write can never leave a truncated model
// behind. Superseded models are simply overwritten; there is no version
// history.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// modelFilename is the fixed name of the model file inside the store directory.
const modelFilename = "model.gob.gz"

// Metadata describes a stored model file.
type Metadata struct {
	// SavedAt is when the model was written.
	SavedAt time.Time

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string

	// SizeBytes is the compressed size on disk.
	SizeBytes int64
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store persists the recommendation model at a fixed path.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// NewStore creates a model store at the given directory, creating it if
// needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Path returns the model file path.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, modelFilename)
}

// Save serializes the model and atomically replaces the stored file.
func (s *Store) Save(ctx context.Context, model interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: Metadata{
			SavedAt:   time.Now(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	// Write to a temp file in the same directory, then rename. Rename within
	// a directory is atomic on POSIX filesystems.
	tmp, err := os.CreateTemp(s.baseDir, modelFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	fileEnc := gob.NewEncoder(tmp)
	if err := fileEnc.Encode(sf); err != nil {
		_ = tmp.Close()          //nolint:errcheck // cleaning up after encode failure
		_ = os.Remove(tmpName)   //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp model file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("replace model file: %w", err)
	}

	return nil
}

// Load reads the stored model into target. A missing file is not an error:
// Load returns (nil, false, nil) and the caller starts without a model.
// A corrupt file (bad gob, bad gzip, checksum mismatch) returns an error;
// callers treat it the same as absent.
func (s *Store) Load(ctx context.Context, target interface{}) (*Metadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	f, err := os.Open(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	fileDec := gob.NewDecoder(f)
	if err := fileDec.Decode(&sf); err != nil {
		return nil, false, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, false, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, false, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, false, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	dec := gob.NewDecoder(bytes.NewReader(rawData))
	if err := dec.Decode(target); err != nil {
		return nil, false, fmt.Errorf("decode model: %w", err)
	}

	return &sf.Metadata, true, nil
}
