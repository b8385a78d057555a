// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testModel stands in for the recommendation model; the store is agnostic to
// the concrete type it persists.
type testModel struct {
	Rank    int
	Factors map[int][]float64
	Trained time.Time
}

func newTestModel() *testModel {
	return &testModel{
		Rank: 2,
		Factors: map[int][]float64{
			1: {0.1, -0.2},
			2: {0.3, 0.4},
		},
		Trained: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	ctx := context.Background()
	saved := newTestModel()
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v, want nil", err)
	}

	var loaded testModel
	meta, ok, err := store.Load(ctx, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if !ok {
		t.Fatal("Load() ok = false, want true after Save")
	}

	if loaded.Rank != saved.Rank {
		t.Errorf("loaded Rank = %d, want %d", loaded.Rank, saved.Rank)
	}
	if len(loaded.Factors) != len(saved.Factors) {
		t.Fatalf("loaded %d factor rows, want %d", len(loaded.Factors), len(saved.Factors))
	}
	for id, row := range saved.Factors {
		got := loaded.Factors[id]
		if len(got) != len(row) {
			t.Fatalf("factor row %d length = %d, want %d", id, len(got), len(row))
		}
		for i, v := range row {
			if got[i] != v {
				t.Errorf("factor row %d[%d] = %v, want %v", id, i, got[i], v)
			}
		}
	}
	if !loaded.Trained.Equal(saved.Trained) {
		t.Errorf("loaded Trained = %v, want %v", loaded.Trained, saved.Trained)
	}

	if meta.Checksum == "" {
		t.Error("Metadata.Checksum is empty")
	}
	if meta.SizeBytes <= 0 {
		t.Errorf("Metadata.SizeBytes = %d, want > 0", meta.SizeBytes)
	}
	if meta.SavedAt.IsZero() {
		t.Error("Metadata.SavedAt is zero")
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	var target testModel
	meta, ok, err := store.Load(context.Background(), &target)
	if err != nil {
		t.Errorf("Load() error = %v, want nil for missing file", err)
	}
	if ok {
		t.Error("Load() ok = true, want false for missing file")
	}
	if meta != nil {
		t.Errorf("Load() meta = %+v, want nil for missing file", meta)
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	if err := os.WriteFile(store.Path(), []byte("not a model"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var target testModel
	_, ok, err := store.Load(context.Background(), &target)
	if err == nil {
		t.Error("Load() error = nil, want error for corrupt file")
	}
	if ok {
		t.Error("Load() ok = true, want false for corrupt file")
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	ctx := context.Background()
	first := newTestModel()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v, want nil", err)
	}

	second := newTestModel()
	second.Rank = 8
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save() error = %v, want nil", err)
	}

	var loaded testModel
	if _, _, err := store.Load(ctx, &loaded); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if loaded.Rank != 8 {
		t.Errorf("loaded Rank = %d, want 8 from the overwrite", loaded.Rank)
	}

	// No temp files may survive a completed save.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("store directory contains %v, want only the model file", names)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, newTestModel()); err == nil {
		t.Error("Save() error = nil, want context error")
	}

	var target testModel
	if _, _, err := store.Load(ctx, &target); err == nil {
		t.Error("Load() error = nil, want context error")
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "models")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	if err := store.Save(context.Background(), newTestModel()); err != nil {
		t.Errorf("Save() error = %v, want nil in created directory", err)
	}
}
