package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"resonant/field"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	attractor := field.HomeAttractor().Drift(0.95)
	err := store.Save(Data{
		Text:        "a line we were writing\nand a second one",
		CurrentFile: "notes.txt",
		CursorLine:  1,
		CursorCol:   4,
		LastHarmony: 0.8123,
		Attractor:   attractor,
		PeakHarmony: 0.91,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := store.Load()
	if loaded == nil {
		t.Fatal("Load returned nil after save")
	}
	if loaded.Text != "a line we were writing\nand a second one" {
		t.Errorf("Text mismatch: %q", loaded.Text)
	}
	if loaded.CurrentFile != "notes.txt" || loaded.CursorLine != 1 || loaded.CursorCol != 4 {
		t.Errorf("Cursor/file mismatch: %+v", loaded)
	}
	if loaded.LastHarmony != 0.8123 || loaded.PeakHarmony != 0.91 {
		t.Errorf("Harmony fields mismatch: %+v", loaded)
	}
	if loaded.Attractor != attractor {
		t.Errorf("Attractor mismatch: %+v vs %+v", loaded.Attractor, attractor)
	}
	if loaded.Version != SchemaVersion {
		t.Errorf("Expected version %d, got %d", SchemaVersion, loaded.Version)
	}
	if loaded.SessionID == "" {
		t.Error("Expected a generated session ID")
	}
	if loaded.UpdatedAtUTC.IsZero() {
		t.Error("Expected a timestamp")
	}
}

func TestStore_SessionIDStable(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(Data{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	first := store.Load()

	if err := store.Save(Data{SessionID: first.SessionID, Text: "y"}); err != nil {
		t.Fatal(err)
	}
	second := store.Load()
	if second.SessionID != first.SessionID {
		t.Errorf("Session ID changed across saves: %s vs %s", first.SessionID, second.SessionID)
	}
}

func TestStore_MissingSnapshot(t *testing.T) {
	store := NewStore(t.TempDir())
	if store.Load() != nil {
		t.Error("Expected nil for missing snapshot")
	}
}

func TestStore_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Load() != nil {
		t.Error("Expected nil for corrupt snapshot")
	}
}

func TestStore_V1SnapshotUpgrades(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}

	v1 := map[string]any{
		"version":      1,
		"text":         "old draft",
		"last_harmony": 0.61,
	}
	raw, _ := json.Marshal(v1)
	if err := os.WriteFile(store.Path(), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load()
	if loaded == nil {
		t.Fatal("V1 snapshot should still load")
	}
	if loaded.Text != "old draft" {
		t.Errorf("Text lost in upgrade: %q", loaded.Text)
	}
	if loaded.Attractor != field.HomeAttractor() {
		t.Errorf("Expected home attractor for v1 snapshot, got %+v", loaded.Attractor)
	}
	if loaded.PeakHarmony != 0 {
		t.Errorf("Expected zero peak for v1 snapshot, got %f", loaded.PeakHarmony)
	}
}

func TestStore_FutureVersionRejected(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(map[string]any{"version": 99, "text": "???"})
	if err := os.WriteFile(store.Path(), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Load() != nil {
		t.Error("Expected nil for snapshot from a future schema")
	}
}

func TestStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Save(Data{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file left behind after save")
	}
}
