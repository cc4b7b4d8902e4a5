package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"resonant/field"
)

const (
	snapshotFile  = "session.json"
	SchemaVersion = 2
)

// Data is the persisted session snapshot. The engine never touches this
// file; the editor passes text in and reads harmony back out. Version 2
// added the attractor and lifetime peak so field growth survives restarts.
type Data struct {
	Version      int             `json:"version"`
	SessionID    string          `json:"session_id"`
	Text         string          `json:"text"`
	CurrentFile  string          `json:"current_file,omitempty"`
	CursorLine   int             `json:"cursor_line"`
	CursorCol    int             `json:"cursor_col"`
	LastHarmony  float64         `json:"last_harmony"`
	Attractor    field.Attractor `json:"attractor"`
	PeakHarmony  float64         `json:"peak_harmony"`
	UpdatedAtUTC time.Time       `json:"updated_at_utc"`
}

// Store reads and writes the snapshot under a base directory. Writes go
// through a temp file and rename so a crash mid-save never corrupts the
// previous snapshot.
type Store struct {
	dir  string
	path string
}

func NewStore(baseDir string) *Store {
	dir := filepath.Join(baseDir, ".resonant")
	return &Store{
		dir:  dir,
		path: filepath.Join(dir, snapshotFile),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved snapshot, or nil when none exists or the file is
// unreadable. A missing or corrupt snapshot is a fresh start, not an
// error the editor should surface.
func (s *Store) Load() *Data {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if data.Version < 1 || data.Version > SchemaVersion {
		return nil
	}
	if data.Version < 2 {
		// Pre-drift snapshot: field growth starts from home.
		data.Attractor = field.HomeAttractor()
		data.PeakHarmony = 0
	}
	if data.SessionID == "" {
		data.SessionID = uuid.New().String()
	}
	return &data
}

func (s *Store) Save(data Data) error {
	if data.SessionID == "" {
		data.SessionID = uuid.New().String()
	}
	data.Version = SchemaVersion
	data.UpdatedAtUTC = time.Now().UTC()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}
