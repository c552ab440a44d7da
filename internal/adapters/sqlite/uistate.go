// Package sqlite persists durable client-side UI state (expanded folders,
// selection, panel layout) in a per-endpoint SQLite database.
package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"diagramio/internal/ports"
)

const schemaVersion = "1"

const (
	keyExpandedFolders = "expanded_folders"
	keySelectedDiagram = "selected_diagram_id"
	keyPanelLayout     = "panel_layout"
)

// UIState implements ports.UIStateStore on SQLite, one database per
// backend endpoint so switching endpoints never mixes state.
type UIState struct {
	db     *sql.DB
	dbPath string
}

// Ensure UIState implements the port
var _ ports.UIStateStore = (*UIState)(nil)

// Open initializes the state database for the given backend URL.
func Open(apiURL string) (*UIState, error) {
	dbPath := databasePath(apiURL)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// Pragmas + schema in a single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS ui_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup state database: %w", err)
	}

	s := &UIState{db: db, dbPath: dbPath}
	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// checkSchema drops stored state written by an incompatible version.
func (s *UIState) checkSchema() error {
	var version string
	s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if version != schemaVersion {
		if _, err := s.db.Exec("DELETE FROM ui_state"); err != nil {
			return fmt.Errorf("failed to reset state: %w", err)
		}
		if _, err := s.db.Exec(
			"INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)",
			schemaVersion,
		); err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *UIState) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// databasePath returns the path for the state database under XDG data.
func databasePath(apiURL string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	h := sha256.Sum256([]byte(apiURL))
	return filepath.Join(dataHome, "diagramio", hex.EncodeToString(h[:8])+".db")
}

func (s *UIState) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM ui_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *UIState) put(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO ui_state (key, value) VALUES (?, ?)", key, value,
	)
	return err
}

func (s *UIState) delete(key string) error {
	_, err := s.db.Exec("DELETE FROM ui_state WHERE key = ?", key)
	return err
}

// ExpandedFolders returns the persisted expanded-folder ids. Corrupt data
// is cleaned up and reported as empty rather than failing startup.
func (s *UIState) ExpandedFolders() ([]int64, error) {
	raw, err := s.get(keyExpandedFolders)
	if err != nil || raw == "" {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		_ = s.delete(keyExpandedFolders)
		return nil, nil
	}
	return ids, nil
}

// SaveExpandedFolders persists the expanded-folder set.
func (s *UIState) SaveExpandedFolders(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.put(keyExpandedFolders, string(data))
}

// SelectedDiagram returns the persisted selection, 0 when none.
func (s *UIState) SelectedDiagram() (int64, error) {
	raw, err := s.get(keySelectedDiagram)
	if err != nil || raw == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = s.delete(keySelectedDiagram)
		return 0, nil
	}
	return id, nil
}

// SaveSelectedDiagram persists the selection; id 0 clears it.
func (s *UIState) SaveSelectedDiagram(id int64) error {
	if id == 0 {
		return s.delete(keySelectedDiagram)
	}
	return s.put(keySelectedDiagram, strconv.FormatInt(id, 10))
}

// PanelLayout returns the persisted layout blob, nil when unset.
func (s *UIState) PanelLayout() ([]byte, error) {
	raw, err := s.get(keyPanelLayout)
	if err != nil || raw == "" {
		return nil, err
	}
	return []byte(raw), nil
}

// SavePanelLayout persists the layout blob.
func (s *UIState) SavePanelLayout(data []byte) error {
	return s.put(keyPanelLayout, string(data))
}

// ClearPanelLayout discards the persisted layout.
func (s *UIState) ClearPanelLayout() error {
	return s.delete(keyPanelLayout)
}
