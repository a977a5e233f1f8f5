package importer

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sourcesDDL = `CREATE TABLE IF NOT EXISTS import_sources (
	adapter_id   TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	description  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	license      TEXT NOT NULL DEFAULT '',
	last_check   INTEGER,
	last_status  INTEGER,
	last_error   TEXT,
	updated_at   INTEGER NOT NULL
)`

// Source is one row of the import_sources table: an adapter's download
// URL plus the outcome of its last availability check.
type Source struct {
	AdapterID   string
	Dataset     string
	Description string
	SourceURL   string
	License     string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	UpdatedAt   int64
}

// SourceDB persists per-adapter source URLs and check results in SQLite.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens or creates the database at path and ensures the
// schema exists. WAL mode keeps the checker and import commands from
// blocking each other.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	if _, err := db.Exec(sourcesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}
	return &SourceDB{db: db}, nil
}

func (s *SourceDB) Close() error { return s.db.Close() }

// Seed inserts a row per adapter with its default URL. Existing rows are
// left alone so manual URL overrides survive restarts.
func (s *SourceDB) Seed(adapters []Adapter) error {
	const q = `INSERT OR IGNORE INTO import_sources
		(adapter_id, dataset, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := s.db.Exec(q, a.ID(), a.Dataset(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// URL returns the configured source URL for adapterID.
func (s *SourceDB) URL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM import_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL for adapterID.
func (s *SourceDB) SetURL(adapterID, url string) error {
	res, err := s.db.Exec(
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("adapter %s not found in import_sources", adapterID)
	}
	return nil
}

// RecordCheck stores the outcome of an availability check. An empty
// checkErr clears last_error.
func (s *SourceDB) RecordCheck(adapterID string, status int, checkErr string) error {
	var errVal *string
	if checkErr != "" {
		errVal = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, errVal, adapterID,
	)
	if err != nil {
		return fmt.Errorf("record check for %s: %w", adapterID, err)
	}
	return nil
}

// List returns every source ordered by adapter id.
func (s *SourceDB) List() ([]Source, error) {
	rows, err := s.db.Query(`SELECT adapter_id, dataset, description, source_url, license,
		last_check, last_status, last_error, updated_at
		FROM import_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.Dataset, &src.Description, &src.SourceURL,
			&src.License, &src.LastCheck, &src.LastStatus, &src.LastError, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
