// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists the product, company, prospect and contact
// catalog together with stored research runs in a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pharmasage/pkg/types"
)

const (
	dbFile            = "pharmasage.db"
	defaultMaxResults = 10
)

var (
	// ErrNotFound is returned by lookups for an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when a record or query fails validation.
	ErrInvalid = errors.New("invalid input")
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the catalog database at DataDir/pharmasage.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS regions (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			api_name TEXT NOT NULL,
			synonyms TEXT,
			code TEXT,
			form TEXT,
			therapeutic_category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT,
			sector TEXT,
			size TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS prospects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT,
			region TEXT,
			target_segment TEXT,
			website TEXT,
			reason TEXT,
			opportunity_score INTEGER NOT NULL DEFAULT 0,
			status TEXT,
			revenue TEXT,
			employees TEXT,
			purchasing_volume TEXT,
			last_contact TEXT,
			key_products TEXT,
			key_contacts TEXT,
			description TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prospects_score ON prospects(opportunity_score)`,
		`CREATE TABLE IF NOT EXISTS research_runs (
			id TEXT PRIMARY KEY,
			company_name TEXT,
			company_website TEXT NOT NULL,
			strategy TEXT,
			buyers INTEGER NOT NULL DEFAULT 0,
			result TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_research_runs_created ON research_runs(created_at)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			prospect_id TEXT,
			run_id TEXT REFERENCES research_runs(id) ON DELETE CASCADE,
			company TEXT,
			name TEXT NOT NULL,
			role TEXT,
			email TEXT,
			phone TEXT,
			linkedin_url TEXT,
			department TEXT,
			seniority TEXT,
			notes TEXT,
			source TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_prospect_id ON contacts(prospect_id)`,
		`CREATE TABLE IF NOT EXISTS market_indicators (
			name TEXT PRIMARY KEY,
			value REAL NOT NULL,
			unit TEXT,
			currency TEXT,
			change REAL NOT NULL DEFAULT 0,
			trend TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS regional_volumes (
			name TEXT PRIMARY KEY,
			volume REAL NOT NULL,
			growth REAL NOT NULL DEFAULT 0,
			color TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS monthly_trends (
			position INTEGER PRIMARY KEY,
			month TEXT NOT NULL,
			value REAL NOT NULL,
			color TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS exporters (
			rank INTEGER PRIMARY KEY,
			company TEXT NOT NULL,
			country TEXT,
			region TEXT,
			volume TEXT,
			market_share REAL NOT NULL DEFAULT 0,
			growth TEXT,
			products TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS top_products (
			rank INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			volume TEXT,
			growth TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			query TEXT,
			data TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_created ON events(type, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) limit(n int) int {
	if n <= 0 {
		return s.maxResults
	}
	return n
}

// count returns the number of rows in table. table is never user input.
func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
