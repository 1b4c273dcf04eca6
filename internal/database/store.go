// Package database provides the lookup journal for orderlens.
//
// Every completed order lookup (shown or failed) can be recorded here with
// its timing and outcome. The journal holds metadata only: response bodies
// are never stored and the journal is never used to answer a lookup.
// The DBService struct is the SQLite-backed implementation of Store.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store defines the interface for lookup journal persistence.
type Store interface {
	// InsertLookup records one completed lookup.
	InsertLookup(l *Lookup) error
	// QueryLookups returns lookups matching the filter, most recent first.
	QueryLookups(filter LookupFilter) ([]*Lookup, error)
	// GetLookupStats returns aggregated counts and timings.
	GetLookupStats(filter LookupFilter) (*LookupStats, error)
	// Close gracefully shuts down the database connection.
	Close() error
}

// Outcome values recorded for a lookup.
const (
	OutcomeShown           = "shown"
	OutcomeNotFound        = "not_found"
	OutcomeFetchFailed     = "fetch_failed"
	OutcomeTransportFailed = "transport_failed"
	OutcomeDecodeFailed    = "decode_failed"
)

// Lookup is one journal entry.
type Lookup struct {
	LookupID     string  `json:"lookup_id"`
	OrderID      string  `json:"order_id"`
	URL          string  `json:"url"`
	StartedAt    int64   `json:"started_at"` // Unix nanoseconds
	ElapsedNs    int64   `json:"elapsed_ns"`
	Outcome      string  `json:"outcome"`
	StatusCode   int     `json:"status_code"`
	ErrorMessage *string `json:"error_message,omitempty"`
	ResponseSize int     `json:"response_size"`
}

// LookupFilter defines query parameters for journal listing.
type LookupFilter struct {
	OrderID *string `json:"order_id,omitempty"`
	Outcome *string `json:"outcome,omitempty"`
	Since   *int64  `json:"since,omitempty"` // Unix nanoseconds
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// LookupStats holds aggregated statistics over the journal.
type LookupStats struct {
	Total          int   `json:"total"`
	Shown          int   `json:"shown"`
	NotFound       int   `json:"not_found"`
	FetchFailed    int   `json:"fetch_failed"`
	OtherFailed    int   `json:"other_failed"`
	TotalElapsedNs int64 `json:"total_elapsed_ns"`
	MaxElapsedNs   int64 `json:"max_elapsed_ns"`
}

// DBService implements the Store interface using SQLite.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertLookup *sql.Stmt
}

// NewDBService opens (creating if needed) the journal at path and
// initializes the schema. Use ":memory:" for tests.
func NewDBService(path string) (*DBService, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertLookup, err = s.db.Prepare(`
		INSERT INTO lookups (lookup_id, order_id, url, started_at, elapsed_ns,
			outcome, status_code, error_message, response_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertLookup: %w", err)
	}

	return nil
}

// InsertLookup records one completed lookup.
func (s *DBService) InsertLookup(l *Lookup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stmtInsertLookup.Exec(
		l.LookupID, l.OrderID, l.URL, l.StartedAt, l.ElapsedNs,
		l.Outcome, l.StatusCode, l.ErrorMessage, l.ResponseSize,
	)
	if err != nil {
		return fmt.Errorf("inserting lookup %s: %w", l.LookupID, err)
	}
	return nil
}

// where builds the WHERE clause shared by listing and stats queries.
func (f LookupFilter) where() (string, []interface{}) {
	clause := ` WHERE 1=1`
	args := make([]interface{}, 0)

	if f.OrderID != nil {
		clause += ` AND order_id = ?`
		args = append(args, *f.OrderID)
	}
	if f.Outcome != nil {
		clause += ` AND outcome = ?`
		args = append(args, *f.Outcome)
	}
	if f.Since != nil {
		clause += ` AND started_at >= ?`
		args = append(args, *f.Since)
	}
	return clause, args
}

// QueryLookups returns lookups matching the filter, ordered by start
// time descending (most recent first).
func (s *DBService) QueryLookups(filter LookupFilter) ([]*Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := filter.where()
	query := `SELECT lookup_id, order_id, url, started_at, elapsed_ns, outcome,
		status_code, error_message, response_size FROM lookups` + clause +
		` ORDER BY started_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lookups: %w", err)
	}
	defer rows.Close()

	return scanLookups(rows)
}

// GetLookupStats returns aggregated statistics for the lookups matching
// the filter. Limit and Offset are ignored.
func (s *DBService) GetLookupStats(filter LookupFilter) (*LookupStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := filter.where()
	stats := &LookupStats{}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'shown' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'not_found' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'fetch_failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome IN ('transport_failed', 'decode_failed') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(elapsed_ns), 0),
			COALESCE(MAX(elapsed_ns), 0)
		FROM lookups`+clause, args...).Scan(
		&stats.Total, &stats.Shown, &stats.NotFound, &stats.FetchFailed,
		&stats.OtherFailed, &stats.TotalElapsedNs, &stats.MaxElapsedNs,
	)
	if err != nil {
		return nil, fmt.Errorf("querying lookup stats: %w", err)
	}

	return stats, nil
}

// Close closes the prepared statements and the connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stmtInsertLookup != nil {
		s.stmtInsertLookup.Close()
	}
	return s.db.Close()
}

func scanLookups(rows *sql.Rows) ([]*Lookup, error) {
	var lookups []*Lookup
	for rows.Next() {
		l := &Lookup{}
		if err := rows.Scan(
			&l.LookupID, &l.OrderID, &l.URL, &l.StartedAt, &l.ElapsedNs,
			&l.Outcome, &l.StatusCode, &l.ErrorMessage, &l.ResponseSize,
		); err != nil {
			return nil, fmt.Errorf("scanning lookup row: %w", err)
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}
