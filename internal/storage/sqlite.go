// Package storage provides SQLite-based persistence for generated events.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/MaximVirta/trento/internal/collider"
	"github.com/MaximVirta/trento/internal/event"
)

// Store manages the SQLite database connection for event persistence.
type Store struct {
	db *sql.DB
}

// RunMeta describes one generator run.
type RunMeta struct {
	ProjectileA string
	ProjectileB string
	NEvents     int
	Seed        int64
	BMin        float64
	BMax        float64
}

// RunEntry is a stored run with its database identity.
type RunEntry struct {
	ID        int64
	RunMeta
	CreatedAt time.Time
}

// EventEntry is a single stored event.
type EventEntry struct {
	ID         int64
	RunID      int64
	N          int
	B          float64
	Npart      int
	Ncoll      int
	NToCollide int
	Mult       float64
	Ecc2       float64
	Ecc3       float64
	Ecc4       float64
	Ecc5       float64
}

// RunStats contains aggregated statistics for a run.
type RunStats struct {
	RunID     int64
	NEvents   int
	MeanB     float64
	MeanNpart float64
	MeanMult  float64
	MaxNcoll  int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			projectile_a TEXT NOT NULL,
			projectile_b TEXT NOT NULL,
			nevents INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			b_min REAL NOT NULL,
			b_max REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			n INTEGER NOT NULL,
			b REAL NOT NULL,
			npart INTEGER NOT NULL,
			ncoll INTEGER NOT NULL,
			n_to_collide INTEGER NOT NULL,
			mult REAL NOT NULL,
			e2 REAL NOT NULL,
			e3 REAL NOT NULL,
			e4 REAL NOT NULL,
			e5 REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id);
		CREATE INDEX IF NOT EXISTS idx_events_run_n ON events(run_id, n);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun records a new run and returns its ID.
func (s *Store) CreateRun(meta RunMeta) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (projectile_a, projectile_b, nevents, seed, b_min, b_max)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ProjectileA, meta.ProjectileB, meta.NEvents, meta.Seed, meta.BMin, meta.BMax,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveEvent records one event for the given run.
func (s *Store) SaveEvent(runID int64, n int, res collider.Result, ev *event.Event) error {
	var npart int
	var mult, e2, e3, e4, e5 float64
	if ev != nil {
		npart = ev.Npart
		mult = ev.Mult
		e2, e3, e4, e5 = ev.Ecc[2], ev.Ecc[3], ev.Ecc[4], ev.Ecc[5]
	}

	_, err := s.db.Exec(
		`INSERT INTO events (run_id, n, b, npart, ncoll, n_to_collide, mult, e2, e3, e4, e5)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, n, res.B, npart, res.Ncoll, res.NToCollide, mult, e2, e3, e4, e5,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save event: %w", err)
	}
	return nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, projectile_a, projectile_b, nevents, seed, b_min, b_max, created_at
		 FROM runs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.ProjectileA, &e.ProjectileB, &e.NEvents,
			&e.Seed, &e.BMin, &e.BMax, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		// Parse the datetime - handle both time.Time and string
		switch v := createdAt.(type) {
		case time.Time:
			e.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.CreatedAt = parsed
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// EventsForRun retrieves events of a run in event-number order.
func (s *Store) EventsForRun(runID int64, limit int) ([]EventEntry, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, n, b, npart, ncoll, n_to_collide, mult, e2, e3, e4, e5
		 FROM events
		 WHERE run_id = ?
		 ORDER BY n
		 LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.N, &e.B, &e.Npart, &e.Ncoll,
			&e.NToCollide, &e.Mult, &e.Ecc2, &e.Ecc3, &e.Ecc4, &e.Ecc5); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats retrieves aggregated statistics for a run.
func (s *Store) Stats(runID int64) (*RunStats, error) {
	stats := &RunStats{RunID: runID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(b), 0), COALESCE(AVG(npart), 0),
		        COALESCE(AVG(mult), 0), COALESCE(MAX(ncoll), 0)
		 FROM events WHERE run_id = ?`,
		runID,
	).Scan(&stats.NEvents, &stats.MeanB, &stats.MeanNpart, &stats.MeanMult, &stats.MaxNcoll)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}

	return stats, nil
}

// EventSink adapts a Store to the collider's sink contract, appending
// every emitted event to one run.
type EventSink struct {
	store *Store
	runID int64
}

// NewEventSink registers a run row and returns a sink writing into it.
func (s *Store) NewEventSink(meta RunMeta) (*EventSink, error) {
	runID, err := s.CreateRun(meta)
	if err != nil {
		return nil, err
	}
	return &EventSink{store: s, runID: runID}, nil
}

// RunID returns the database ID of the sink's run.
func (es *EventSink) RunID() int64 {
	return es.runID
}

// Write implements collider.Sink.
func (es *EventSink) Write(n int, res collider.Result, ev *event.Event) error {
	return es.store.SaveEvent(es.runID, n, res, ev)
}

// Ensure EventSink implements the sink contract
var _ collider.Sink = (*EventSink)(nil)
