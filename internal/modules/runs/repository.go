package runs

import (
	"database/sql"
	"fmt"
	"time"
)

// Schema creates the runs archive table. Blobs live next to the summary
// columns; listings only touch the latter.
const Schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    pfe REAL NOT NULL,
    expected_exposure REAL NOT NULL,
    alpha REAL NOT NULL,
    runtime_ms REAL NOT NULL,
    request BLOB NOT NULL,
    result BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_simulation_runs_created ON simulation_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_simulation_runs_expires ON simulation_runs(expires_at);
`

// DefaultListLimit caps listings when the caller does not set one.
const DefaultListLimit = 50

// InitSchema ensures the runs archive table exists.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create runs schema: %w", err)
	}
	return nil
}

// Repository provides persistence for archived runs.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a runs repository over an open database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a record by id.
func (r *Repository) Save(rec Record) error {
	query := `INSERT OR REPLACE INTO simulation_runs
		(id, kind, pfe, expected_exposure, alpha, runtime_ms, request, result, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		rec.ID, string(rec.Kind), rec.PFE, rec.ExpectedExposure, rec.Alpha, rec.RuntimeMS,
		rec.Request, rec.Result, rec.CreatedAt.Unix(), rec.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the full record for an id, or nil when it does not exist.
func (r *Repository) Get(id string) (*Record, error) {
	query := `SELECT id, kind, pfe, expected_exposure, alpha, runtime_ms, request, result, created_at, expires_at
		FROM simulation_runs WHERE id = ?`

	var rec Record
	var kind string
	var createdAt, expiresAt int64
	err := r.db.QueryRow(query, id).Scan(
		&rec.ID, &kind, &rec.PFE, &rec.ExpectedExposure, &rec.Alpha, &rec.RuntimeMS,
		&rec.Request, &rec.Result, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	rec.Kind = Kind(kind)
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &rec, nil
}

// List returns the newest records first, without their payload blobs.
func (r *Repository) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, kind, pfe, expected_exposure, alpha, runtime_ms, created_at, expires_at
		FROM simulation_runs ORDER BY created_at DESC, id LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kind string
		var createdAt, expiresAt int64
		if err := rows.Scan(
			&rec.ID, &kind, &rec.PFE, &rec.ExpectedExposure, &rec.Alpha, &rec.RuntimeMS,
			&createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.Kind = Kind(kind)
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		rec.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	return records, nil
}

// Delete removes a record by id and reports whether it existed.
func (r *Repository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM simulation_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteExpired removes every record whose retention window has passed
// and returns how many were deleted.
func (r *Repository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM simulation_runs WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return affected, nil
}

// Count returns the number of archived runs.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM simulation_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
