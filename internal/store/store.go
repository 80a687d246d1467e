// Package store handles SQLite snapshots of the launch dataset.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/launchdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoSnapshot is returned when the database holds no imported dataset.
var ErrNoSnapshot = errors.New("no dataset snapshot imported")

// Store wraps SQLite access for launch records.
type Store struct {
	db *sql.DB
}

// SnapshotInfo describes the imported dataset.
type SnapshotInfo struct {
	Source     string
	Records    int
	ImportedAt time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS launches (
			position INTEGER PRIMARY KEY,
			launch_site TEXT NOT NULL,
			payload_mass_kg REAL NOT NULL,
			class INTEGER NOT NULL CHECK (class IN (0, 1)),
			booster_version_category TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_launches_site ON launches(launch_site);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceLaunches swaps the stored snapshot for records in a single transaction.
func (s *Store) ReplaceLaunches(ctx context.Context, source string, records []model.LaunchRecord, importedAt time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM launches`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO launches (position, launch_site, payload_mass_kg, class, booster_version_category)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, i, rec.LaunchSite, rec.PayloadMassKg, rec.Class, rec.BoosterVersionCategory); err != nil {
			return fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot (id, source, imported_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET source = excluded.source, imported_at = excluded.imported_at`,
		source, importedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// ListLaunches returns every stored record in import order.
func (s *Store) ListLaunches(ctx context.Context) ([]model.LaunchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT launch_site, payload_mass_kg, class, booster_version_category
		 FROM launches
		 ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LaunchRecord
	for rows.Next() {
		var rec model.LaunchRecord
		if err := rows.Scan(&rec.LaunchSite, &rec.PayloadMassKg, &rec.Class, &rec.BoosterVersionCategory); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot returns metadata about the imported dataset.
func (s *Store) Snapshot(ctx context.Context) (SnapshotInfo, error) {
	var info SnapshotInfo
	var importedAt string
	err := s.db.QueryRowContext(ctx, `SELECT source, imported_at FROM snapshot WHERE id = 1`).Scan(&info.Source, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, ErrNoSnapshot
	}
	if err != nil {
		return SnapshotInfo{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return SnapshotInfo{}, err
	}
	info.ImportedAt = parsed
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches`).Scan(&info.Records); err != nil {
		return SnapshotInfo{}, err
	}
	return info, nil
}
