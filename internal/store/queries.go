package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Ayt3ck/puppet-homebrew/internal/brew"
)

// Package observations

// UpsertPackage inserts or replaces one observed package.
func (s *Store) UpsertPackage(pkg ObservedPackage) error {
	query := `
		INSERT OR REPLACE INTO packages (name, version, observed_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.Exec(query, pkg.Name, pkg.Version, pkg.ObservedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to upsert package %s: %w", pkg.Name, err)
	}
	return nil
}

// ReplaceAll swaps the cached observations for a full provider listing in a
// single transaction.
func (s *Store) ReplaceAll(pkgs []brew.Package, observedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM packages"); err != nil {
		return fmt.Errorf("failed to clear packages: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO packages (name, version, observed_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	at := observedAt.Format(time.RFC3339)
	for _, pkg := range pkgs {
		if _, err := stmt.Exec(pkg.Name, pkg.Version, at); err != nil {
			return fmt.Errorf("failed to insert package %s: %w", pkg.Name, err)
		}
	}

	return tx.Commit()
}

// GetPackage retrieves one observation by name. Returns (nil, nil) when the
// package has never been observed.
func (s *Store) GetPackage(name string) (*ObservedPackage, error) {
	query := `SELECT name, version, observed_at FROM packages WHERE name = ?`

	var pkg ObservedPackage
	var observedAt string

	err := s.db.QueryRow(query, name).Scan(&pkg.Name, &pkg.Version, &observedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", name, err)
	}

	pkg.ObservedAt, err = time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse observed_at for %s: %w", name, err)
	}
	return &pkg, nil
}

// ListPackages returns all observations ordered by name.
func (s *Store) ListPackages() ([]ObservedPackage, error) {
	rows, err := s.db.Query(`SELECT name, version, observed_at FROM packages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var pkgs []ObservedPackage
	for rows.Next() {
		var pkg ObservedPackage
		var observedAt string
		if err := rows.Scan(&pkg.Name, &pkg.Version, &observedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		pkg.ObservedAt, err = time.Parse(time.RFC3339, observedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse observed_at for %s: %w", pkg.Name, err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, rows.Err()
}

// PackageNames returns the cached package names.
func (s *Store) PackageNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM packages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list package names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan package name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Reconcile history

// StartRun records the beginning of a reconcile pass and returns its id.
func (s *Store) StartRun(startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO runs (started_at) VALUES (?)`, startedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun closes out a reconcile pass with its change count.
func (s *Store) FinishRun(id int64, finishedAt time.Time, changes int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, changes = ? WHERE id = ?`,
		finishedAt.Format(time.RFC3339), changes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", id, err)
	}
	return nil
}

// RecordChange stores one action taken during a reconcile pass.
func (s *Store) RecordChange(c Change) error {
	_, err := s.db.Exec(
		`INSERT INTO changes (run_id, package, action, from_version, to_version) VALUES (?, ?, ?, ?, ?)`,
		c.RunID, c.Package, c.Action, c.FromVersion, c.ToVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record change for %s: %w", c.Package, err)
	}
	return nil
}

// LastRun returns the most recent reconcile pass, or nil when none exist.
func (s *Store) LastRun() (*Run, error) {
	query := `SELECT id, started_at, finished_at, changes FROM runs ORDER BY id DESC LIMIT 1`

	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := s.db.QueryRow(query).Scan(&run.ID, &startedAt, &finishedAt, &run.Changes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run start time: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run finish time: %w", err)
		}
	}
	return &run, nil
}

// ListChanges returns the changes recorded for one reconcile pass.
func (s *Store) ListChanges(runID int64) ([]Change, error) {
	rows, err := s.db.Query(
		`SELECT run_id, package, action, from_version, to_version FROM changes WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes for run %d: %w", runID, err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var from, to sql.NullString
		if err := rows.Scan(&c.RunID, &c.Package, &c.Action, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan change row: %w", err)
		}
		c.FromVersion = from.String
		c.ToVersion = to.String
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
