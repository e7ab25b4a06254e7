// Package store handles SQLite persistence of imported datasets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a named dataset does not exist.
var ErrNotFound = errors.New("dataset not found")

// Store wraps SQLite access for dataset snapshots.
type Store struct {
	db *sql.DB
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
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS defect_records (
			dataset_id INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			day INTEGER NOT NULL,
			sample TEXT NOT NULL,
			defects INTEGER NOT NULL,
			PRIMARY KEY (dataset_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_defect_records_day ON defect_records(dataset_id, day);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ImportDataset stores records under name, replacing any previous dataset
// with the same name. Record order is preserved.
func (s *Store) ImportDataset(ctx context.Context, name string, ds dataset.Dataset, importedAt time.Time) (err error) {
	if name == "" {
		return fmt.Errorf("dataset name is empty")
	}
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

	if _, err = tx.ExecContext(ctx, `DELETE FROM defect_records WHERE dataset_id IN (SELECT id FROM datasets WHERE name = ?)`, name); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, source, imported_at) VALUES (?, ?, ?)`,
		name, ds.Source(), importedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO defect_records (dataset_id, seq, day, sample, defects) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, rec := range ds.Records() {
		if _, err = stmt.ExecContext(ctx, id, i, rec.Day, rec.Sample, rec.Defects); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadDataset reads a stored dataset in its original record order.
func (s *Store) LoadDataset(ctx context.Context, name string) (dataset.Dataset, error) {
	var id int64
	var source string
	err := s.db.QueryRowContext(ctx, `SELECT id, source FROM datasets WHERE name = ?`, name).Scan(&id, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return dataset.Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return dataset.Dataset{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, sample, defects FROM defect_records WHERE dataset_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return dataset.Dataset{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.DefectRecord
	for rows.Next() {
		var rec model.DefectRecord
		if err := rows.Scan(&rec.Day, &rec.Sample, &rec.Defects); err != nil {
			return dataset.Dataset{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	return dataset.New(source, records), nil
}

// ListDatasets returns stored datasets ordered by name.
func (s *Store) ListDatasets(ctx context.Context) ([]model.DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT d.name, d.source, d.imported_at, COUNT(r.seq)
		FROM datasets d
		LEFT JOIN defect_records r ON r.dataset_id = d.id
		GROUP BY d.id
		ORDER BY d.name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var infos []model.DatasetInfo
	for rows.Next() {
		var info model.DatasetInfo
		var importedAt string
		if err := rows.Scan(&info.Name, &info.Source, &importedAt, &info.Records); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, err
		}
		info.ImportedAt = parsed
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// DeleteDataset removes a stored dataset and its records.
func (s *Store) DeleteDataset(ctx context.Context, name string) (err error) {
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
	if _, err = tx.ExecContext(ctx, `DELETE FROM defect_records WHERE dataset_id IN (SELECT id FROM datasets WHERE name = ?)`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, name)
		return err
	}
	return tx.Commit()
}
