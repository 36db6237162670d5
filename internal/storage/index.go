package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
)

const createAccepted = `CREATE TABLE IF NOT EXISTS accepted (
	run_id        TEXT NOT NULL,
	k1            REAL NOT NULL,
	k2            REAL NOT NULL,
	time_constant REAL NOT NULL,
	criterion     TEXT NOT NULL,
	value         REAL NOT NULL,
	PRIMARY KEY (run_id, k1, k2, criterion)
);`

// Index is a sqlite table of accepted pairs across runs, one row per verdict.
type Index struct {
	db *sql.DB
}

type IndexEntry struct {
	RunID        string
	Gains        control.Gains
	TimeConstant float64
	Criterion    metrics.Criterion
	Value        float64
}

func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createAccepted); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index table: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error { return ix.db.Close() }

func (ix *Index) Insert(ctx context.Context, runID string, a experiment.Accepted) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, v := range a.Verdicts {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO accepted (run_id, k1, k2, time_constant, criterion, value)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, a.Gains.K1, a.Gains.K2, a.TimeConstant, string(v.Criterion), v.Value)
		if err != nil {
			return fmt.Errorf("insert %s: %w", a.Gains, err)
		}
	}
	return tx.Commit()
}

// Best returns up to n entries for criterion with the smallest value.
func (ix *Index) Best(ctx context.Context, c metrics.Criterion, n int) ([]IndexEntry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT run_id, k1, k2, time_constant, criterion, value FROM accepted
		 WHERE criterion = ? ORDER BY value ASC, time_constant ASC LIMIT ?`,
		string(c), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		var crit string
		if err := rows.Scan(&e.RunID, &e.Gains.K1, &e.Gains.K2, &e.TimeConstant, &crit, &e.Value); err != nil {
			return nil, err
		}
		e.Criterion = metrics.Criterion(crit)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (ix *Index) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT k1 || ',' || k2) FROM accepted WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Sink records accepted pairs under runID.
func (ix *Index) Sink(runID string) experiment.Sink {
	return experiment.SinkFunc(func(ctx context.Context, a experiment.Accepted) error {
		return ix.Insert(ctx, runID, a)
	})
}
