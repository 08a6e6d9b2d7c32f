// Package database persists the knowledge graph and crowd votes in libsql
// and serves the same pattern queries as the in-memory graph.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// IngestStats summarizes an Ingest call.
type IngestStats struct {
	Triples int `json:"triples"`
	Votes   int `json:"votes"`
}

// Ingest replaces the stored graph and votes with the given data. The
// whole replacement runs in one transaction: on error the previous
// contents are kept. BatchSize only paces progress logging here.
func (dm *DBManager) Ingest(ctx context.Context, triples []apptype.Triple, votes []apptype.CrowdVote) (IngestStats, error) {
	done := metrics.TimeOp("db_ingest")
	success := false
	defer func() { done(success) }()

	db, err := dm.getDB()
	if err != nil {
		return IngestStats{}, err
	}
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		for _, table := range []string{"triples", "crowd_votes"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := forBatches(len(triples), dm.config.BatchSize, "triples", func(start, end int) error {
			return insertTriples(ctx, tx, triples[start:end])
		}); err != nil {
			return fmt.Errorf("failed to ingest triples: %w", err)
		}
		if err := forBatches(len(votes), dm.config.BatchSize, "votes", func(start, end int) error {
			return insertVotes(ctx, tx, votes[start:end])
		}); err != nil {
			return fmt.Errorf("failed to ingest votes: %w", err)
		}
		return nil
	})
	if err != nil {
		return IngestStats{}, err
	}
	stats := IngestStats{Triples: len(triples), Votes: len(votes)}
	logging.Info().Int("triples", stats.Triples).Int("votes", stats.Votes).Msg("Ingest complete")
	success = true
	return stats, nil
}

func forBatches(n, size int, what string, fn func(start, end int) error) error {
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		if err := fn(start, end); err != nil {
			return err
		}
		logging.Debug().Str("table", what).Int("rows", end).Int("total", n).Msg("Ingest progress")
	}
	return nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (dm *DBManager) count(ctx context.Context, sqlText string) (int, error) {
	db, err := dm.getDB()
	if err != nil {
		return 0, err
	}
	stmt, err := dm.getPreparedStmt(ctx, db, sqlText)
	if err != nil {
		return 0, err
	}
	var n int
	if err := stmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
