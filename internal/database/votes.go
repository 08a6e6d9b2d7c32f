package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/crowd"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// VoteStore serves crowd votes from the crowd_votes table.
type VoteStore struct {
	dm *DBManager
}

var _ crowd.VoteSource = (*VoteStore)(nil)

// Votes returns the vote store view of the database.
func (dm *DBManager) Votes() *VoteStore { return &VoteStore{dm: dm} }

const voteColumns = "batch_id, question_id, worker_id, subject, predicate, answer, label"

// Insert appends votes in order, committing every BatchSize rows.
func (s *VoteStore) Insert(ctx context.Context, votes []apptype.CrowdVote) (int, error) {
	done := metrics.TimeOp("db_insert_votes")
	success := false
	defer func() { done(success) }()

	db, err := s.dm.getDB()
	if err != nil {
		return 0, err
	}
	written := 0
	for start := 0; start < len(votes); start += s.dm.config.BatchSize {
		end := min(start+s.dm.config.BatchSize, len(votes))
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			return insertVotes(ctx, tx, votes[start:end])
		})
		if err != nil {
			return written, err
		}
		written = end
	}
	success = true
	return written, nil
}

func insertVotes(ctx context.Context, tx *sql.Tx, batch []apptype.CrowdVote) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO crowd_votes ("+voteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range batch {
		if v.QuestionID == "" || v.Subject == "" {
			return fmt.Errorf("vote question and subject cannot be empty")
		}
		if _, err := stmt.ExecContext(ctx, v.BatchID, v.QuestionID, v.WorkerID, v.Subject, v.Predicate, v.Answer, v.Label); err != nil {
			return fmt.Errorf("failed to insert vote for %s: %w", v.QuestionID, err)
		}
	}
	return nil
}

// VotesForSubject implements crowd.VoteSource.
func (s *VoteStore) VotesForSubject(ctx context.Context, subject string) ([]apptype.CrowdVote, error) {
	done := metrics.TimeOp("db_votes_for_subject")
	success := false
	defer func() { done(success) }()

	out, err := s.query(ctx, "SELECT "+voteColumns+" FROM crowd_votes WHERE subject = ? ORDER BY id", subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for subject: %w", err)
	}
	success = true
	return out, nil
}

// VotesForBatch implements crowd.VoteSource.
func (s *VoteStore) VotesForBatch(ctx context.Context, batchID string) ([]apptype.CrowdVote, error) {
	done := metrics.TimeOp("db_votes_for_batch")
	success := false
	defer func() { done(success) }()

	out, err := s.query(ctx, "SELECT "+voteColumns+" FROM crowd_votes WHERE batch_id = ? ORDER BY id", batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for batch: %w", err)
	}
	success = true
	return out, nil
}

func (s *VoteStore) query(ctx context.Context, sqlText string, args ...any) ([]apptype.CrowdVote, error) {
	db, err := s.dm.getDB()
	if err != nil {
		return nil, err
	}
	stmt, err := s.dm.getPreparedStmt(ctx, db, sqlText)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []apptype.CrowdVote{}
	for rows.Next() {
		var v apptype.CrowdVote
		if err := rows.Scan(&v.BatchID, &v.QuestionID, &v.WorkerID, &v.Subject, &v.Predicate, &v.Answer, &v.Label); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of stored votes.
func (s *VoteStore) Count(ctx context.Context) (int, error) {
	return s.dm.count(ctx, "SELECT COUNT(*) FROM crowd_votes")
}
