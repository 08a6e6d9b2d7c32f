package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// TripleStore serves graph pattern queries from the triples table.
type TripleStore struct {
	dm *DBManager
}

var _ graph.Store = (*TripleStore)(nil)

// Triples returns the triple store view of the database.
func (dm *DBManager) Triples() *TripleStore { return &TripleStore{dm: dm} }

const tripleColumns = "subject, subject_kind, predicate, object, object_kind, lang, datatype"

func kindCode(k apptype.TermKind) int {
	switch k {
	case apptype.TermLiteral:
		return kindLiteral
	case apptype.TermBlank:
		return kindBlank
	default:
		return kindIRI
	}
}

func termKind(code int) apptype.TermKind {
	switch code {
	case kindLiteral:
		return apptype.TermLiteral
	case kindBlank:
		return apptype.TermBlank
	default:
		return apptype.TermIRI
	}
}

// Insert appends triples in order, committing every BatchSize rows.
func (s *TripleStore) Insert(ctx context.Context, triples []apptype.Triple) (int, error) {
	done := metrics.TimeOp("db_insert_triples")
	success := false
	defer func() { done(success) }()

	db, err := s.dm.getDB()
	if err != nil {
		return 0, err
	}
	written := 0
	for start := 0; start < len(triples); start += s.dm.config.BatchSize {
		end := min(start+s.dm.config.BatchSize, len(triples))
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			return insertTriples(ctx, tx, triples[start:end])
		})
		if err != nil {
			return written, err
		}
		written = end
	}
	success = true
	return written, nil
}

func insertTriples(ctx context.Context, tx *sql.Tx, batch []apptype.Triple) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO triples ("+tripleColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		if t.Subject.Value == "" || t.Predicate.Value == "" {
			return fmt.Errorf("triple subject and predicate cannot be empty")
		}
		_, err := stmt.ExecContext(ctx,
			t.Subject.Value, kindCode(t.Subject.Kind),
			t.Predicate.Value,
			t.Object.Value, kindCode(t.Object.Kind),
			t.Object.Lang, t.Object.Datatype)
		if err != nil {
			return fmt.Errorf("failed to insert triple (%s %s): %w", t.Subject.Value, t.Predicate.Value, err)
		}
	}
	return nil
}

// Objects implements graph.Store.
func (s *TripleStore) Objects(ctx context.Context, subject, predicate string) ([]string, error) {
	done := metrics.TimeOp("db_objects")
	success := false
	defer func() { done(success) }()

	out, err := s.queryStrings(ctx,
		"SELECT object FROM triples WHERE subject = ? AND predicate = ? ORDER BY id",
		subject, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	success = true
	return out, nil
}

// ObjectLabels implements graph.Store. An empty lang matches every label.
func (s *TripleStore) ObjectLabels(ctx context.Context, subject, predicate, lang string) ([]string, error) {
	done := metrics.TimeOp("db_object_labels")
	success := false
	defer func() { done(success) }()

	out, err := s.queryStrings(ctx, `SELECT l.object
        FROM triples t
        JOIN triples l ON l.subject = t.object AND l.predicate = ? AND l.object_kind = ?
        WHERE t.subject = ? AND t.predicate = ? AND t.object_kind = ?
          AND (? = '' OR lower(l.lang) = lower(?))
        ORDER BY t.id, l.id`,
		graph.RDFSLabel, kindLiteral, subject, predicate, kindIRI, lang, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to query object labels: %w", err)
	}
	success = true
	return out, nil
}

func (s *TripleStore) queryStrings(ctx context.Context, sqlText string, args ...any) ([]string, error) {
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
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Match returns up to limit triples matching p in insertion order. A
// non-positive limit means no limit.
func (s *TripleStore) Match(ctx context.Context, p graph.Pattern, limit int) ([]apptype.Triple, error) {
	done := metrics.TimeOp("db_match")
	success := false
	defer func() { done(success) }()

	var where []string
	var args []any
	for _, c := range []struct{ col, val string }{
		{"subject", p.Subject}, {"predicate", p.Predicate}, {"object", p.Object},
	} {
		if c.val != "" {
			where = append(where, c.col+" = ?")
			args = append(args, c.val)
		}
	}
	q := "SELECT " + tripleColumns + " FROM triples"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	var out []apptype.Triple
	err := s.scanTriples(ctx, q, args, func(t apptype.Triple) { out = append(out, t) })
	if err != nil {
		return nil, fmt.Errorf("failed to match triples: %w", err)
	}
	success = true
	return out, nil
}

// LoadGraph reads every stored triple into an in-memory graph.
func (s *TripleStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	done := metrics.TimeOp("db_load_graph")
	success := false
	defer func() { done(success) }()

	g := graph.New()
	if err := s.scanTriples(ctx, "SELECT "+tripleColumns+" FROM triples ORDER BY id", nil, g.Add); err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	success = true
	return g, nil
}

func (s *TripleStore) scanTriples(ctx context.Context, sqlText string, args []any, visit func(apptype.Triple)) error {
	db, err := s.dm.getDB()
	if err != nil {
		return err
	}
	stmt, err := s.dm.getPreparedStmt(ctx, db, sqlText)
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var subj, pred, obj, lang, datatype string
		var subjKind, objKind int
		if err := rows.Scan(&subj, &subjKind, &pred, &obj, &objKind, &lang, &datatype); err != nil {
			return err
		}
		visit(apptype.Triple{
			Subject:   apptype.Term{Kind: termKind(subjKind), Value: subj},
			Predicate: apptype.IRI(pred),
			Object:    apptype.Term{Kind: termKind(objKind), Value: obj, Lang: lang, Datatype: datatype},
		})
	}
	return rows.Err()
}

// Count returns the number of stored triples.
func (s *TripleStore) Count(ctx context.Context) (int, error) {
	return s.dm.count(ctx, "SELECT COUNT(*) FROM triples")
}
