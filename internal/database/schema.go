package database

// Object kinds stored in triples.object_kind.
const (
	kindIRI     = 0
	kindLiteral = 1
	kindBlank   = 2
)

var schema = []string{
	// Triples in source order
	`CREATE TABLE IF NOT EXISTS triples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        subject TEXT NOT NULL,
        subject_kind INTEGER NOT NULL DEFAULT 0,
        predicate TEXT NOT NULL,
        object TEXT NOT NULL,
        object_kind INTEGER NOT NULL DEFAULT 0,
        lang TEXT NOT NULL DEFAULT '',
        datatype TEXT NOT NULL DEFAULT ''
    )`,

	// Crowd verification votes
	`CREATE TABLE IF NOT EXISTS crowd_votes (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        batch_id TEXT NOT NULL,
        question_id TEXT NOT NULL,
        worker_id TEXT NOT NULL DEFAULT '',
        subject TEXT NOT NULL,
        predicate TEXT NOT NULL DEFAULT '',
        answer TEXT NOT NULL DEFAULT '',
        label TEXT NOT NULL
    )`,

	`CREATE INDEX IF NOT EXISTS idx_triples_subject_predicate ON triples(subject, predicate)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_predicate_object ON triples(predicate, object)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(object)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_subject ON crowd_votes(subject)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_batch ON crowd_votes(batch_id)`,
}
