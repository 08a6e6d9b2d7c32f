package kgqa

import (
	"github.com/YorHaaa/ATAI/internal/config"
	"github.com/YorHaaa/ATAI/internal/database"
	"github.com/YorHaaa/ATAI/internal/embeddings"
)

// Backends accepted in Config.Backend.
const (
	BackendMemory = config.BackendMemory
	BackendLibSQL = config.BackendLibSQL
)

// Config exposes a stable wrapper for service configuration in package mode.
type Config struct {
	// GraphPath is an N-Triples or Turtle file. With the libsql backend the
	// graph is read from the database instead.
	GraphPath string
	// CrowdPath is the crowd TSV export. Optional.
	CrowdPath string

	EntityEmbeddings   string
	RelationEmbeddings string
	EntityIDs          string
	RelationIDs        string

	Backend        string
	URL            string
	AuthToken      string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int
	BatchSize      int

	Language         string
	LiteralRelations []string
	// Synonyms maps relation labels to words rewritten to them. Nil keeps
	// labels.DefaultRelationSynonyms.
	Synonyms map[string][]string
	TopK     int
}

// FromConfig converts a loaded service configuration.
func FromConfig(c *config.Config) *Config {
	return &Config{
		GraphPath:          c.Data.GraphPath,
		CrowdPath:          c.Data.CrowdPath,
		EntityEmbeddings:   c.Data.EntityEmbeddings,
		RelationEmbeddings: c.Data.RelationEmbeddings,
		EntityIDs:          c.Data.EntityIDs,
		RelationIDs:        c.Data.RelationIDs,
		Backend:            c.Store.Backend,
		URL:                c.Store.URL,
		AuthToken:          c.Store.AuthToken,
		MaxOpenConns:       c.Store.MaxOpenConns,
		MaxIdleConns:       c.Store.MaxIdleConns,
		ConnMaxIdleSec:     c.Store.ConnMaxIdleSec,
		ConnMaxLifeSec:     c.Store.ConnMaxLifeSec,
		BatchSize:          c.Store.BatchSize,
		Language:           c.Answer.Language,
		LiteralRelations:   c.Answer.LiteralRelations,
		Synonyms:           c.Answer.Synonyms,
		TopK:               c.Recommend.TopK,
	}
}

func (c *Config) toDatabase() *database.Config {
	return &database.Config{
		URL:            c.URL,
		AuthToken:      c.AuthToken,
		MaxOpenConns:   c.MaxOpenConns,
		MaxIdleConns:   c.MaxIdleConns,
		ConnMaxIdleSec: c.ConnMaxIdleSec,
		ConnMaxLifeSec: c.ConnMaxLifeSec,
		BatchSize:      c.BatchSize,
	}
}

func (c *Config) embeddingPaths() embeddings.Paths {
	return embeddings.Paths{
		EntityMatrix:   c.EntityEmbeddings,
		RelationMatrix: c.RelationEmbeddings,
		EntityIDs:      c.EntityIDs,
		RelationIDs:    c.RelationIDs,
	}
}
