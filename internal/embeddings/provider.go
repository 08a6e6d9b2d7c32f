package embeddings

import (
	"errors"
	"fmt"

	"github.com/YorHaaa/ATAI/internal/logging"
)

// ErrNotFound is returned when an identifier has no embedding row.
var ErrNotFound = errors.New("embedding not found")

// Provider exposes a pre-trained translational embedding space.
// Implementations must be safe for concurrent readers.
type Provider interface {
	// Dimensions returns the vector width shared by entities and relations.
	Dimensions() int
	// Entity returns the vector of an entity identifier.
	Entity(id string) ([]float32, error)
	// Relation returns the vector of a relation identifier.
	Relation(id string) ([]float32, error)
	// Nearest returns the entity closest to vec by Euclidean distance.
	Nearest(vec []float64) (id string, distance float64, ok bool)
}

// Paths locates the four files that make up an embedding space.
type Paths struct {
	EntityMatrix   string
	RelationMatrix string
	EntityIDs      string
	RelationIDs    string
}

// Enabled reports whether every path is set.
func (p Paths) Enabled() bool {
	return p.EntityMatrix != "" && p.RelationMatrix != "" && p.EntityIDs != "" && p.RelationIDs != ""
}

// Load reads the matrices and id tables described by p.
func Load(p Paths) (*Space, error) {
	ents, err := LoadMatrix(p.EntityMatrix)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity embeddings: %w", err)
	}
	rels, err := LoadMatrix(p.RelationMatrix)
	if err != nil {
		return nil, fmt.Errorf("failed to load relation embeddings: %w", err)
	}
	entIDs, err := LoadIDTable(p.EntityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity ids: %w", err)
	}
	relIDs, err := LoadIDTable(p.RelationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load relation ids: %w", err)
	}
	space, err := NewSpace(ents, entIDs, rels, relIDs)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Int("entities", ents.Rows()).
		Int("relations", rels.Rows()).
		Int("dims", ents.Dims()).
		Msg("Embedding space loaded")
	return space, nil
}
