package embeddings

import (
	"fmt"
	"math"

	"github.com/YorHaaa/ATAI/internal/graph"
)

// Space is an in-memory Provider backed by two matrices and their id tables.
type Space struct {
	entities    *Matrix
	relations   *Matrix
	entityIDs   []string // row -> identifier, "" when the row has no id
	entityRows  map[string]int
	relationRow map[string]int
}

var _ Provider = (*Space)(nil)

// NewSpace validates the matrices against their id tables. Id table entries
// pointing outside a matrix are rejected.
func NewSpace(entities *Matrix, entityIDs map[int]string, relations *Matrix, relationIDs map[int]string) (*Space, error) {
	if entities.Dims() != relations.Dims() {
		return nil, fmt.Errorf("entity dims %d != relation dims %d", entities.Dims(), relations.Dims())
	}
	s := &Space{
		entities:    entities,
		relations:   relations,
		entityIDs:   make([]string, entities.Rows()),
		entityRows:  make(map[string]int, len(entityIDs)),
		relationRow: make(map[string]int, len(relationIDs)),
	}
	for row, id := range entityIDs {
		if row < 0 || row >= entities.Rows() {
			return nil, fmt.Errorf("entity id %s points at row %d of %d", id, row, entities.Rows())
		}
		s.entityIDs[row] = id
		s.entityRows[id] = row
	}
	for row, id := range relationIDs {
		if row < 0 || row >= relations.Rows() {
			return nil, fmt.Errorf("relation id %s points at row %d of %d", id, row, relations.Rows())
		}
		s.relationRow[graph.NormalizeRelation(id)] = row
	}
	return s, nil
}

// Dimensions implements Provider.
func (s *Space) Dimensions() int { return s.entities.Dims() }

// Entity implements Provider.
func (s *Space) Entity(id string) ([]float32, error) {
	row, ok := s.entityRows[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	return s.entities.Row(row), nil
}

// Relation implements Provider.
func (s *Space) Relation(id string) ([]float32, error) {
	row, ok := s.relationRow[graph.NormalizeRelation(id)]
	if !ok {
		return nil, fmt.Errorf("relation %s: %w", id, ErrNotFound)
	}
	return s.relations.Row(row), nil
}

// Nearest implements Provider. Rows without an identifier are skipped and
// equal distances keep the lower row.
func (s *Space) Nearest(vec []float64) (string, float64, bool) {
	if len(vec) != s.entities.Dims() {
		return "", 0, false
	}
	best, bestDist := -1, math.Inf(1)
	for row := 0; row < s.entities.Rows(); row++ {
		if s.entityIDs[row] == "" {
			continue
		}
		if d := squaredDistance(vec, s.entities.Row(row)); d < bestDist {
			best, bestDist = row, d
		}
	}
	if best < 0 {
		return "", 0, false
	}
	return s.entityIDs[best], math.Sqrt(bestDist), true
}

// Translate returns head + relation, the translational estimate of the tail.
func Translate(head, relation []float32) []float64 {
	out := make([]float64, len(head))
	for i := range head {
		out[i] = float64(head[i]) + float64(relation[i])
	}
	return out
}

func squaredDistance(a []float64, b []float32) float64 {
	var sum float64
	for i := range a {
		d := a[i] - float64(b[i])
		sum += d * d
	}
	return sum
}
