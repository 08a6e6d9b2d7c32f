package embeddings

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YorHaaa/ATAI/internal/graph"
)

// writeNpy writes a version 1.0 little-endian float32 .npy file.
func writeNpy(t *testing.T, path string, rows [][]float32) {
	t.Helper()
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), cols)
	// magic(6) + version(2) + length(2) + header must be a multiple of 64, ending in '\n'
	pad := 64 - (10+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	for _, r := range rows {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, r))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func toySpace(t *testing.T) *Space {
	t.Helper()
	ents, err := NewMatrix([][]float32{
		{0, 0}, // Q1 head
		{1, 0}, // Q2
		{0, 1}, // Q3 = Q1 + P1
		{5, 5}, // Q4
	})
	require.NoError(t, err)
	rels, err := NewMatrix([][]float32{{0, 1}, {1, 0}})
	require.NoError(t, err)
	s, err := NewSpace(ents,
		map[int]string{0: graph.NSEntity + "Q1", 1: graph.NSEntity + "Q2", 2: graph.NSEntity + "Q3", 3: graph.NSEntity + "Q4"},
		rels,
		map[int]string{0: graph.NSDirect + "P1", 1: graph.NSDirect + "P2"})
	require.NoError(t, err)
	return s
}

func TestNearestFindsTranslatedTail(t *testing.T) {
	s := toySpace(t)
	head, err := s.Entity(graph.NSEntity + "Q1")
	require.NoError(t, err)
	rel, err := s.Relation(graph.NSDirect + "P1")
	require.NoError(t, err)

	id, dist, ok := s.Nearest(Translate(head, rel))
	require.True(t, ok)
	assert.Equal(t, graph.NSEntity+"Q3", id)
	assert.InDelta(t, 0.0, dist, 1e-9)
}

func TestNearestTieKeepsLowerRow(t *testing.T) {
	s := toySpace(t)
	// (0.5, 0.5) is equidistant from rows 0, 1 and 2
	id, _, ok := s.Nearest([]float64{0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, graph.NSEntity+"Q1", id)
}

func TestLookupMisses(t *testing.T) {
	s := toySpace(t)
	_, err := s.Entity(graph.NSEntity + "Q404")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Relation(graph.NSDirect + "P404")
	assert.ErrorIs(t, err, ErrNotFound)

	// relation ids under the entity namespace resolve to the same row
	_, err = s.Relation(graph.NSEntity + "P2")
	assert.NoError(t, err)

	_, _, ok := s.Nearest([]float64{1})
	assert.False(t, ok)
}

func TestNewSpaceRejectsBadTables(t *testing.T) {
	ents, _ := NewMatrix([][]float32{{0, 0}})
	rels3, _ := NewMatrix([][]float32{{0, 0, 0}})
	_, err := NewSpace(ents, nil, rels3, nil)
	assert.Error(t, err)

	rels, _ := NewMatrix([][]float32{{0, 0}})
	_, err = NewSpace(ents, map[int]string{3: "x"}, rels, nil)
	assert.Error(t, err)

	_, err = NewMatrix([][]float32{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		EntityMatrix:   filepath.Join(dir, "entity_embeds.npy"),
		RelationMatrix: filepath.Join(dir, "relation_embeds.npy"),
		EntityIDs:      filepath.Join(dir, "entity_ids.del"),
		RelationIDs:    filepath.Join(dir, "relation_ids.del"),
	}
	require.True(t, p.Enabled())
	writeNpy(t, p.EntityMatrix, [][]float32{{0, 0, 0}, {1, 2, 3}})
	writeNpy(t, p.RelationMatrix, [][]float32{{1, 2, 3}})
	require.NoError(t, os.WriteFile(p.EntityIDs, []byte("0\thttp://www.wikidata.org/entity/Q1\n1\thttp://www.wikidata.org/entity/Q2\n"), 0o644))
	require.NoError(t, os.WriteFile(p.RelationIDs, []byte("0\thttp://www.wikidata.org/prop/direct/P57\n"), 0o644))

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Dimensions())

	v, err := s.Entity(graph.NSEntity + "Q2")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	head, _ := s.Entity(graph.NSEntity + "Q1")
	rel, _ := s.Relation(graph.NSDirect + "P57")
	id, _, ok := s.Nearest(Translate(head, rel))
	require.True(t, ok)
	assert.Equal(t, graph.NSEntity+"Q2", id)

	assert.False(t, Paths{EntityMatrix: "x"}.Enabled())
	_, err = Load(Paths{EntityMatrix: filepath.Join(dir, "missing.npy")})
	assert.Error(t, err)
}

func TestReadIDTable(t *testing.T) {
	ids, err := ReadIDTable(strings.NewReader("2\tc\n0\ta\n\n1\tb\n"))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, ids)

	_, err = ReadIDTable(strings.NewReader("x\ta\n"))
	assert.Error(t, err)
	_, err = ReadIDTable(strings.NewReader("1\n"))
	assert.Error(t, err)
}
