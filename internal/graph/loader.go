package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/YorHaaa/ATAI/internal/apptype"
)

// FormatForPath picks the RDF syntax from the file extension. Anything that
// is not Turtle is read as N-Triples.
func FormatForPath(path string) rdf.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return rdf.Turtle
	default:
		return rdf.NTriples
	}
}

// Load reads an RDF file into a new Graph.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file %s: %w", path, err)
	}
	defer f.Close()
	g, err := Decode(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load graph file %s: %w", path, err)
	}
	return g, nil
}

// Decode reads every triple from r.
func Decode(r io.Reader, format rdf.Format) (*Graph, error) {
	g := New()
	dec := rdf.NewTripleDecoder(r, format)
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode triple %d: %w", g.Len()+1, err)
		}
		g.Add(apptype.Triple{
			Subject:   convertTerm(tr.Subj),
			Predicate: convertTerm(tr.Pred),
			Object:    convertTerm(tr.Obj),
		})
	}
	return g, nil
}

func convertTerm(t rdf.Term) apptype.Term {
	switch v := t.(type) {
	case rdf.IRI:
		return apptype.IRI(v.String())
	case rdf.Literal:
		term := apptype.Literal(v.String(), v.Lang())
		if term.Lang == "" {
			term.Datatype = v.DataType.String()
		}
		return term
	case rdf.Blank:
		return apptype.Term{Kind: apptype.TermBlank, Value: v.String()}
	default:
		return apptype.Term{Kind: apptype.TermLiteral, Value: t.String()}
	}
}
