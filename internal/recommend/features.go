// Package recommend ranks catalog movies by TF-IDF similarity of their
// structured features to a set of movies the user names.
package recommend

import (
	"strings"

	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/labels"
	"github.com/YorHaaa/ATAI/internal/logging"
)

// Feature is one graph property contributing tokens to a movie document.
type Feature struct {
	Name      string
	Predicate string
	// Prefix keeps only the first Prefix runes of each value when positive.
	Prefix int
}

// DefaultFeatures are the properties movies are compared on. Release dates
// keep three characters so that films cluster by decade.
var DefaultFeatures = []Feature{
	{Name: "director", Predicate: graph.PropDirector},
	{Name: "producer", Predicate: graph.PropProducer},
	{Name: "genre", Predicate: graph.PropGenre},
	{Name: "language", Predicate: graph.PropLanguage},
	{Name: "release_date", Predicate: graph.PropPubDate, Prefix: 3},
}

const tokenSep = "|"

// FeatureIndex holds the feature document and display name of every movie.
type FeatureIndex struct {
	movies []string
	docs   map[string]string
	names  map[string]string
	byName *labels.LabelMap
}

// BuildFeatureIndex collects every instance of the film class or one of its
// transitive subclasses and renders its features as "name::value|" tokens.
func BuildFeatureIndex(g *graph.Graph, features []Feature) *FeatureIndex {
	if features == nil {
		features = DefaultFeatures
	}
	idx := &FeatureIndex{
		docs:   make(map[string]string),
		names:  make(map[string]string),
		byName: labels.NewLabelMap(),
	}

	types := g.Closure(graph.FilmClass, graph.PropSubclassOf)
	for _, typ := range types {
		for _, movie := range g.Subjects(graph.PropInstanceOf, typ) {
			if _, ok := idx.docs[movie]; ok {
				continue
			}
			idx.movies = append(idx.movies, movie)
			idx.docs[movie] = featureDoc(g, movie, features)
			for _, l := range g.Labels(movie, "") {
				idx.names[movie] = l
				idx.byName.Add(l, movie)
			}
		}
	}

	logging.Info().
		Int("film_types", len(types)).
		Int("movies", len(idx.movies)).
		Int("names", idx.byName.Len()).
		Msg("Movie feature index built")
	return idx
}

func featureDoc(g *graph.Graph, movie string, features []Feature) string {
	var b strings.Builder
	for _, f := range features {
		for _, t := range g.Match(graph.Pattern{Subject: movie, Predicate: f.Predicate}, 0) {
			v := t.Object.Value
			if r := []rune(v); f.Prefix > 0 && len(r) > f.Prefix {
				v = string(r[:f.Prefix])
			}
			b.WriteString(f.Name)
			b.WriteString("::")
			b.WriteString(v)
			b.WriteString(tokenSep)
		}
	}
	return b.String()
}

// Tokenize splits a feature document on the pipe separator only. Each
// "name::value" pair stays one term and keeps its case.
func Tokenize(doc string) []string {
	var out []string
	for _, tok := range strings.Split(doc, tokenSep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Len returns the number of catalog movies.
func (x *FeatureIndex) Len() int { return len(x.movies) }

// Movies returns the catalog in index order. The slice must not be modified.
func (x *FeatureIndex) Movies() []string { return x.movies }

// Doc returns the feature document of a movie.
func (x *FeatureIndex) Doc(movie string) (string, bool) {
	d, ok := x.docs[movie]
	return d, ok
}

// Name returns the display name of a movie, or its identifier when unlabeled.
func (x *FeatureIndex) Name(movie string) string {
	if n, ok := x.names[movie]; ok {
		return n
	}
	return movie
}

// Names returns the movie name mapping used to resolve user input.
func (x *FeatureIndex) Names() *labels.LabelMap { return x.byName }
