package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rioloc/tfidf-go"

	"github.com/YorHaaa/ATAI/internal/labels"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// DefaultTopK is used when Recommend is called with a non-positive topK.
const DefaultTopK = 5

// ErrEmptyCatalog is returned when the graph holds no movies.
var ErrEmptyCatalog = errors.New("movie catalog is empty")

// Engine ranks catalog movies against a user profile.
type Engine struct {
	index   *FeatureIndex
	matcher labels.Matcher
}

// NewEngine returns an Engine over index. Unknown names are matched by edit
// distance against the catalog names.
func NewEngine(index *FeatureIndex) *Engine {
	return &Engine{index: index, matcher: index.Names()}
}

// WithMatcher returns a copy of e using m for names without an exact match.
func (e *Engine) WithMatcher(m labels.Matcher) *Engine {
	c := *e
	if m != nil {
		c.matcher = m
	}
	return &c
}

// Index returns the feature index.
func (e *Engine) Index() *FeatureIndex { return e.index }

// ResolveMovies maps each name to a catalog movie, exact name first and
// nearest name otherwise.
func (e *Engine) ResolveMovies(names []string) []string {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		if id := labels.Lookup(e.index.Names(), e.matcher, n); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Recommend returns the names of the topK catalog movies most similar to
// the named movies. The named movies themselves are never returned.
func (e *Engine) Recommend(names []string, topK int) ([]string, error) {
	done := metrics.TimeEngine("recommend")
	success := false
	defer func() { done(success) }()

	if e.index.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	inputs := e.ResolveMovies(names)
	exclude := make(map[string]struct{}, len(inputs))
	var profile strings.Builder
	for _, id := range inputs {
		exclude[id] = struct{}{}
		doc, _ := e.index.Doc(id)
		profile.WriteString(doc)
	}

	catalog := e.index.Movies()
	docs := make([]string, 0, len(catalog)+1)
	docs = append(docs, profile.String())
	for _, id := range catalog {
		doc, _ := e.index.Doc(id)
		docs = append(docs, doc)
	}
	sims, err := similarities(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize features: %w", err)
	}

	order := make([]int, len(catalog))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return sims[order[a]] < sims[order[b]] })
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	out := make([]string, 0, topK)
	for _, i := range order {
		id := catalog[i]
		if _, ok := exclude[id]; ok {
			continue
		}
		out = append(out, e.index.Name(id))
		if len(out) == topK {
			break
		}
	}

	logging.Debug().
		Strs("inputs", inputs).
		Int("candidates", len(catalog)).
		Int("returned", len(out)).
		Msg("Recommendations ranked")
	success = true
	return out, nil
}

// similarities vectorizes docs with TF-IDF and returns the cosine similarity
// of docs[1:] to docs[0].
func similarities(docs []string) ([]float64, error) {
	vocabulary, tokens := vocabularyOf(docs)
	sims := make([]float64, len(docs)-1)
	if len(vocabulary) == 0 {
		return sims, nil
	}

	tf := tfidf.Tf(vocabulary, tokens)
	idf := tfidf.Idf(vocabulary, tokens, true)
	matrix, err := tfidf.NewTfIdfVectorizer().TfIdf(tf, idf)
	if err != nil {
		return nil, err
	}
	for i := range sims {
		// documents without tokens can yield NaN term frequencies
		if s := cosineSimilarity(matrix[0], matrix[i+1]); !math.IsNaN(s) {
			sims[i] = s
		}
	}
	return sims, nil
}

func vocabularyOf(docs []string) ([]string, [][]string) {
	seen := make(map[string]struct{})
	var vocabulary []string
	tokens := make([][]string, len(docs))
	for i, d := range docs {
		tokens[i] = Tokenize(d)
		for _, t := range tokens[i] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			vocabulary = append(vocabulary, t)
		}
	}
	return vocabulary, tokens
}

func cosineSimilarity(v1, v2 []float64) float64 {
	if len(v1) != len(v2) || len(v1) == 0 {
		return 0
	}
	var dot, mag1, mag2 float64
	for i := range v1 {
		dot += v1[i] * v2[i]
		mag1 += v1[i] * v1[i]
		mag2 += v2[i] * v2[i]
	}
	if mag1 == 0 || mag2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
}
