package labels

import (
	"github.com/agnivade/levenshtein"
)

// Matcher finds the label closest to a mention. The linear scan in
// LabelMap is the default; an indexed structure can be swapped in through
// Resolver.WithMatchers.
type Matcher interface {
	// Nearest returns the best label for mention and false when there are no labels.
	Nearest(mention string) (string, bool)
}

// LabelMap maps labels to the identifiers carrying them. Labels keep their
// first-insertion order and so do the identifiers of each label.
type LabelMap struct {
	keys []string
	ids  map[string][]string
}

// NewLabelMap returns an empty map.
func NewLabelMap() *LabelMap {
	return &LabelMap{ids: make(map[string][]string)}
}

// Add records that id carries label.
func (m *LabelMap) Add(label, id string) {
	if _, ok := m.ids[label]; !ok {
		m.keys = append(m.keys, label)
	}
	m.ids[label] = append(m.ids[label], id)
}

// Len returns the number of distinct labels.
func (m *LabelMap) Len() int { return len(m.keys) }

// Labels returns the labels in insertion order. The slice must not be modified.
func (m *LabelMap) Labels() []string { return m.keys }

// IDs returns the identifiers carrying label, first-inserted first.
func (m *LabelMap) IDs(label string) []string { return m.ids[label] }

// First returns the canonical identifier for an exact label.
func (m *LabelMap) First(label string) (string, bool) {
	ids := m.ids[label]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Nearest scans every label and returns the one with the smallest edit
// distance to mention. Equal distances keep the label seen first.
func (m *LabelMap) Nearest(mention string) (string, bool) {
	best := ""
	bestDist := -1
	for _, label := range m.keys {
		d := levenshtein.ComputeDistance(mention, label)
		if bestDist < 0 || d < bestDist {
			best, bestDist = label, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestDist >= 0
}

// Lookup resolves mention to an identifier: an exact label match first, the
// nearest label otherwise. It returns "" only when the map is empty.
func Lookup(m *LabelMap, matcher Matcher, mention string) string {
	if id, ok := m.First(mention); ok {
		return id
	}
	label, ok := matcher.Nearest(mention)
	if !ok {
		return ""
	}
	id, _ := m.First(label)
	return id
}
