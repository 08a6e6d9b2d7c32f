package graph

import "strings"

// Namespaces used by the movie graph.
const (
	NSEntity = "http://www.wikidata.org/entity/"
	NSDirect = "http://www.wikidata.org/prop/direct/"
	NSDDIS   = "http://ddis.ch/atai/"
	NSSchema = "http://schema.org/"
	NSRDFS   = "http://www.w3.org/2000/01/rdf-schema#"

	RDFSLabel = NSRDFS + "label"
)

// Well-known identifiers.
const (
	PropInstanceOf = NSDirect + "P31"
	PropSubclassOf = NSDirect + "P279"
	PropDirector   = NSDirect + "P57"
	PropProducer   = NSDirect + "P272"
	PropGenre      = NSDirect + "P136"
	PropLanguage   = NSDirect + "P364"
	PropPubDate    = NSDirect + "P577"
	FilmClass      = NSEntity + "Q11424"
)

var prefixes = map[string]string{
	"wd":     NSEntity,
	"wdt":    NSDirect,
	"ddis":   NSDDIS,
	"schema": NSSchema,
	"rdfs":   NSRDFS,
}

// LocalName returns the path segment after the last '/'.
func LocalName(iri string) string {
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// IsEntity reports whether the identifier's local name carries the entity marker 'Q'.
func IsEntity(iri string) bool {
	return strings.HasPrefix(LocalName(iri), "Q")
}

// IsRelation reports whether the identifier's local name carries the property marker 'P'.
func IsRelation(iri string) bool {
	return strings.HasPrefix(LocalName(iri), "P")
}

// NormalizeRelation moves relation identifiers found under the entity
// namespace into the direct-property namespace.
func NormalizeRelation(iri string) string {
	if strings.HasPrefix(iri, NSEntity) {
		return NSDirect + strings.TrimPrefix(iri, NSEntity)
	}
	return iri
}

// Expand turns a CURIE such as "wd:Q11424" into a full IRI. Full IRIs,
// angle-bracketed IRIs and unknown prefixes are returned unchanged
// (brackets stripped).
func Expand(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return s[1 : len(s)-1]
	}
	if strings.Contains(s, "://") {
		return s
	}
	prefix, rest, ok := strings.Cut(s, ":")
	if !ok {
		return s
	}
	if ns, ok := prefixes[prefix]; ok {
		return ns + rest
	}
	return s
}

// EntityIRI expands a bare Q-id, a CURIE or a full IRI into an entity IRI.
func EntityIRI(s string) string {
	s = Expand(s)
	if !strings.Contains(s, "/") && !strings.Contains(s, ":") {
		return NSEntity + s
	}
	return s
}

// RelationIRI expands a bare P-id, a CURIE or a full IRI into a direct-property IRI.
func RelationIRI(s string) string {
	s = Expand(s)
	if !strings.Contains(s, "/") && !strings.Contains(s, ":") {
		return NSDirect + s
	}
	return NormalizeRelation(s)
}
