package apptype

// ResolveArgs represents the arguments for the resolve tool
type ResolveArgs struct {
	Entity   string `json:"entity" jsonschema:"Free-text entity mention, e.g. a movie or person name."`
	Relation string `json:"relation,omitempty" jsonschema:"Free-text relation mention, e.g. 'director'."`
}

// ResolveResult is the structured output of the resolve tool
type ResolveResult struct {
	EntityID      string `json:"entityId"`
	EntityLabel   string `json:"entityLabel,omitempty"`
	RelationID    string `json:"relationId"`
	RelationLabel string `json:"relationLabel,omitempty"`
	RelationKind  string `json:"relationKind,omitempty"`
}

// AnswerQuestionArgs represents the arguments for the answer_question tool
type AnswerQuestionArgs struct {
	Entity      string `json:"entity" jsonschema:"Entity mention extracted from the question."`
	Relation    string `json:"relation,omitempty" jsonschema:"Relation mention extracted from the question."`
	SkipCrowd   bool   `json:"skipCrowd,omitempty" jsonschema:"Do not consult crowd votes before the graph."`
	FactualOnly bool   `json:"factualOnly,omitempty" jsonschema:"Do not fall back to the embedding space."`
}

// ConsensusArgs represents the arguments for the crowd_consensus tool
type ConsensusArgs struct {
	Entity   string `json:"entity" jsonschema:"Entity mention or identifier (Q-id)."`
	Relation string `json:"relation,omitempty" jsonschema:"Relation mention or identifier (P-id)."`
}

// ConsensusToolResult is the structured output of the crowd_consensus tool
type ConsensusToolResult struct {
	Found     bool             `json:"found"`
	Consensus *ConsensusResult `json:"consensus,omitempty"`
}

// RecommendArgs represents the arguments for the recommend_movies tool
type RecommendArgs struct {
	Movies []string `json:"movies" jsonschema:"Movie titles the user liked."`
	TopK   int      `json:"topK,omitempty" jsonschema:"Number of recommendations to return (default 5)."`
}

// RecommendResult is the structured output of the recommend_movies tool
type RecommendResult struct {
	Movies []string `json:"movies"`
}

// MatchTriplesArgs represents the arguments for the match_triples tool.
// Empty positions act as wildcards.
type MatchTriplesArgs struct {
	Subject   string `json:"subject,omitempty" jsonschema:"Subject IRI or CURIE (wd:Q..), empty for any."`
	Predicate string `json:"predicate,omitempty" jsonschema:"Predicate IRI or CURIE (wdt:P..), empty for any."`
	Object    string `json:"object,omitempty" jsonschema:"Object IRI, CURIE or literal value, empty for any."`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of triples to return (default 50)."`
}

// MatchTriplesResult is the structured output of the match_triples tool
type MatchTriplesResult struct {
	Triples []Triple `json:"triples"`
}

// HealthArgs represents the arguments for the health tool (no args)
type HealthArgs struct{}

// HealthResult is the structured output of the health tool
type HealthResult struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	Backend   string `json:"backend"`
	Triples   int    `json:"triples"`
	Entities  int    `json:"entities"`
	Relations int    `json:"relations"`
	Movies    int    `json:"movies"`
	Votes     int    `json:"votes"`
	Embedding bool   `json:"embedding"`
}
