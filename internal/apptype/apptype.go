package apptype

// TermKind distinguishes the three RDF term shapes.
type TermKind int

const (
	TermIRI TermKind = iota
	TermLiteral
	TermBlank
)

// Term is a node in the knowledge graph: an IRI, a literal or a blank node.
type Term struct {
	Kind     TermKind `json:"kind"`
	Value    string   `json:"value"`
	Lang     string   `json:"lang,omitempty"`
	Datatype string   `json:"datatype,omitempty"`
}

// IRI builds an IRI term.
func IRI(v string) Term { return Term{Kind: TermIRI, Value: v} }

// Literal builds a plain or language-tagged literal term.
func Literal(v, lang string) Term { return Term{Kind: TermLiteral, Value: v, Lang: lang} }

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == TermIRI }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == TermLiteral }

// Triple is a (subject, predicate, object) fact.
type Triple struct {
	Subject   Term `json:"subject"`
	Predicate Term `json:"predicate"`
	Object    Term `json:"object"`
}

// ResolvedQuery is the pair of graph identifiers a question was resolved to.
type ResolvedQuery struct {
	EntityID   string `json:"entityId"`
	RelationID string `json:"relationId"`
}

// Vote labels used by crowd workers.
const (
	VoteCorrect   = "CORRECT"
	VoteIncorrect = "INCORRECT"
)

// CrowdVote is one crowd worker judgement of a (subject, predicate, answer) statement.
type CrowdVote struct {
	BatchID    string `json:"batchId"`
	QuestionID string `json:"questionId"`
	WorkerID   string `json:"workerId,omitempty"`
	Subject    string `json:"subject"`
	Predicate  string `json:"predicate"`
	Answer     string `json:"answer"`
	Label      string `json:"label"`
}

// ConsensusResult summarises the crowd votes for a question.
// Agreement is nil when the statistic is not computable for the batch.
type ConsensusResult struct {
	Agreement  *float64 `json:"agreement,omitempty"`
	Support    int      `json:"support"`
	Reject     int      `json:"reject"`
	Answer     string   `json:"answer"`
	BatchID    string   `json:"batchId"`
	EntityOnly bool     `json:"entityOnly"`
}

// AnswerSource names the path that produced an answer.
type AnswerSource string

const (
	SourceCrowd     AnswerSource = "crowd"
	SourceFactual   AnswerSource = "factual"
	SourceEmbedding AnswerSource = "embedding"
	SourceNone      AnswerSource = "none"
)

// Answer is the outcome of answering one resolved question.
type Answer struct {
	Query     ResolvedQuery    `json:"query"`
	Source    AnswerSource     `json:"source"`
	Values    []string         `json:"values"`
	Consensus *ConsensusResult `json:"consensus,omitempty"`
}
