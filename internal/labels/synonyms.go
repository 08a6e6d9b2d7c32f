package labels

// DefaultRelationSynonyms maps a relation label to the words people use for it.
var DefaultRelationSynonyms = map[string][]string{
	"cast member":             {"actor", "actress", "cast"},
	"genre":                   {"type", "kind"},
	"publication date":        {"release", "date", "airdate", "publication", "launch", "broadcast", "released", "launched"},
	"executive producer":      {"showrunner"},
	"screenwriter":            {"scriptwriter", "screenplay", "teleplay", "writer", "script", "scenarist", "story"},
	"director of photography": {"cinematographer", "DOP", "dop"},
	"film editor":             {"editor"},
	"production designer":     {"designer"},
	"box office":              {"box", "office", "funding"},
	"cost":                    {"budget", "cost"},
	"nominated for":           {"nomination", "award", "finalist", "shortlist", "selection"},
	"costume designer":        {"costume"},
	"official website":        {"website", "site"},
	"filming location":        {"flocation"},
	"narrative website":       {"nlocation"},
	"production company":      {"company"},
	"country of origin":       {"origin", "country"},
	"director":                {"directed", "directs"},
	"IMDb ID":                 {"IMDb", "IMDB", "imdb"},
}

// Synonyms rewrites a relation mention to the canonical label it stands for.
// Words are matched exactly and case-sensitively.
type Synonyms map[string]string

// NewSynonyms inverts a label to words table. When a word is listed under
// several labels the alphabetically last label wins, so the result does not
// depend on map iteration order.
func NewSynonyms(table map[string][]string) Synonyms {
	out := make(Synonyms)
	for label, words := range table {
		for _, w := range words {
			if prev, ok := out[w]; !ok || label > prev {
				out[w] = label
			}
		}
	}
	return out
}

// Canonical returns the label word stands for.
func (s Synonyms) Canonical(word string) (string, bool) {
	label, ok := s[word]
	return label, ok
}
