package crowd

import (
	"errors"
	"math"

	"github.com/YorHaaa/ATAI/internal/apptype"
)

// ErrAgreementUndefined is returned when the agreement statistic would divide by zero.
var ErrAgreementUndefined = errors.New("agreement not computable")

// FleissKappa computes Fleiss' kappa over a batch of binary votes, rounded
// to three decimals. Each question contributes its observed pairwise
// agreement; chance agreement comes from the batch-wide label split.
// Votes with a label other than CORRECT or INCORRECT are ignored.
func FleissKappa(votes []apptype.CrowdVote) (float64, error) {
	type tally struct{ pos, neg int }
	var order []string
	perQuestion := make(map[string]*tally)
	totalPos, totalNeg := 0, 0

	for _, v := range votes {
		var isPos bool
		switch v.Label {
		case apptype.VoteCorrect:
			isPos = true
		case apptype.VoteIncorrect:
		default:
			continue
		}
		t, ok := perQuestion[v.QuestionID]
		if !ok {
			t = &tally{}
			perQuestion[v.QuestionID] = t
			order = append(order, v.QuestionID)
		}
		if isPos {
			t.pos++
			totalPos++
		} else {
			t.neg++
			totalNeg++
		}
	}
	if len(order) == 0 {
		return 0, ErrAgreementUndefined
	}

	var po float64
	for _, q := range order {
		t := perQuestion[q]
		n := t.pos + t.neg
		if n <= 1 {
			return 0, ErrAgreementUndefined
		}
		po += float64(t.pos*(t.pos-1)+t.neg*(t.neg-1)) / float64(n*(n-1))
	}
	po /= float64(len(order))

	total := float64(totalPos + totalNeg)
	pPos, pNeg := float64(totalPos)/total, float64(totalNeg)/total
	pe := pPos*pPos + pNeg*pNeg
	if pe == 1 {
		return 0, ErrAgreementUndefined
	}
	return round3((po - pe) / (1 - pe)), nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
