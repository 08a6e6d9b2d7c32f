package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/metrics"
	"github.com/YorHaaa/ATAI/internal/server"
	"github.com/YorHaaa/ATAI/pkg/kgqa"
)

// AnswerRequest is the body of POST /api/v1/answer. Mentions may be empty
// and are resolved best effort.
type AnswerRequest struct {
	Entity      string `json:"entity"`
	Relation    string `json:"relation"`
	SkipCrowd   bool   `json:"skipCrowd"`
	FactualOnly bool   `json:"factualOnly"`
}

// ConsensusRequest is the body of POST /api/v1/consensus.
type ConsensusRequest struct {
	Entity   string `json:"entity" validate:"required"`
	Relation string `json:"relation"`
}

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Movies []string `json:"movies" validate:"required,min=1,dive,required"`
	TopK   int      `json:"topK" validate:"gte=0,lte=100"`
}

// ResolveRequest holds the query parameters of GET /api/v1/resolve. At
// least one mention must be given.
type ResolveRequest struct {
	Entity   string `json:"entity" validate:"required_without=Relation"`
	Relation string `json:"relation"`
}

// Handler serves the REST API over a kgqa.Service.
type Handler struct {
	svc *kgqa.Service
}

// NewHandler creates a Handler.
func NewHandler(svc *kgqa.Service) *Handler {
	return &Handler{svc: svc}
}

// Answer handles POST /api/v1/answer.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	done := metrics.TimeTool("http_answer")
	success := false
	defer func() { done(success) }()
	start := time.Now()

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ans, err := h.svc.Ask(r.Context(), req.Entity, req.Relation, kgqa.AskOptions{
		SkipCrowd:   req.SkipCrowd,
		FactualOnly: req.FactualOnly,
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "ANSWER_ERROR", "Failed to answer question", err)
		return
	}
	success = true
	respondData(w, r, ans, start)
}

// Consensus handles POST /api/v1/consensus.
func (h *Handler) Consensus(w http.ResponseWriter, r *http.Request) {
	done := metrics.TimeTool("http_consensus")
	success := false
	defer func() { done(success) }()
	start := time.Now()

	var req ConsensusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.Consensus(r.Context(), req.Entity, req.Relation)
	switch {
	case kgqa.IsNoVotes(err):
		success = true
		respondError(w, r, http.StatusNotFound, "NO_VOTES", "No crowd votes for this question", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "CONSENSUS_ERROR", "Failed to compute consensus", err)
		return
	}
	success = true
	respondData(w, r, res, start)
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	done := metrics.TimeTool("http_recommend")
	success := false
	defer func() { done(success) }()
	start := time.Now()

	var req RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	movies, err := h.svc.Recommend(req.Movies, req.TopK)
	switch {
	case errors.Is(err, kgqa.ErrEmptyCatalog):
		respondError(w, r, http.StatusServiceUnavailable, "EMPTY_CATALOG", "No movies are loaded", err)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}
	success = true
	respondData(w, r, apptype.RecommendResult{Movies: movies}, start)
}

// Resolve handles GET /api/v1/resolve?entity=...&relation=...
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	done := metrics.TimeTool("http_resolve")
	success := false
	defer func() { done(success) }()
	start := time.Now()

	q := r.URL.Query()
	req := ResolveRequest{Entity: q.Get("entity"), Relation: q.Get("relation")}
	if !validateRequest(w, r, &req) {
		return
	}
	success = true
	respondData(w, r, h.svc.Resolve(req.Entity, req.Relation), start)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := server.Health(r.Context(), h.svc)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNHEALTHY", "Failed to collect stats", err)
		return
	}
	respondData(w, r, res, start)
}
