package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fulmenhq/gofulmen/schema"
	"github.com/go-chi/chi/v5"

	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/core/store"
	apperrors "github.com/claimlens/claimlens/internal/errors"
)

// MaxRequestBytes bounds the analyze request body.
const MaxRequestBytes = 64 << 10

//go:embed schemas/analyze-request.schema.json
var analyzeRequestSchema []byte

// AnalysisService is the part of the engine the API needs.
type AnalysisService interface {
	Analyze(ctx context.Context, req engine.Request) (*engine.Outcome, error)
	History(ctx context.Context, limit int) ([]engine.Outcome, error)
	Get(ctx context.Context, id string) (*engine.Outcome, error)
}

// AnalyzeRequest is the POST /v1/analyze body.
type AnalyzeRequest struct {
	Claim    string `json:"claim"`
	Prompt   string `json:"prompt,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	NoCache  bool   `json:"no_cache,omitempty"`
}

// HistoryResponse lists stored analyses, newest first.
type HistoryResponse struct {
	Analyses []engine.Outcome `json:"analyses"`
	Count    int              `json:"count"`
}

// AnalysisHandlers serves the analysis endpoints.
type AnalysisHandlers struct {
	Service AnalysisService
}

// Analyze handles POST /v1/analyze.
func (h *AnalysisHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.Service == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("analysis service not configured"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBytes+1))
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(ctx, apperrors.CodeInvalidInput, err, "unable to read request body"))
		return
	}
	if len(body) > MaxRequestBytes {
		respondWithError(w, r, apperrors.Wrap(ctx, apperrors.CodeInvalidInput, nil,
			fmt.Sprintf("request body exceeds %d bytes", MaxRequestBytes)))
		return
	}

	req, err := decodeAnalyzeRequest(body)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(ctx, apperrors.CodeInvalidInput, nil, err.Error()))
		return
	}

	outcome, err := h.Service.Analyze(ctx, engine.Request{
		Claim:      req.Claim,
		PromptSlug: req.Prompt,
		Provider:   req.Provider,
		Model:      req.Model,
		NoCache:    req.NoCache,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// decodeAnalyzeRequest validates body against the request schema before
// decoding it.
func decodeAnalyzeRequest(body []byte) (*AnalyzeRequest, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("request body is required")
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}

	v, err := schema.NewValidator(analyzeRequestSchema)
	if err != nil {
		return nil, fmt.Errorf("request schema unavailable: %w", err)
	}
	diagnostics, err := v.ValidateJSON(body)
	if err != nil {
		return nil, fmt.Errorf("validate request: %w", err)
	}
	if len(diagnostics) > 0 {
		return nil, fmt.Errorf("invalid request: %s", diagnostics[0].Message)
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

// History handles GET /v1/analyses.
func (h *AnalysisHandlers) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.Service == nil {
		respondWithError(w, r, engine.ErrHistoryDisabled)
		return
	}

	limit := store.DefaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, r, apperrors.Wrap(ctx, apperrors.CodeInvalidInput, nil, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	outcomes, err := h.Service.History(ctx, limit)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if outcomes == nil {
		outcomes = []engine.Outcome{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Analyses: outcomes, Count: len(outcomes)})
}

// Get handles GET /v1/analyses/{id}.
func (h *AnalysisHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.Service == nil {
		respondWithError(w, r, engine.ErrHistoryDisabled)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondWithError(w, r, apperrors.Wrap(ctx, apperrors.CodeInvalidInput, nil, "analysis id is required"))
		return
	}

	outcome, err := h.Service.Get(ctx, id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
