// Package sensitivity exposes the sensitivity sweep over HTTP.
package sensitivity

import (
	"encoding/json"
	"net/http"

	"pv_eval/pkg/api/evaluation"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/sensitivity"
	"pv_eval/pkg/core/tariff"
)

// Handler holds the tariff the sweep evaluates against.
type Handler struct {
	Tariff tariff.Tariff
}

// NewHandler creates a sensitivity handler.
func NewHandler(trf tariff.Tariff) *Handler {
	return &Handler{Tariff: trf}
}

type Request struct {
	Field  string                   `json:"field"`
	Span   float64                  `json:"span"`  // e.g. 0.15 for +/-15%
	Steps  int                      `json:"steps"` // number of sweep points
	Params params.ProjectParameters `json:"params"`
}

type Response struct {
	Field  string              `json:"field"`
	Points []sensitivity.Point `json:"points"`
}

// HandleAnalyze sweeps one input across its variation range.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	// CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Field == "" {
		req.Field = params.FieldStaticInvest
	}
	if req.Span == 0 {
		req.Span = 0.15
	}
	if req.Steps == 0 {
		req.Steps = 5
	}

	points, err := sensitivity.Analyze(req.Params, h.Tariff, req.Field, req.Span, req.Steps)
	if err != nil {
		http.Error(w, err.Error(), evaluation.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Field: req.Field, Points: points})
}
