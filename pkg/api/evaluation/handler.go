// Package evaluation exposes the cash-flow engine and metrics calculator
// over HTTP.
package evaluation

import (
	"encoding/json"
	"errors"
	"net/http"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/store"
	"pv_eval/pkg/core/tariff"
)

// Handler holds the tariff the API evaluates against.
type Handler struct {
	Tariff tariff.Tariff
	Repo   *store.EvaluationRepo
}

// NewHandler creates an evaluation handler. repo may be nil when no database
// is configured; results are then computed but not persisted.
func NewHandler(trf tariff.Tariff, repo *store.EvaluationRepo) *Handler {
	return &Handler{Tariff: trf, Repo: repo}
}

type Request struct {
	Name         string                   `json:"name,omitempty"`
	Params       params.ProjectParameters `json:"params"`
	DiscountRate float64                  `json:"discount_rate"`
	Persist      bool                     `json:"persist,omitempty"`
}

type Response struct {
	Metrics metrics.Metrics    `json:"metrics"`
	Named   map[string]float64 `json:"named"`
	Table   *cashflow.Table    `json:"table"`
}

// HandleEvaluate computes the full cash-flow table and metrics for a project.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	// CORS headers for local dev
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

	table, err := cashflow.Calculate(req.Params, h.Tariff)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	m, err := metrics.Compute(table, req.DiscountRate)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}

	if req.Persist && h.Repo != nil {
		rec := &store.EvaluationRecord{Name: req.Name, Params: req.Params, Table: table, Metrics: m}
		if err := h.Repo.Save(r.Context(), rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Metrics: m, Named: m.Named(), Table: table})
}

// StatusFor maps the engine error taxonomy onto HTTP status codes:
// invalid input is the caller's fault, no-convergence is unprocessable,
// anything else is internal.
func StatusFor(err error) int {
	var invalid *params.InvalidParameterError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, metrics.ErrNoConvergence) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
