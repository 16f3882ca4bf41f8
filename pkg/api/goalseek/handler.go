// Package goalseek exposes the inverse solver over HTTP.
package goalseek

import (
	"encoding/json"
	"net/http"

	"pv_eval/pkg/api/evaluation"
	"pv_eval/pkg/core/goalseek"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/tariff"
)

// Handler holds the tariff the solver evaluates against.
type Handler struct {
	Tariff tariff.Tariff
}

// NewHandler creates a goal-seek handler.
func NewHandler(trf tariff.Tariff) *Handler {
	return &Handler{Tariff: trf}
}

type Request struct {
	TargetIRRPct float64                  `json:"target_irr_pct"`
	Field        string                   `json:"field"`
	Params       params.ProjectParameters `json:"params"`
	Options      *goalseek.Options        `json:"options,omitempty"`
}

// HandleSolve back-calculates the field value consistent with the target IRR.
func (h *Handler) HandleSolve(w http.ResponseWriter, r *http.Request) {
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

	field := req.Field
	if field == "" {
		field = params.FieldStaticInvest
	}

	res, err := goalseek.Solve(req.TargetIRRPct, req.Params, h.Tariff, field, req.Options)
	if err != nil {
		http.Error(w, err.Error(), evaluation.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
