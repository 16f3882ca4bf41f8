// Package goalseek inverse-solves a project input against a target return:
// find x such that the pre-tax full-investment IRR of the project with the
// solvable field set to x equals the target.
//
// Every evaluation of the objective rebuilds a full cash-flow table, an
// expensive but side-effect-free operation, so the solver stays agnostic to
// what it solves for as long as the field is monotonic in IRR (which each
// registered field is; see params).
package goalseek

import (
	"fmt"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/tariff"
)

// Options tune the bracketed bisection. Zero values take the defaults.
type Options struct {
	BracketLo     float64 // default a tenth of the field's current value
	BracketHi     float64 // default 10 x the field's current value
	TolerancePct  float64 // absolute tolerance on IRR percentage points, default 1e-4
	MaxIterations int     // default 200
	MaxExpansions int     // bracket-widening attempts before giving up, default 8
}

func (o *Options) withDefaults(guess float64) Options {
	// Default bracket [guess/10, 10*guess] scales with the field, so it
	// works for a per-kWh price and a total investment alike.
	out := Options{BracketLo: guess / 10, BracketHi: 10 * guess, TolerancePct: 1e-4, MaxIterations: 200, MaxExpansions: 8}
	if o == nil {
		return out
	}
	if o.BracketLo > 0 {
		out.BracketLo = o.BracketLo
	}
	if o.BracketHi > 0 {
		out.BracketHi = o.BracketHi
	}
	if o.TolerancePct > 0 {
		out.TolerancePct = o.TolerancePct
	}
	if o.MaxIterations > 0 {
		out.MaxIterations = o.MaxIterations
	}
	if o.MaxExpansions > 0 {
		out.MaxExpansions = o.MaxExpansions
	}
	return out
}

// Result is the solved field value and the IRR it achieves.
type Result struct {
	Field          string  `json:"field"`
	Value          float64 `json:"value"`
	AchievedIRRPct float64 `json:"achieved_irr_pct"`
	Evaluations    int     `json:"evaluations"`
}

// Solve finds the field value at which the project's pre-tax full-investment
// IRR equals targetIRRPct (a percentage, e.g. 8.0). The bracket is validated
// to contain a sign change before bisection; if it does not, the upper bound
// is expanded geometrically a bounded number of times, after which the
// solver fails with metrics.ErrNoConvergence.
func Solve(targetIRRPct float64, p params.ProjectParameters, trf tariff.Tariff, field string, opts *Options) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	guess, err := currentValue(p, field)
	if err != nil {
		return Result{}, err
	}
	o := opts.withDefaults(guess)

	evals := 0
	objective := func(x float64) (float64, error) {
		evals++
		probe, err := p.With(field, x)
		if err != nil {
			return 0, err
		}
		table, err := cashflow.Calculate(probe, trf)
		if err != nil {
			return 0, fmt.Errorf("objective at %s=%v: %w", field, x, err)
		}
		irr, err := metrics.IRR(table.ProjectPreTax())
		if err != nil {
			return 0, fmt.Errorf("objective at %s=%v: %w", field, x, err)
		}
		return irr*100 - targetIRRPct, nil
	}

	lo, hi := o.BracketLo, o.BracketHi
	fLo, err := objective(lo)
	if err != nil {
		return Result{}, err
	}
	fHi, err := objective(hi)
	if err != nil {
		return Result{}, err
	}

	// Widen the bracket until it straddles the root.
	for n := 0; fLo*fHi > 0; n++ {
		if n >= o.MaxExpansions {
			return Result{}, fmt.Errorf("goalseek %s: no sign change in [%v, %v] after %d expansions: %w",
				field, o.BracketLo, hi, n, metrics.ErrNoConvergence)
		}
		hi *= 2
		if fHi, err = objective(hi); err != nil {
			return Result{}, err
		}
	}

	for i := 0; i < o.MaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid, err := objective(mid)
		if err != nil {
			return Result{}, err
		}
		if abs(fMid) < o.TolerancePct {
			return Result{Field: field, Value: mid, AchievedIRRPct: targetIRRPct + fMid, Evaluations: evals}, nil
		}
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return Result{}, fmt.Errorf("goalseek %s: iteration budget exhausted: %w", field, metrics.ErrNoConvergence)
}

func currentValue(p params.ProjectParameters, field string) (float64, error) {
	switch field {
	case params.FieldStaticInvest:
		return p.StaticInvest, nil
	case params.FieldPriceTaxInc:
		return p.PriceTaxInc, nil
	case params.FieldHours:
		return p.Hours, nil
	}
	return 0, &params.InvalidParameterError{Field: field, Reason: "not a solvable field"}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
