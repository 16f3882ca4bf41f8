// Package metrics derives profitability figures from a completed cash-flow
// table: IRR, NPV and payback period. Everything here is a pure function of
// the table plus discount assumptions.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"pv_eval/pkg/core/cashflow"
)

// ErrNoConvergence is returned when a root-finder detects no sign change in
// its search interval or exhausts its iteration budget. It is never masked
// by a default value; silent wrong answers are worse than a loud failure.
var ErrNoConvergence = errors.New("no convergence")

// IRR search interval and budget. The series' first element is year 1.
const (
	irrLo        = -0.99
	irrHi        = 10.0
	irrTolerance = 1e-6
	irrMaxIter   = 200
)

// NPV discounts the series at the given rate. series[0] is the first table
// year and is taken at present value; later elements are discounted one
// year each.
func NPV(series []float64, rate float64) float64 {
	factor := 1.0
	sum := 0.0
	for _, c := range series {
		sum += c * factor
		factor /= 1 + rate
	}
	return sum
}

// IRR finds the discount rate at which the series' NPV is zero, by bisection
// over [-99%, 1000%]. A series without a sign change in that interval has no
// root and yields ErrNoConvergence.
func IRR(series []float64) (float64, error) {
	lo, hi := irrLo, irrHi
	fLo := NPV(series, lo)
	fHi := NPV(series, hi)
	if fLo*fHi > 0 {
		return 0, fmt.Errorf("irr: no sign change in [%v, %v]: %w", lo, hi, ErrNoConvergence)
	}

	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(series, mid)
		if math.Abs(fMid) < irrTolerance || hi-lo < irrTolerance {
			return mid, nil
		}
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return 0, fmt.Errorf("irr: iteration budget exhausted: %w", ErrNoConvergence)
}

// Payback returns the fractional year at which the cumulative series first
// turns non-negative, interpolating linearly within the crossing year.
// Years are counted from the start of the table (series[0] is year 1).
// recovered is false when the cumulative flow stays negative throughout.
func Payback(series []float64) (years float64, recovered bool) {
	cum := 0.0
	for i, c := range series {
		prev := cum
		cum += c
		if cum >= 0 {
			if i == 0 || c == 0 {
				return float64(i), true
			}
			return float64(i) + (-prev)/c, true
		}
	}
	return 0, false
}

// DiscountedPayback is Payback over the series discounted at rate.
func DiscountedPayback(series []float64, rate float64) (float64, bool) {
	discounted := make([]float64, len(series))
	factor := 1.0
	for i, c := range series {
		discounted[i] = c * factor
		factor /= 1 + rate
	}
	return Payback(discounted)
}

// Metrics is the derived, ephemeral result set. IRR figures are percentages,
// monetary figures share the investment's unit.
type Metrics struct {
	IRRPreTaxPct  float64 `json:"irr_pre_tax_pct"`
	IRRPostTaxPct float64 `json:"irr_post_tax_pct"`
	IRREquityPct  float64 `json:"irr_equity_pct"`

	StaticPayback    float64 `json:"static_payback_years"`
	StaticRecovered  bool    `json:"static_recovered"`
	DynamicPayback   float64 `json:"dynamic_payback_years"`
	DynamicRecovered bool    `json:"dynamic_recovered"`

	TotalInvestment float64 `json:"total_investment"`
	NPV             float64 `json:"npv"`
	DiscountRate    float64 `json:"discount_rate"`
}

// Compute derives the full metric set from a table at the given discount
// rate. Payback figures are on the post-tax full-investment series.
func Compute(t *cashflow.Table, discountRate float64) (Metrics, error) {
	pre := t.ProjectPreTax()
	post := t.ProjectPostTax()
	equity := t.Equity()

	irrPre, err := IRR(pre)
	if err != nil {
		return Metrics{}, fmt.Errorf("pre-tax series: %w", err)
	}
	irrPost, err := IRR(post)
	if err != nil {
		return Metrics{}, fmt.Errorf("post-tax series: %w", err)
	}
	irrEquity, err := IRR(equity)
	if err != nil {
		return Metrics{}, fmt.Errorf("equity series: %w", err)
	}

	m := Metrics{
		IRRPreTaxPct:    irrPre * 100,
		IRRPostTaxPct:   irrPost * 100,
		IRREquityPct:    irrEquity * 100,
		TotalInvestment: t.TotalInvestment,
		NPV:             NPV(pre, discountRate),
		DiscountRate:    discountRate,
	}
	m.StaticPayback, m.StaticRecovered = Payback(post)
	m.DynamicPayback, m.DynamicRecovered = DiscountedPayback(post, discountRate)
	return m, nil
}

// Named flattens the metrics into the name -> value mapping used by the
// report and API layers. Unrecovered paybacks are omitted.
func (m Metrics) Named() map[string]float64 {
	out := map[string]float64{
		"irr_pre_tax_pct":  m.IRRPreTaxPct,
		"irr_post_tax_pct": m.IRRPostTaxPct,
		"irr_equity_pct":   m.IRREquityPct,
		"total_investment": m.TotalInvestment,
		"npv":              m.NPV,
	}
	if m.StaticRecovered {
		out["static_payback_years"] = m.StaticPayback
	}
	if m.DynamicRecovered {
		out["dynamic_payback_years"] = m.DynamicPayback
	}
	return out
}
