// Package sensitivity sweeps a solvable input across a symmetric variation
// range and records the resulting IRR figures per step.
package sensitivity

import (
	"fmt"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/tariff"
)

// Point is one step of the sweep.
type Point struct {
	Delta         float64 `json:"delta"` // relative change, e.g. -0.15
	Value         float64 `json:"value"`
	IRRPreTaxPct  float64 `json:"irr_pre_tax_pct"`
	IRRPostTaxPct float64 `json:"irr_post_tax_pct"`
}

// Analyze varies the field by +/- span over steps evenly spaced points
// (steps >= 2; an odd count passes through the base case) and recomputes the
// project IRRs at each point. Any failed evaluation aborts the sweep.
func Analyze(p params.ProjectParameters, trf tariff.Tariff, field string, span float64, steps int) ([]Point, error) {
	if steps < 2 {
		return nil, &params.InvalidParameterError{Field: "steps", Reason: "must be >= 2"}
	}
	if span <= 0 {
		return nil, &params.InvalidParameterError{Field: "span", Reason: "must be > 0"}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	base, err := baseValue(p, field)
	if err != nil {
		return nil, err
	}

	out := make([]Point, 0, steps)
	for i := 0; i < steps; i++ {
		delta := -span + 2*span*float64(i)/float64(steps-1)
		value := base * (1 + delta)

		probe, err := p.With(field, value)
		if err != nil {
			return nil, err
		}
		table, err := cashflow.Calculate(probe, trf)
		if err != nil {
			return nil, fmt.Errorf("sensitivity %s at %+.0f%%: %w", field, delta*100, err)
		}
		irrPre, err := metrics.IRR(table.ProjectPreTax())
		if err != nil {
			return nil, fmt.Errorf("sensitivity %s at %+.0f%%: %w", field, delta*100, err)
		}
		irrPost, err := metrics.IRR(table.ProjectPostTax())
		if err != nil {
			return nil, fmt.Errorf("sensitivity %s at %+.0f%%: %w", field, delta*100, err)
		}

		out = append(out, Point{
			Delta:         delta,
			Value:         value,
			IRRPreTaxPct:  irrPre * 100,
			IRRPostTaxPct: irrPost * 100,
		})
	}
	return out, nil
}

func baseValue(p params.ProjectParameters, field string) (float64, error) {
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
