// Package params defines the validated input set for one PV project
// evaluation. A ProjectParameters value is treated as immutable once
// Validate has accepted it; solver probes use With to derive variants.
package params

import (
	"fmt"
)

// InvalidParameterError names the offending field of a rejected input.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidParameterError{Field: field, Reason: reason}
}

// RevenueMode selects how operating revenue is formed.
type RevenueMode string

const (
	// ModeFullGrid sells all generation at the tax-inclusive grid price.
	ModeFullGrid RevenueMode = "full_grid"
	// ModeSelfConsumption blends a retail price for the self-used share
	// with a feed-in price for the surplus.
	ModeSelfConsumption RevenueMode = "self_consumption"
)

// DefaultConstructYears applies when ConstructYears is left unset.
const DefaultConstructYears = 1

// MaxConstructYears bounds the construction period.
const MaxConstructYears = 2

// ProjectParameters describes one PV generation project.
// Monetary amounts are in wan yuan, prices in yuan/kWh.
type ProjectParameters struct {
	CapacityMW   float64 `json:"capacity_mw"`
	StaticInvest float64 `json:"static_invest"`
	Hours        float64 `json:"hours"` // annual utilization hours
	LoanRate     float64 `json:"loan_rate"`
	CapitalRatio float64 `json:"capital_ratio"` // equity share of static investment

	Mode        RevenueMode `json:"mode,omitempty"`
	PriceTaxInc float64     `json:"price_tax_inc"` // full-grid tax-inclusive price

	// Self-consumption mode only.
	SelfUseRatio float64 `json:"self_consumption_ratio,omitempty"`
	RetailPrice  float64 `json:"retail_price,omitempty"`
	FeedinPrice  float64 `json:"feedin_price,omitempty"`

	// DeductibleTax is the input VAT available for credit. When nil it is
	// derived from the static investment at the configured VAT rate.
	DeductibleTax *float64 `json:"deductible_tax,omitempty"`

	// ConstructYears is the construction period length. Nil means
	// DefaultConstructYears; an explicit 0 skips the construction rows
	// and charges the outlay at the first operating year.
	ConstructYears *int `json:"construct_years,omitempty"`
}

// Validate checks every constraint of the data model and reports the first
// violation as an *InvalidParameterError.
func (p ProjectParameters) Validate() error {
	if p.CapacityMW <= 0 {
		return invalid("capacity_mw", "must be > 0")
	}
	if p.StaticInvest <= 0 {
		return invalid("static_invest", "must be > 0")
	}
	if p.Hours < 0 {
		return invalid("hours", "must be >= 0")
	}
	if p.LoanRate < 0 || p.LoanRate >= 1 {
		return invalid("loan_rate", "must be in [0, 1)")
	}
	if p.CapitalRatio <= 0 || p.CapitalRatio > 1 {
		return invalid("capital_ratio", "must be in (0, 1]")
	}
	if p.DeductibleTax != nil && *p.DeductibleTax < 0 {
		return invalid("deductible_tax", "must be >= 0")
	}
	if p.ConstructYears != nil && (*p.ConstructYears < 0 || *p.ConstructYears > MaxConstructYears) {
		return invalid("construct_years", fmt.Sprintf("must be in [0, %d]", MaxConstructYears))
	}

	switch p.EffectiveMode() {
	case ModeFullGrid:
		if p.PriceTaxInc <= 0 {
			return invalid("price_tax_inc", "must be > 0")
		}
	case ModeSelfConsumption:
		if p.SelfUseRatio < 0 || p.SelfUseRatio > 1 {
			return invalid("self_consumption_ratio", "must be in [0, 1]")
		}
		if p.RetailPrice <= 0 {
			return invalid("retail_price", "must be > 0")
		}
		if p.FeedinPrice <= 0 {
			return invalid("feedin_price", "must be > 0")
		}
	default:
		return invalid("mode", fmt.Sprintf("unknown revenue mode %q", p.Mode))
	}

	return nil
}

// EffectiveMode resolves the revenue mode, defaulting to full-grid.
func (p ProjectParameters) EffectiveMode() RevenueMode {
	if p.Mode == "" {
		return ModeFullGrid
	}
	return p.Mode
}

// EffectiveConstructYears resolves the construction period length.
func (p ProjectParameters) EffectiveConstructYears() int {
	if p.ConstructYears == nil {
		return DefaultConstructYears
	}
	return *p.ConstructYears
}

// EffectiveDeductibleTax resolves the input VAT credit. The fallback strips
// the VAT component out of the static investment: invest / (1+rate) * rate.
func (p ProjectParameters) EffectiveDeductibleTax(vatRate float64) float64 {
	if p.DeductibleTax != nil {
		return *p.DeductibleTax
	}
	return p.StaticInvest / (1 + vatRate) * vatRate
}

// EffectivePriceTaxInc is the blended tax-inclusive price per kWh under the
// selected revenue mode.
func (p ProjectParameters) EffectivePriceTaxInc() float64 {
	if p.EffectiveMode() == ModeSelfConsumption {
		return p.SelfUseRatio*p.RetailPrice + (1-p.SelfUseRatio)*p.FeedinPrice
	}
	return p.PriceTaxInc
}

// Solvable fields accepted by With. Each is monotonic in the pre-tax
// full-investment IRR: static_invest strictly decreasing, price_tax_inc and
// hours strictly increasing.
const (
	FieldStaticInvest = "static_invest"
	FieldPriceTaxInc  = "price_tax_inc"
	FieldHours        = "hours"
)

// With returns a copy of p with the named scalar field replaced. Unknown
// fields are an InvalidParameterError so solver misuse surfaces immediately.
func (p ProjectParameters) With(field string, value float64) (ProjectParameters, error) {
	out := p
	switch field {
	case FieldStaticInvest:
		out.StaticInvest = value
		// A derived deductible tax must track the new investment, an
		// explicit one stays fixed.
	case FieldPriceTaxInc:
		out.PriceTaxInc = value
	case FieldHours:
		out.Hours = value
	default:
		return p, invalid(field, "not a solvable field")
	}
	return out, nil
}
