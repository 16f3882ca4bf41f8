// Package tariff carries the regulatory constants of the evaluation
// standard: tax rates, the tiered O&M fee table, depreciation and loan-term
// rules. They are data, not code, so a jurisdictional update is a config
// change; Default returns the published values.
package tariff

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// OMBracket maps a span of operating years to the annual O&M rate.
type OMBracket struct {
	// ThroughYear is the inclusive last operating year of the bracket;
	// 0 marks the open-ended final bracket.
	ThroughYear int     `json:"through_year"`
	RatePerKW   float64 `json:"rate_per_kw"` // yuan per kWp per year
}

// HolidaySchedule is the income-tax relief window granted from the first
// profitable year ("three exempt, three half").
type HolidaySchedule struct {
	ExemptYears int `json:"exempt_years"`
	HalfYears   int `json:"half_years"`
}

// Tariff is the full regulatory constant set.
type Tariff struct {
	VATRate       float64         `json:"vat_rate"`
	SurtaxRate    float64         `json:"surtax_rate"` // surcharge on VAT payable
	IncomeTaxRate float64         `json:"income_tax_rate"`
	Holiday       HolidaySchedule `json:"holiday"`

	OMBrackets     []OMBracket `json:"om_brackets"`
	OtherCostRatio float64     `json:"other_cost_ratio"` // misc annual cost, share of static investment

	WorkingCapitalPerMW float64 `json:"working_capital_per_mw"` // wan yuan / MW

	DepreciationYears int     `json:"depreciation_years"`
	ResidualRatio     float64 `json:"residual_ratio"` // residual value share, also recovered terminally

	MaxLoanTermYears int `json:"max_loan_term_years"`
	OperationYears   int `json:"operation_years"`
}

// Default returns the constants of the current standard.
func Default() Tariff {
	return Tariff{
		VATRate:       0.13,
		SurtaxRate:    0.10,
		IncomeTaxRate: 0.25,
		Holiday:       HolidaySchedule{ExemptYears: 3, HalfYears: 3},
		OMBrackets: []OMBracket{
			{ThroughYear: 5, RatePerKW: 10.0},
			{ThroughYear: 10, RatePerKW: 18.0},
			{ThroughYear: 20, RatePerKW: 28.0},
			{ThroughYear: 0, RatePerKW: 32.0},
		},
		OtherCostRatio:      0.005,
		WorkingCapitalPerMW: 3.0,
		DepreciationYears:   20,
		ResidualRatio:       0.05,
		MaxLoanTermYears:    15,
		OperationYears:      25,
	}
}

// OMRate returns the O&M rate (yuan/kWp) for a 1-based operating year.
func (t Tariff) OMRate(opYear int) float64 {
	for _, b := range t.OMBrackets {
		if b.ThroughYear == 0 || opYear <= b.ThroughYear {
			return b.RatePerKW
		}
	}
	// Bracket table exhausted without an open-ended entry; reuse the last.
	return t.OMBrackets[len(t.OMBrackets)-1].RatePerKW
}

// Validate checks internal consistency of a loaded tariff.
func (t Tariff) Validate() error {
	if t.VATRate < 0 || t.VATRate >= 1 {
		return fmt.Errorf("tariff: vat_rate %v out of range [0, 1)", t.VATRate)
	}
	if t.IncomeTaxRate < 0 || t.IncomeTaxRate >= 1 {
		return fmt.Errorf("tariff: income_tax_rate %v out of range [0, 1)", t.IncomeTaxRate)
	}
	if t.SurtaxRate < 0 {
		return fmt.Errorf("tariff: surtax_rate %v must be >= 0", t.SurtaxRate)
	}
	if len(t.OMBrackets) == 0 {
		return fmt.Errorf("tariff: om_brackets must not be empty")
	}
	prev := 0
	for i, b := range t.OMBrackets {
		if b.RatePerKW < 0 {
			return fmt.Errorf("tariff: om_brackets[%d] rate %v must be >= 0", i, b.RatePerKW)
		}
		if b.ThroughYear == 0 {
			if i != len(t.OMBrackets)-1 {
				return fmt.Errorf("tariff: open-ended om bracket must be last")
			}
			continue
		}
		if b.ThroughYear <= prev {
			return fmt.Errorf("tariff: om_brackets[%d] through_year %d not increasing", i, b.ThroughYear)
		}
		prev = b.ThroughYear
	}
	if t.DepreciationYears <= 0 {
		return fmt.Errorf("tariff: depreciation_years %d must be > 0", t.DepreciationYears)
	}
	if t.ResidualRatio < 0 || t.ResidualRatio >= 1 {
		return fmt.Errorf("tariff: residual_ratio %v out of range [0, 1)", t.ResidualRatio)
	}
	if t.MaxLoanTermYears <= 0 {
		return fmt.Errorf("tariff: max_loan_term_years %d must be > 0", t.MaxLoanTermYears)
	}
	if t.OperationYears <= 0 {
		return fmt.Errorf("tariff: operation_years %d must be > 0", t.OperationYears)
	}
	return nil
}

// LoadFile reads a tariff from an HJSON file and validates it.
func LoadFile(path string) (Tariff, error) {
	var t Tariff

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tariff file: %w", err)
	}
	if err := hjson.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tariff file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
