package params

import (
	"errors"
	"math"
	"testing"
)

func validParams() ProjectParameters {
	return ProjectParameters{
		CapacityMW:   100,
		StaticInvest: 40000,
		Hours:        1500,
		LoanRate:     0.04876,
		CapitalRatio: 0.20,
		PriceTaxInc:  0.40,
	}
}

func TestValidateNamesOffendingField(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*ProjectParameters)
	}{
		{"capacity_mw", func(p *ProjectParameters) { p.CapacityMW = 0 }},
		{"static_invest", func(p *ProjectParameters) { p.StaticInvest = -1 }},
		{"hours", func(p *ProjectParameters) { p.Hours = -10 }},
		{"loan_rate", func(p *ProjectParameters) { p.LoanRate = 1.0 }},
		{"capital_ratio", func(p *ProjectParameters) { p.CapitalRatio = 0 }},
		{"capital_ratio", func(p *ProjectParameters) { p.CapitalRatio = 1.2 }},
		{"price_tax_inc", func(p *ProjectParameters) { p.PriceTaxInc = 0 }},
	}

	for _, tc := range cases {
		p := validParams()
		tc.mutate(&p)
		err := p.Validate()
		if err == nil {
			t.Errorf("expected validation error for %s", tc.field)
			continue
		}
		var ipe *InvalidParameterError
		if !errors.As(err, &ipe) {
			t.Errorf("expected InvalidParameterError, got %T", err)
			continue
		}
		if ipe.Field != tc.field {
			t.Errorf("expected field %q in error, got %q", tc.field, ipe.Field)
		}
	}
}

func TestValidateAcceptsZeroHours(t *testing.T) {
	// Hours = 0 is the zero-revenue boundary case, not an input error.
	p := validParams()
	p.Hours = 0
	if err := p.Validate(); err != nil {
		t.Fatalf("hours=0 should validate, got %v", err)
	}
}

func TestSelfConsumptionValidation(t *testing.T) {
	p := validParams()
	p.Mode = ModeSelfConsumption
	p.PriceTaxInc = 0 // unused in this mode
	p.SelfUseRatio = 0.85
	p.RetailPrice = 0.90
	p.FeedinPrice = 0.42

	if err := p.Validate(); err != nil {
		t.Fatalf("self-consumption params should validate, got %v", err)
	}

	// Blended price = 0.85*0.90 + 0.15*0.42
	want := 0.85*0.90 + 0.15*0.42
	if got := p.EffectivePriceTaxInc(); math.Abs(got-want) > 1e-12 {
		t.Errorf("blended price = %v, want %v", got, want)
	}

	p.RetailPrice = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for missing retail price")
	}
}

func TestEffectiveDeductibleTaxDefault(t *testing.T) {
	p := validParams()
	// 40000 / 1.13 * 0.13
	want := 40000.0 / 1.13 * 0.13
	if got := p.EffectiveDeductibleTax(0.13); math.Abs(got-want) > 1e-9 {
		t.Errorf("derived deductible = %v, want %v", got, want)
	}

	explicit := 4000.0
	p.DeductibleTax = &explicit
	if got := p.EffectiveDeductibleTax(0.13); got != 4000.0 {
		t.Errorf("explicit deductible = %v, want 4000", got)
	}
}

func TestWith(t *testing.T) {
	p := validParams()

	probe, err := p.With(FieldStaticInvest, 50000)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if probe.StaticInvest != 50000 {
		t.Errorf("probe static invest = %v, want 50000", probe.StaticInvest)
	}
	if p.StaticInvest != 40000 {
		t.Errorf("original mutated: %v", p.StaticInvest)
	}

	if _, err := p.With("loan_rate", 0.05); err == nil {
		t.Error("expected error for non-solvable field")
	}
}
