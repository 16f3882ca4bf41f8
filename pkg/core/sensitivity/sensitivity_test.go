package sensitivity

import (
	"math"
	"testing"

	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/tariff"
)

func referenceParams() params.ProjectParameters {
	deductible := 4000.0
	return params.ProjectParameters{
		CapacityMW:    100.0,
		StaticInvest:  40000.0,
		Hours:         1500,
		LoanRate:      0.04876,
		CapitalRatio:  0.20,
		PriceTaxInc:   0.40,
		DeductibleTax: &deductible,
	}
}

func TestAnalyzePriceSweep(t *testing.T) {
	points, err := Analyze(referenceParams(), tariff.Default(), params.FieldPriceTaxInc, 0.15, 5)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("point count = %d, want 5", len(points))
	}

	// Odd step count passes through the base case at delta 0.
	mid := points[2]
	if math.Abs(mid.Delta) > 1e-12 {
		t.Errorf("middle delta = %v, want 0", mid.Delta)
	}
	if math.Abs(mid.IRRPreTaxPct-11.38) > 0.05 {
		t.Errorf("base IRR = %.4f%%, want ~11.38", mid.IRRPreTaxPct)
	}

	// IRR is monotonically increasing in price.
	for i := 1; i < len(points); i++ {
		if points[i].IRRPreTaxPct <= points[i-1].IRRPreTaxPct {
			t.Errorf("IRR not increasing at step %d: %v -> %v", i, points[i-1].IRRPreTaxPct, points[i].IRRPreTaxPct)
		}
	}
}

func TestAnalyzeInvestmentSweepDecreasing(t *testing.T) {
	points, err := Analyze(referenceParams(), tariff.Default(), params.FieldStaticInvest, 0.15, 3)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 1; i < len(points); i++ {
		if points[i].IRRPreTaxPct >= points[i-1].IRRPreTaxPct {
			t.Errorf("IRR not decreasing at step %d", i)
		}
	}
}

func TestAnalyzeRejectsBadArguments(t *testing.T) {
	if _, err := Analyze(referenceParams(), tariff.Default(), params.FieldHours, 0.15, 1); err == nil {
		t.Error("expected error for steps < 2")
	}
	if _, err := Analyze(referenceParams(), tariff.Default(), params.FieldHours, 0, 5); err == nil {
		t.Error("expected error for zero span")
	}
	if _, err := Analyze(referenceParams(), tariff.Default(), "capacity_mw", 0.15, 5); err == nil {
		t.Error("expected error for non-solvable field")
	}
}
