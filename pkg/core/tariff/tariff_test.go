package tariff

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOMRateBrackets(t *testing.T) {
	trf := Default()

	cases := []struct {
		opYear int
		want   float64
	}{
		{1, 10.0}, {5, 10.0},
		{6, 18.0}, {10, 18.0},
		{11, 28.0}, {20, 28.0},
		{21, 32.0}, {25, 32.0},
	}
	for _, tc := range cases {
		if got := trf.OMRate(tc.opYear); got != tc.want {
			t.Errorf("OMRate(%d) = %v, want %v", tc.opYear, got, tc.want)
		}
	}
}

func TestValidateRejectsBadBrackets(t *testing.T) {
	trf := Default()
	trf.OMBrackets = []OMBracket{
		{ThroughYear: 10, RatePerKW: 18},
		{ThroughYear: 5, RatePerKW: 10}, // not increasing
	}
	if err := trf.Validate(); err == nil {
		t.Error("expected error for non-increasing brackets")
	}

	trf = Default()
	trf.OMBrackets = nil
	if err := trf.Validate(); err == nil {
		t.Error("expected error for empty bracket table")
	}

	trf = Default()
	trf.VATRate = 1.0
	if err := trf.Validate(); err == nil {
		t.Error("expected error for vat_rate out of range")
	}
}

func TestLoadFile(t *testing.T) {
	content := `{
  // jurisdictional override with a flatter O&M curve
  vat_rate: 0.13
  surtax_rate: 0.10
  income_tax_rate: 0.25
  holiday: { exempt_years: 3, half_years: 3 }
  om_brackets: [
    { through_year: 10, rate_per_kw: 12.0 }
    { through_year: 0, rate_per_kw: 24.0 }
  ]
  other_cost_ratio: 0.005
  working_capital_per_mw: 3.0
  depreciation_years: 20
  residual_ratio: 0.05
  max_loan_term_years: 15
  operation_years: 25
}`
	path := filepath.Join(t.TempDir(), "tariff.hjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	trf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := trf.OMRate(10); got != 12.0 {
		t.Errorf("OMRate(10) = %v, want 12.0", got)
	}
	if got := trf.OMRate(11); got != 24.0 {
		t.Errorf("OMRate(11) = %v, want 24.0", got)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariff.hjson")
	if err := os.WriteFile(path, []byte(`{ vat_rate: 2.0 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected validation error for vat_rate 2.0")
	}
}
