package tax

import (
	"errors"
	"math"
	"testing"

	"pv_eval/pkg/core/tariff"
)

func testTariff() tariff.Tariff {
	trf := tariff.Default()
	trf.SurtaxRate = 0 // keep hand-computed profits simple
	return trf
}

func TestVATCreditPoolDrain(t *testing.T) {
	e := NewEngine(testTariff(), 100)

	// Output VAT 30/yr against a 100 credit pool: payable 0,0,0,20,30.
	wantPayable := []float64{0, 0, 0, 20, 30}
	wantPool := []float64{70, 40, 10, 0, 0}
	for y := 1; y <= 5; y++ {
		res, err := e.ProcessYear(YearInput{Year: y, OutputVAT: 30})
		if err != nil {
			t.Fatalf("year %d: %v", y, err)
		}
		if math.Abs(res.VATPayable-wantPayable[y-1]) > 1e-9 {
			t.Errorf("year %d payable = %v, want %v", y, res.VATPayable, wantPayable[y-1])
		}
		if math.Abs(res.CreditPool-wantPool[y-1]) > 1e-9 {
			t.Errorf("year %d pool = %v, want %v", y, res.CreditPool, wantPool[y-1])
		}
		if res.CreditPool < 0 {
			t.Fatalf("year %d: credit pool went negative", y)
		}
	}
}

func TestVATZeroCredit(t *testing.T) {
	// With no deductible input tax every year pays the full output VAT.
	e := NewEngine(testTariff(), 0)
	for y := 1; y <= 3; y++ {
		res, err := e.ProcessYear(YearInput{Year: y, OutputVAT: 42})
		if err != nil {
			t.Fatalf("year %d: %v", y, err)
		}
		if res.VATPayable != 42 {
			t.Errorf("year %d payable = %v, want 42", y, res.VATPayable)
		}
	}
}

func TestHolidayClockFromFirstProfit(t *testing.T) {
	e := NewEngine(testTariff(), 0)

	// Year 1 is a loss; the clock must not start and the loss carries
	// forward. Year 2 earns 150: 50 is absorbed by the carryforward, the
	// clock starts on the remaining 100.
	res, err := e.ProcessYear(YearInput{Year: 1, Revenue: 50, OperatingCost: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.IncomeTax != 0 || res.HolidayYear != 0 {
		t.Fatalf("loss year: tax %v holiday %d, want 0/0", res.IncomeTax, res.HolidayYear)
	}

	type step struct {
		year        int
		revenue     float64
		wantTaxable float64
		wantTax     float64
		wantHoliday int
	}
	steps := []step{
		{2, 250, 100, 0, 1},      // first profit, exempt
		{3, 200, 100, 0, 2},      // exempt
		{4, 200, 100, 0, 3},      // exempt
		{5, 200, 100, 12.5, 4},   // half of 25%
		{6, 200, 100, 12.5, 5},   // half
		{7, 200, 100, 12.5, 6},   // half
		{8, 200, 100, 25, 7},     // full statutory rate
		{9, 200, 100, 25, 8},
	}
	for _, s := range steps {
		res, err := e.ProcessYear(YearInput{Year: s.year, Revenue: s.revenue, OperatingCost: 100})
		if err != nil {
			t.Fatalf("year %d: %v", s.year, err)
		}
		if math.Abs(res.TaxableProfit-s.wantTaxable) > 1e-9 {
			t.Errorf("year %d taxable = %v, want %v", s.year, res.TaxableProfit, s.wantTaxable)
		}
		if math.Abs(res.IncomeTax-s.wantTax) > 1e-9 {
			t.Errorf("year %d tax = %v, want %v", s.year, res.IncomeTax, s.wantTax)
		}
		if res.HolidayYear != s.wantHoliday {
			t.Errorf("year %d holiday position = %d, want %d", s.year, res.HolidayYear, s.wantHoliday)
		}
	}
}

func TestHolidayClockContinuesThroughLossYear(t *testing.T) {
	e := NewEngine(testTariff(), 0)

	// Clock starts year 1. A loss in year 4 does not pause it: year 5 is
	// still position 5 (half rate), and the year-4 loss offsets year-5
	// profit first.
	if _, err := e.ProcessYear(YearInput{Year: 1, Revenue: 200, OperatingCost: 100}); err != nil {
		t.Fatal(err)
	}
	for y := 2; y <= 3; y++ {
		if _, err := e.ProcessYear(YearInput{Year: y, Revenue: 200, OperatingCost: 100}); err != nil {
			t.Fatal(err)
		}
	}
	res, err := e.ProcessYear(YearInput{Year: 4, Revenue: 60, OperatingCost: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.IncomeTax != 0 || res.HolidayYear != 4 {
		t.Fatalf("loss year 4: tax %v holiday %d, want 0/4", res.IncomeTax, res.HolidayYear)
	}

	res, err = e.ProcessYear(YearInput{Year: 5, Revenue: 200, OperatingCost: 100})
	if err != nil {
		t.Fatal(err)
	}
	// Profit 100 less 40 carryforward = 60 taxable at half rate.
	if math.Abs(res.TaxableProfit-60) > 1e-9 {
		t.Errorf("year 5 taxable = %v, want 60", res.TaxableProfit)
	}
	if math.Abs(res.IncomeTax-60*0.125) > 1e-9 {
		t.Errorf("year 5 tax = %v, want %v", res.IncomeTax, 60*0.125)
	}
	if res.HolidayYear != 5 {
		t.Errorf("year 5 holiday position = %d, want 5", res.HolidayYear)
	}
}

func TestOutOfOrderYearIsStateError(t *testing.T) {
	e := NewEngine(testTariff(), 0)
	if _, err := e.ProcessYear(YearInput{Year: 2}); err != nil {
		t.Fatalf("year 2: %v", err)
	}

	_, err := e.ProcessYear(YearInput{Year: 2})
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("repeated year: expected StateError, got %v", err)
	}

	_, err = e.ProcessYear(YearInput{Year: 1})
	if !errors.As(err, &se) {
		t.Fatalf("earlier year: expected StateError, got %v", err)
	}

	// The engine is still usable for the next valid year.
	if _, err := e.ProcessYear(YearInput{Year: 3}); err != nil {
		t.Fatalf("year 3 after misuse: %v", err)
	}
}

func TestSurtaxReducesTaxableProfit(t *testing.T) {
	trf := tariff.Default() // surtax 10%
	e := NewEngine(trf, 0)

	res, err := e.ProcessYear(YearInput{Year: 1, Revenue: 200, OperatingCost: 100, OutputVAT: 50})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Surtax-5) > 1e-9 {
		t.Errorf("surtax = %v, want 5", res.Surtax)
	}
	if math.Abs(res.TaxableProfit-95) > 1e-9 {
		t.Errorf("taxable = %v, want 95", res.TaxableProfit)
	}
}
