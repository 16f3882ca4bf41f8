// Package tax implements the stateful year-by-year tax engine: the VAT
// input-credit pool and the "three exempt, three half" income-tax holiday.
//
// The engine is an explicit state machine. Each operating year is fed once,
// in increasing order, through ProcessYear; the carried state (credit pool,
// loss carryforward, holiday clock) lives inside Engine and nowhere else.
package tax

import (
	"fmt"

	"pv_eval/pkg/core/tariff"
)

// StateError reports misuse of the stateful engine, e.g. feeding years out
// of order. Tax state is cumulative, so this is always fatal.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string {
	return "tax state error: " + e.Msg
}

// YearInput is one operating year's figures, all ex-VAT except OutputVAT.
type YearInput struct {
	Year          int // 1-based operating year
	Revenue       float64
	OperatingCost float64
	Interest      float64
	Depreciation  float64
	OutputVAT     float64
}

// YearResult is what the cash-flow engine consumes for the year.
type YearResult struct {
	VATPayable    float64
	Surtax        float64
	TaxableProfit float64 // after loss carryforward
	IncomeTax     float64
	CreditPool    float64 // pool balance after the year
	// HolidayYear is the position in the relief clock (1-based), 0 while
	// the clock has not started.
	HolidayYear int
}

// Engine carries tax state across the operating years of one evaluation.
// It must not be shared between concurrent evaluations.
type Engine struct {
	incomeTaxRate float64
	surtaxRate    float64
	holiday       tariff.HolidaySchedule

	pool        float64 // VAT input-credit balance, never negative
	lossCarry   float64 // accumulated deductible losses, no expiry
	firstProfit int     // year the holiday clock started, 0 = not yet
	lastYear    int
	cumDep      float64
}

// NewEngine seeds the engine with the deductible input VAT credit.
func NewEngine(t tariff.Tariff, initialCredit float64) *Engine {
	return &Engine{
		incomeTaxRate: t.IncomeTaxRate,
		surtaxRate:    t.SurtaxRate,
		holiday:       t.Holiday,
		pool:          initialCredit,
	}
}

// ProcessYear advances the engine by one operating year and returns that
// year's VAT payable, surtax and income tax.
func (e *Engine) ProcessYear(in YearInput) (YearResult, error) {
	if in.Year <= e.lastYear {
		return YearResult{}, &StateError{Msg: fmt.Sprintf("year %d processed after year %d", in.Year, e.lastYear)}
	}
	if in.OutputVAT < 0 {
		return YearResult{}, &StateError{Msg: fmt.Sprintf("negative output VAT %v in year %d", in.OutputVAT, in.Year)}
	}
	e.lastYear = in.Year

	// VAT: consume the credit pool first, clamped at its balance.
	consumed := in.OutputVAT
	if consumed > e.pool {
		consumed = e.pool
	}
	e.pool -= consumed
	vatPayable := in.OutputVAT - consumed
	surtax := vatPayable * e.surtaxRate

	// Income tax. The surtax is a period cost and reduces taxable profit.
	profit := in.Revenue - in.OperatingCost - surtax - in.Depreciation - in.Interest
	taxable := profit
	if taxable < 0 {
		e.lossCarry += -taxable
		taxable = 0
	} else if e.lossCarry > 0 {
		offset := e.lossCarry
		if offset > taxable {
			offset = taxable
		}
		taxable -= offset
		e.lossCarry -= offset
	}

	// The holiday clock starts exactly once, at first profitability, and
	// keeps running through later loss years.
	if e.firstProfit == 0 && taxable > 0 {
		e.firstProfit = in.Year
	}

	rate := 0.0
	holidayYear := 0
	if e.firstProfit > 0 {
		holidayYear = in.Year - e.firstProfit + 1
		switch {
		case holidayYear <= e.holiday.ExemptYears:
			rate = 0
		case holidayYear <= e.holiday.ExemptYears+e.holiday.HalfYears:
			rate = e.incomeTaxRate / 2
		default:
			rate = e.incomeTaxRate
		}
	}

	e.cumDep += in.Depreciation

	return YearResult{
		VATPayable:    vatPayable,
		Surtax:        surtax,
		TaxableProfit: taxable,
		IncomeTax:     taxable * rate,
		CreditPool:    e.pool,
		HolidayYear:   holidayYear,
	}, nil
}

// CreditPool returns the current VAT input-credit balance.
func (e *Engine) CreditPool() float64 { return e.pool }

// CumulativeDepreciation returns the depreciation booked so far.
func (e *Engine) CumulativeDepreciation() float64 { return e.cumDep }
