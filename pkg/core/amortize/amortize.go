// Package amortize computes the debt side of the project: capitalized
// construction-period interest and the long-term equal-principal repayment
// schedule.
package amortize

import (
	"pv_eval/pkg/core/params"
)

// ConstructionResult describes the loan at the end of the construction
// period.
type ConstructionResult struct {
	// Interest is the capitalized construction-period interest.
	Interest float64
	// Principal is the long-term loan principal: the drawn base plus
	// capitalized interest.
	Principal float64
	// Draws is the cash drawn per construction year, excluding the
	// capitalized interest (which never moves as cash). Empty when the
	// construction period is zero years.
	Draws []float64
}

// Construction accrues interest on the drawn loan balance across the
// construction years. Funds are assumed drawn evenly, with each year's draw
// arriving at mid-year, so a year accrues (balance + draw/2) * rate; unpaid
// interest compounds into the balance for subsequent years.
//
// A zero-year construction period yields zero interest with the full base
// drawn at the first operating year.
func Construction(staticInvest, loanRate, capitalRatio float64, constructYears int) (ConstructionResult, error) {
	if loanRate < 0 || loanRate >= 1 {
		return ConstructionResult{}, &params.InvalidParameterError{Field: "loan_rate", Reason: "must be in [0, 1)"}
	}
	if capitalRatio <= 0 || capitalRatio > 1 {
		return ConstructionResult{}, &params.InvalidParameterError{Field: "capital_ratio", Reason: "must be in (0, 1]"}
	}
	if constructYears < 0 {
		return ConstructionResult{}, &params.InvalidParameterError{Field: "construct_years", Reason: "must be >= 0"}
	}

	base := staticInvest * (1 - capitalRatio)
	if constructYears == 0 {
		return ConstructionResult{Principal: base}, nil
	}

	draw := base / float64(constructYears)
	res := ConstructionResult{Draws: make([]float64, constructYears)}

	balance := 0.0
	for y := 0; y < constructYears; y++ {
		interest := (balance + draw/2) * loanRate
		res.Interest += interest
		res.Draws[y] = draw
		balance += draw + interest
	}
	res.Principal = base + res.Interest
	return res, nil
}

// Installment is one repayment year of the long-term loan.
type Installment struct {
	Year      int // 1-based operating year
	Principal float64
	Interest  float64
	Balance   float64 // remaining principal after the payment
}

// Schedule builds an equal-principal repayment plan: a constant principal
// slice per year with interest recomputed on the declining balance. It
// terminates as soon as the balance reaches zero.
func Schedule(principal, loanRate float64, termYears int) []Installment {
	if principal <= 0 || termYears <= 0 {
		return nil
	}

	slice := principal / float64(termYears)
	out := make([]Installment, 0, termYears)

	balance := principal
	for y := 1; balance > 0; y++ {
		pay := slice
		if pay > balance {
			pay = balance
		}
		interest := balance * loanRate
		balance -= pay
		out = append(out, Installment{Year: y, Principal: pay, Interest: interest, Balance: balance})
	}
	return out
}
