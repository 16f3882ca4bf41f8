// Package cashflow builds the full multi-year cash-flow table for a PV
// project: construction rows followed by the operating period, composing the
// amortization and tax engines with the revenue, O&M and working-capital
// rules of the standard.
package cashflow

import (
	"fmt"

	"pv_eval/pkg/core/amortize"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/tariff"
	"pv_eval/pkg/core/tax"
)

// Row is one construction or operating year. Rows are immutable once the
// table is computed.
type Row struct {
	Year          int `json:"year"`           // 1-based table index
	OperatingYear int `json:"operating_year"` // 0 during construction

	Generation    float64 `json:"generation_mwh"`
	RevenueTaxInc float64 `json:"revenue_tax_inc"`
	Revenue       float64 `json:"revenue_ex_vat"`
	OutputVAT     float64 `json:"output_vat"`

	OMCost       float64 `json:"om_cost"`
	Depreciation float64 `json:"depreciation"`

	LoanDraw      float64 `json:"loan_draw"`
	LoanInterest  float64 `json:"loan_interest"`
	LoanPrincipal float64 `json:"loan_principal"`

	VATPayable float64 `json:"vat_payable"`
	Surtax     float64 `json:"surtax"`
	IncomeTax  float64 `json:"income_tax"`

	NetCashPreTax  float64 `json:"net_cash_pre_tax"`
	NetCashPostTax float64 `json:"net_cash_post_tax"`
	NetCashEquity  float64 `json:"net_cash_equity"`
}

// Table is the engine's sole output artifact, consumed read-only by the
// metrics layer.
type Table struct {
	Rows []Row `json:"rows"`

	ConstructYears       int     `json:"construct_years"`
	ConstructionInterest float64 `json:"construction_interest"`
	LoanPrincipal        float64 `json:"loan_principal"`
	WorkingCapital       float64 `json:"working_capital"`
	TotalInvestment      float64 `json:"total_investment"`
}

// ProjectPreTax returns the full-investment pre-tax cash-flow series.
func (t *Table) ProjectPreTax() []float64 { return t.series(func(r Row) float64 { return r.NetCashPreTax }) }

// ProjectPostTax returns the full-investment post-tax cash-flow series.
func (t *Table) ProjectPostTax() []float64 {
	return t.series(func(r Row) float64 { return r.NetCashPostTax })
}

// Equity returns the capital-side cash-flow series, net of debt service.
func (t *Table) Equity() []float64 { return t.series(func(r Row) float64 { return r.NetCashEquity }) }

func (t *Table) series(pick func(Row) float64) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = pick(r)
	}
	return out
}

// Calculate builds the cash-flow table. It is deterministic: identical
// parameters yield identical tables, with no hidden global state.
func Calculate(p params.ProjectParameters, trf tariff.Tariff) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := trf.Validate(); err != nil {
		return nil, err
	}

	constructYears := p.EffectiveConstructYears()
	con, err := amortize.Construction(p.StaticInvest, p.LoanRate, p.CapitalRatio, constructYears)
	if err != nil {
		return nil, err
	}

	workingCapital := p.CapacityMW * trf.WorkingCapitalPerMW
	deductible := p.EffectiveDeductibleTax(trf.VATRate)

	// Straight-line depreciation net of the creditable input VAT.
	depBase := p.StaticInvest + con.Interest - deductible
	depPerYear := depBase * (1 - trf.ResidualRatio) / float64(trf.DepreciationYears)

	// Revenue is constant across the operating period: capacity x hours at
	// the (blended) tax-inclusive price, split into its ex-VAT part and
	// output VAT.
	generation := p.CapacityMW * p.Hours // MWh
	revenueTaxInc := generation * 1000 * p.EffectivePriceTaxInc() / 10000
	revenue := revenueTaxInc / (1 + trf.VATRate)
	outputVAT := revenueTaxInc - revenue

	termYears := trf.MaxLoanTermYears
	if trf.OperationYears < termYears {
		termYears = trf.OperationYears
	}
	schedule := amortize.Schedule(con.Principal, p.LoanRate, termYears)

	table := &Table{
		Rows:                 make([]Row, 0, constructYears+trf.OperationYears),
		ConstructYears:       constructYears,
		ConstructionInterest: con.Interest,
		LoanPrincipal:        con.Principal,
		WorkingCapital:       workingCapital,
		TotalInvestment:      p.StaticInvest + con.Interest + workingCapital,
	}

	// Construction rows: investment outlay only, no revenue. Working
	// capital goes out with the final construction year, just ahead of
	// operation.
	outlayPerYear := 0.0
	if constructYears > 0 {
		outlayPerYear = p.StaticInvest / float64(constructYears)
	}
	for y := 1; y <= constructYears; y++ {
		outlay := outlayPerYear
		if y == constructYears {
			outlay += workingCapital
		}
		row := Row{
			Year:           y,
			LoanDraw:       con.Draws[y-1],
			NetCashPreTax:  -outlay,
			NetCashPostTax: -outlay,
			NetCashEquity:  -outlay + con.Draws[y-1],
		}
		table.Rows = append(table.Rows, row)
	}

	engine := tax.NewEngine(trf, deductible)

	for opYear := 1; opYear <= trf.OperationYears; opYear++ {
		omCost := p.CapacityMW*1000*trf.OMRate(opYear)/10000 + p.StaticInvest*trf.OtherCostRatio

		dep := 0.0
		if opYear <= trf.DepreciationYears {
			dep = depPerYear
		}

		var interest, principal float64
		if opYear <= len(schedule) {
			interest = schedule[opYear-1].Interest
			principal = schedule[opYear-1].Principal
		}

		res, err := engine.ProcessYear(tax.YearInput{
			Year:          opYear,
			Revenue:       revenue,
			OperatingCost: omCost,
			Interest:      interest,
			Depreciation:  dep,
			OutputVAT:     outputVAT,
		})
		if err != nil {
			return nil, fmt.Errorf("operating year %d: %w", opYear, err)
		}

		preTax := revenue - omCost - res.Surtax

		var draw float64
		if constructYears == 0 && opYear == 1 {
			// Zero-year construction: the whole outlay and the full
			// loan draw land in the first operating year.
			preTax -= p.StaticInvest + workingCapital
			draw = con.Principal
		}
		if opYear == trf.OperationYears {
			// Terminal recovery: residual value plus working capital.
			preTax += p.StaticInvest*trf.ResidualRatio + workingCapital
		}

		postTax := preTax - res.IncomeTax

		table.Rows = append(table.Rows, Row{
			Year:           constructYears + opYear,
			OperatingYear:  opYear,
			Generation:     generation,
			RevenueTaxInc:  revenueTaxInc,
			Revenue:        revenue,
			OutputVAT:      outputVAT,
			OMCost:         omCost,
			Depreciation:   dep,
			LoanDraw:       draw,
			LoanInterest:   interest,
			LoanPrincipal:  principal,
			VATPayable:     res.VATPayable,
			Surtax:         res.Surtax,
			IncomeTax:      res.IncomeTax,
			NetCashPreTax:  preTax,
			NetCashPostTax: postTax,
			NetCashEquity:  postTax - principal - interest + draw,
		})
	}

	return table, nil
}
