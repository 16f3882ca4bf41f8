package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pv_eval/pkg/core/cashflow"
)

var csvHeader = []string{
	"year", "operating_year", "generation_mwh",
	"revenue_tax_inc", "revenue_ex_vat", "output_vat",
	"om_cost", "depreciation",
	"loan_draw", "loan_interest", "loan_principal",
	"vat_payable", "surtax", "income_tax",
	"net_cash_pre_tax", "net_cash_post_tax", "net_cash_equity",
}

// WriteCSV streams the full cash-flow table, one row per year.
func WriteCSV(w io.Writer, t *cashflow.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows {
		rec := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.OperatingYear),
			f(r.Generation),
			f(r.RevenueTaxInc), f(r.Revenue), f(r.OutputVAT),
			f(r.OMCost), f(r.Depreciation),
			f(r.LoanDraw), f(r.LoanInterest), f(r.LoanPrincipal),
			f(r.VATPayable), f(r.Surtax), f(r.IncomeTax),
			f(r.NetCashPreTax), f(r.NetCashPostTax), f(r.NetCashEquity),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
