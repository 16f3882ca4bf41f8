// Package report renders an evaluation into the export formats owned by the
// collaborator layer: a markdown report and a CSV cash-flow table. The core
// engines never depend on this package.
package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
)

// Markdown builds the full evaluation report. The output is checked through
// goldmark's parser before being returned.
func Markdown(p params.ProjectParameters, table *cashflow.Table, m metrics.Metrics) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# PV Project Evaluation\n\n")

	fmt.Fprintf(&b, "## Project\n\n")
	fmt.Fprintf(&b, "| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Capacity | %.1f MW |\n", p.CapacityMW)
	fmt.Fprintf(&b, "| Static investment | %.2f |\n", p.StaticInvest)
	fmt.Fprintf(&b, "| Utilization hours | %.0f h |\n", p.Hours)
	fmt.Fprintf(&b, "| Revenue mode | %s |\n", p.EffectiveMode())
	fmt.Fprintf(&b, "| Tax-inclusive price | %.4f yuan/kWh |\n", p.EffectivePriceTaxInc())
	fmt.Fprintf(&b, "| Capital ratio | %.0f%% |\n", p.CapitalRatio*100)
	fmt.Fprintf(&b, "| Loan rate | %.4f%% |\n", p.LoanRate*100)
	fmt.Fprintf(&b, "| Construction period | %d y |\n\n", table.ConstructYears)

	fmt.Fprintf(&b, "## Key metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total investment | %.2f |\n", m.TotalInvestment)
	fmt.Fprintf(&b, "| Construction interest | %.2f |\n", table.ConstructionInterest)
	fmt.Fprintf(&b, "| IRR, full investment, pre-tax | %.2f%% |\n", m.IRRPreTaxPct)
	fmt.Fprintf(&b, "| IRR, full investment, post-tax | %.2f%% |\n", m.IRRPostTaxPct)
	fmt.Fprintf(&b, "| IRR, equity | %.2f%% |\n", m.IRREquityPct)
	fmt.Fprintf(&b, "| NPV @ %.1f%% | %.2f |\n", m.DiscountRate*100, m.NPV)
	if m.StaticRecovered {
		fmt.Fprintf(&b, "| Payback, static | %.2f y |\n", m.StaticPayback)
	} else {
		fmt.Fprintf(&b, "| Payback, static | not recovered |\n")
	}
	if m.DynamicRecovered {
		fmt.Fprintf(&b, "| Payback, dynamic | %.2f y |\n\n", m.DynamicPayback)
	} else {
		fmt.Fprintf(&b, "| Payback, dynamic | not recovered |\n\n")
	}

	writeRevenueSection(&b, table)
	writeCostSection(&b, table)
	writeCashFlowSection(&b, table)

	out := b.String()
	if !validMarkdown(out) {
		return "", fmt.Errorf("report: generated markdown failed to parse")
	}
	return out, nil
}

func writeRevenueSection(b *strings.Builder, t *cashflow.Table) {
	fmt.Fprintf(b, "## Revenue and taxes\n\n")
	fmt.Fprintf(b, "| Year | Revenue (inc. VAT) | Revenue (ex. VAT) | Output VAT | VAT payable | Surtax | Income tax |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|---|\n")
	for _, r := range t.Rows {
		if r.OperatingYear == 0 {
			continue
		}
		fmt.Fprintf(b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			r.Year, r.RevenueTaxInc, r.Revenue, r.OutputVAT, r.VATPayable, r.Surtax, r.IncomeTax)
	}
	fmt.Fprintf(b, "\n")
}

func writeCostSection(b *strings.Builder, t *cashflow.Table) {
	fmt.Fprintf(b, "## Costs\n\n")
	fmt.Fprintf(b, "| Year | O&M | Depreciation | Loan interest | Loan principal |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|\n")
	for _, r := range t.Rows {
		if r.OperatingYear == 0 {
			continue
		}
		fmt.Fprintf(b, "| %d | %.2f | %.2f | %.2f | %.2f |\n",
			r.Year, r.OMCost, r.Depreciation, r.LoanInterest, r.LoanPrincipal)
	}
	fmt.Fprintf(b, "\n")
}

func writeCashFlowSection(b *strings.Builder, t *cashflow.Table) {
	fmt.Fprintf(b, "## Cash flow\n\n")
	fmt.Fprintf(b, "| Year | Net CF pre-tax | Net CF post-tax | Net CF equity |\n")
	fmt.Fprintf(b, "|---|---|---|---|\n")
	for _, r := range t.Rows {
		fmt.Fprintf(b, "| %d | %.2f | %.2f | %.2f |\n",
			r.Year, r.NetCashPreTax, r.NetCashPostTax, r.NetCashEquity)
	}
	fmt.Fprintf(b, "\n")
}

// validMarkdown runs the report through goldmark. The parser is permissive,
// so this is a structural sanity check, not a linter.
func validMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}
