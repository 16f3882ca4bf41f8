package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/goalseek"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
	"pv_eval/pkg/core/report"
	"pv_eval/pkg/core/sensitivity"
	"pv_eval/pkg/core/store"
	"pv_eval/pkg/core/tariff"
)

func main() {
	// Load environment variables
	godotenv.Load()

	projectFile := flag.String("project", "", "project parameters HJSON file (default: built-in 100 MW reference project)")
	tariffFile := flag.String("tariff", "", "regulatory constants HJSON file (default: built-in standard values)")
	discountRate := flag.Float64("discount", 0.06, "discount rate for NPV and dynamic payback")
	targetIRR := flag.Float64("target-irr", 0, "if > 0, goal-seek the static investment for this pre-tax IRR (%)")
	sweepField := flag.String("sweep", "", "sensitivity sweep field (static_invest, price_tax_inc, hours)")
	mdOut := flag.String("report", "", "write the markdown report to this path")
	csvOut := flag.String("csv", "", "write the cash-flow table CSV to this path")
	saveName := flag.String("save-as", "", "persist the run under this name (requires DATABASE_URL)")
	flag.Parse()

	p := referenceProject()
	if *projectFile != "" {
		loaded, err := params.LoadFile(*projectFile)
		if err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		p = loaded
	}

	trf := tariff.Default()
	if *tariffFile != "" {
		loaded, err := tariff.LoadFile(*tariffFile)
		if err != nil {
			log.Fatalf("Failed to load tariff: %v", err)
		}
		trf = loaded
	}

	fmt.Println("🔬 Calculating cash flow...")
	table, err := cashflow.Calculate(p, trf)
	if err != nil {
		log.Fatalf("Cash flow calculation failed: %v", err)
	}
	m, err := metrics.Compute(table, *discountRate)
	if err != nil {
		log.Fatalf("Metrics calculation failed: %v", err)
	}

	fmt.Println("\n📊 Key metrics")
	fmt.Printf("   Total investment:      %12.2f\n", m.TotalInvestment)
	fmt.Printf("   Construction interest: %12.2f\n", table.ConstructionInterest)
	fmt.Printf("   IRR pre-tax (full):    %11.2f%%\n", m.IRRPreTaxPct)
	fmt.Printf("   IRR post-tax (full):   %11.2f%%\n", m.IRRPostTaxPct)
	fmt.Printf("   IRR equity:            %11.2f%%\n", m.IRREquityPct)
	fmt.Printf("   NPV @ %.1f%%:           %12.2f\n", *discountRate*100, m.NPV)
	if m.StaticRecovered {
		fmt.Printf("   Payback (static):      %11.2f y\n", m.StaticPayback)
	} else {
		fmt.Println("   Payback (static):      not recovered")
	}

	if *targetIRR > 0 {
		fmt.Printf("\n🔮 Goal seek: static investment for %.2f%% pre-tax IRR\n", *targetIRR)
		res, err := goalseek.Solve(*targetIRR, p, trf, params.FieldStaticInvest, nil)
		if err != nil {
			log.Fatalf("Goal seek failed: %v", err)
		}
		fmt.Printf("   Max static investment: %12.2f (current %.2f)\n", res.Value, p.StaticInvest)
		fmt.Printf("   Headroom:              %12.2f\n", res.Value-p.StaticInvest)
	}

	if *sweepField != "" {
		fmt.Printf("\n📈 Sensitivity: %s ±15%%\n", *sweepField)
		points, err := sensitivity.Analyze(p, trf, *sweepField, 0.15, 5)
		if err != nil {
			log.Fatalf("Sensitivity analysis failed: %v", err)
		}
		for _, pt := range points {
			fmt.Printf("   %+6.1f%%  value %12.2f  IRR pre %6.2f%%  post %6.2f%%\n",
				pt.Delta*100, pt.Value, pt.IRRPreTaxPct, pt.IRRPostTaxPct)
		}
	}

	if *mdOut != "" {
		md, err := report.Markdown(p, table, m)
		if err != nil {
			log.Fatalf("Report generation failed: %v", err)
		}
		if err := os.WriteFile(*mdOut, []byte(md), 0o644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("\n✅ Markdown report: %s\n", *mdOut)
	}

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatalf("Failed to create CSV: %v", err)
		}
		if err := report.WriteCSV(f, table); err != nil {
			f.Close()
			log.Fatalf("Failed to write CSV: %v", err)
		}
		f.Close()
		fmt.Printf("✅ Cash-flow CSV: %s\n", *csvOut)
	}

	if *saveName != "" {
		ctx := context.Background()
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database init failed: %v", err)
		}
		defer store.Close()
		rec := &store.EvaluationRecord{Name: *saveName, Params: p, Table: table, Metrics: m}
		if err := store.NewEvaluationRepo().Save(ctx, rec); err != nil {
			log.Fatalf("Failed to persist evaluation: %v", err)
		}
		fmt.Printf("✅ Persisted as %q (run %s)\n", *saveName, rec.RunID)
	}
}

// referenceProject is the 100 MW field-validation case.
func referenceProject() params.ProjectParameters {
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
