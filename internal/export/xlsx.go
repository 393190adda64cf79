package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
)

const (
	allocationSheet = "Allocation"
	summarySheet    = "Summary"

	percentFormat = "0.00"
	moneyFormat   = "#,##0.00"
)

// WriteXLSX writes a workbook with an Allocation sheet mirroring the CSV
// columns and a Summary sheet with the headline figures and warnings. Goal
// progress rows are added when progress is non-nil.
func WriteXLSX(w io.Writer, plan model.PlanResult, progress *planner.GoalProgress) error {
	f := xlsx.NewFile()

	alloc, err := f.AddSheet(allocationSheet)
	if err != nil {
		return eris.Wrap(err, "export: add allocation sheet")
	}
	addStringRow(alloc, allocationHeader...)
	for _, a := range plan.Allocations {
		row := alloc.AddRow()
		row.AddCell().SetString(string(a.AssetClass))
		row.AddCell().SetFloatWithFormat(a.Percentage, percentFormat)
		row.AddCell().SetFloatWithFormat(a.Amount, moneyFormat)
		row.AddCell().SetString(strings.Join(a.SuggestedInstruments, "; "))
	}

	summary, err := f.AddSheet(summarySheet)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	row := summary.AddRow()
	row.AddCell().SetString("Risk Score")
	row.AddCell().SetInt(plan.RiskScore)
	addStringRow(summary, "Risk Tolerance", planner.ToleranceLabel(plan.RiskScore))
	row = summary.AddRow()
	row.AddCell().SetString("Tax Estimate")
	row.AddCell().SetFloatWithFormat(plan.TaxEstimate, moneyFormat)
	row = summary.AddRow()
	row.AddCell().SetString("Total Investable")
	row.AddCell().SetFloatWithFormat(plan.TotalInvestable, moneyFormat)
	if progress != nil {
		row = summary.AddRow()
		row.AddCell().SetString("Total Target Capital")
		row.AddCell().SetFloatWithFormat(progress.TotalTargetCapital, moneyFormat)
		row = summary.AddRow()
		row.AddCell().SetString("Savings Progress (%)")
		row.AddCell().SetInt(progress.SavingsProgress)
	}
	for _, warning := range plan.Warnings {
		addStringRow(summary, "Warning", warning)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
