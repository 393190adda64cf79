package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/finplanner/internal/model"
)

var allocationHeader = []string{"Asset Class", "Percentage", "Amount", "Suggestions"}

// WriteCSV writes one row per allocation under an
// "Asset Class,Percentage,Amount,Suggestions" header.
func WriteCSV(w io.Writer, plan model.PlanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(allocationHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, a := range plan.Allocations {
		if err := cw.Write(allocationRow(a)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", a.AssetClass)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func allocationRow(a model.Allocation) []string {
	return []string{
		string(a.AssetClass),
		FormatPercent(a.Percentage),
		FormatAmount(a.Amount),
		strings.Join(a.SuggestedInstruments, "; "),
	}
}

// FormatPercent renders a percentage with at most two decimals and no
// trailing zeros, e.g. 55.8%.
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).Round(2).String() + "%"
}

// FormatAmount renders a dollar amount with exactly two decimals and no
// grouping, e.g. $12276.00.
func FormatAmount(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}

// SummaryRow is one line of a batch summary. Plan is nil when Err is set.
type SummaryRow struct {
	UserID string
	Plan   *model.PlanResult
	Err    error
}

var summaryHeader = []string{
	"user_id", "risk_score", "tax_estimate", "total_investable", "warnings",
	"stocks_pct", "bonds_pct", "real_estate_pct", "cash_pct", "error",
}

// WriteSummaryCSV writes one line per batch row. Failed rows carry only the
// user id and the error text.
func WriteSummaryCSV(w io.Writer, rows []SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return eris.Wrap(err, "export: write summary header")
	}

	for _, r := range rows {
		rec := make([]string, len(summaryHeader))
		rec[0] = r.UserID
		switch {
		case r.Err != nil:
			rec[len(rec)-1] = r.Err.Error()
		case r.Plan != nil:
			rec[1] = strconv.Itoa(r.Plan.RiskScore)
			rec[2] = decimal.NewFromFloat(r.Plan.TaxEstimate).StringFixed(2)
			rec[3] = decimal.NewFromFloat(r.Plan.TotalInvestable).StringFixed(2)
			rec[4] = strconv.Itoa(len(r.Plan.Warnings))
			for i, class := range model.AssetClasses() {
				if a, ok := r.Plan.Allocation(class); ok {
					rec[5+i] = decimal.NewFromFloat(a.Percentage).Round(2).String()
				}
			}
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "export: write summary row %s", r.UserID)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush summary")
}
