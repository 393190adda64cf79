package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
)

func scenarioPlan() model.PlanResult {
	return planner.Build(model.UserProfile{
		Age:               30,
		Salary:            80000,
		Country:           "USA",
		State:             "GA",
		Savings:           10000,
		MonthlyInvestable: 1000,
		DebtPayments:      500,
		EmergencyFund:     5000,
	}, nil)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, scenarioPlan()))

	want := "Asset Class,Percentage,Amount,Suggestions\n" +
		"Stocks (Domestic & International),55.8%,$12276.00,VTI (Total US Stock); VXUS (International Stock); ITOT\n" +
		"Bonds (Fixed Income),30.4%,$6688.00,BND (Total Bond Market); AGG; BNDX (Intl Bonds)\n" +
		"Real Estate (REITs),6.2%,$1364.00,VNQ (Vanguard Real Estate); O (Realty Income)\n" +
		"Cash / Money Market,7.6%,$1672.00,VMFXX (Money Market); HYSA (High-Yield Savings)\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_QuotesCommas(t *testing.T) {
	plan := model.PlanResult{Allocations: []model.Allocation{
		{AssetClass: "Odd, Class", Percentage: 100, Amount: 1, SuggestedInstruments: []string{"A"}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, plan))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Odd, Class", "100%", "$1.00", "A"}, records[1])
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{55.800000000000004, "55.8%"},
		{10, "10%"},
		{71.12, "71.12%"},
		{0, "0%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPercent(tt.in))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$12276.00", FormatAmount(12276.000000000002))
	assert.Equal(t, "$0.00", FormatAmount(0))
	assert.Equal(t, "$1234567.89", FormatAmount(1234567.891))
	assert.Equal(t, "$-500.00", FormatAmount(-500))
}

func TestWriteSummaryCSV(t *testing.T) {
	plan := scenarioPlan()
	rows := []SummaryRow{
		{UserID: "alice", Plan: &plan},
		{UserID: "bob", Err: errors.New("model: invalid profile: age must be > 0")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, summaryHeader, records[0])
	assert.Equal(t, []string{"alice", "62", "17063.00", "22000.00", "1", "55.8", "30.4", "6.2", "7.6", ""}, records[1])
	assert.Equal(t, "bob", records[2][0])
	assert.Empty(t, records[2][1])
	assert.Equal(t, "model: invalid profile: age must be > 0", records[2][9])
}

func TestWriteXLSX(t *testing.T) {
	plan := scenarioPlan()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, plan, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	alloc := f.Sheet[allocationSheet]
	require.NotNil(t, alloc)
	require.Len(t, alloc.Rows, 5)
	for i, h := range allocationHeader {
		assert.Equal(t, h, alloc.Rows[0].Cells[i].String())
	}
	assert.Equal(t, string(model.AssetStocks), alloc.Rows[1].Cells[0].String())
	pct, err := alloc.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 55.8, pct, 1e-9)
	amount, err := alloc.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 12276.0, amount, 1e-6)
	assert.Equal(t, "VTI (Total US Stock); VXUS (International Stock); ITOT", alloc.Rows[1].Cells[3].String())

	summary := f.Sheet[summarySheet]
	require.NotNil(t, summary)
	require.Len(t, summary.Rows, 5)
	assert.Equal(t, "Risk Score", summary.Rows[0].Cells[0].String())
	score, err := summary.Rows[0].Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 62, score)
	assert.Equal(t, "Risk Tolerance", summary.Rows[1].Cells[0].String())
	assert.Equal(t, planner.ToleranceModerate, summary.Rows[1].Cells[1].String())
	assert.Equal(t, "Warning", summary.Rows[4].Cells[0].String())
	assert.Equal(t, plan.Warnings[0], summary.Rows[4].Cells[1].String())
}

func TestWriteXLSX_GoalProgress(t *testing.T) {
	plan := scenarioPlan()
	progress := planner.Progress(10000, []model.Goal{
		{Name: "House", TargetAmount: 40000, Horizon: model.HorizonMedium, Priority: 3},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, plan, &progress))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	summary := f.Sheet[summarySheet]
	require.NotNil(t, summary)
	require.Len(t, summary.Rows, 7)

	assert.Equal(t, "Total Target Capital", summary.Rows[4].Cells[0].String())
	target, err := summary.Rows[4].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 40000.0, target, 1e-6)

	assert.Equal(t, "Savings Progress (%)", summary.Rows[5].Cells[0].String())
	pct, err := summary.Rows[5].Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 25, pct)
	assert.Equal(t, "Warning", summary.Rows[6].Cells[0].String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, "XLSX": FormatXLSX, " xlsx ": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWrite_Dispatch(t *testing.T) {
	var csvBuf, xlsxBuf bytes.Buffer
	require.NoError(t, Write(&csvBuf, FormatCSV, scenarioPlan(), nil))
	require.NoError(t, Write(&xlsxBuf, FormatXLSX, scenarioPlan(), nil))
	assert.True(t, bytes.HasPrefix(csvBuf.Bytes(), []byte("Asset Class,")))
	assert.True(t, bytes.HasPrefix(xlsxBuf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	assert.Error(t, Write(&csvBuf, Format("pdf"), scenarioPlan(), nil))
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "FinPlanner_Plan_2024-01-31.csv", FileName(day, FormatCSV))
	assert.Equal(t, "FinPlanner_Plan_2024-01-31.xlsx", FileName(day, FormatXLSX))
}

func TestContentType(t *testing.T) {
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
