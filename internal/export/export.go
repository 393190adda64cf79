// Package export renders plans as downloadable CSV and XLSX documents.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
)

// Format is a downloadable document type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", eris.Errorf("export: unsupported format %q", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName is the download name for a plan exported on day t.
func FileName(t time.Time, f Format) string {
	return "FinPlanner_Plan_" + t.Format(time.DateOnly) + "." + string(f)
}

// Write renders plan in format f. progress is optional and only the XLSX
// summary uses it.
func Write(w io.Writer, f Format, plan model.PlanResult, progress *planner.GoalProgress) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, plan)
	case FormatXLSX:
		return WriteXLSX(w, plan, progress)
	}
	return eris.Errorf("export: unsupported format %q", f)
}
