// Package batch plans many profiles at once from a CSV file.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finplanner/internal/model"
)

// Columns of the input file. goals is optional; every other column is required.
var requiredColumns = []string{
	"user_id", "age", "salary", "country", "state",
	"savings", "monthly_investable", "debt_payments", "emergency_fund",
}

const goalsColumn = "goals"

// defaultGoalPriority is used when a goal entry omits its priority.
const defaultGoalPriority = 3

// Row is one parsed input line. Err is set when the line could not be parsed;
// the other fields are then best effort.
type Row struct {
	Line    int
	UserID  string
	Profile model.UserProfile
	Goals   []model.Goal
	Err     error
}

// ParseProfilesCSV reads a header row followed by one profile per line. Bad
// lines produce a Row with Err set rather than failing the whole file; only
// a missing header or unreadable input returns an error.
func ParseProfilesCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("batch: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "batch: read header")
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("batch: missing columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, eris.Wrapf(err, "batch: read line %d", line)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, parseRow(line, record, idx))
	}
	return rows, nil
}

func parseRow(line int, record []string, idx map[string]int) Row {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{Line: line, UserID: field("user_id")}
	if row.UserID == "" {
		row.UserID = fmt.Sprintf("line-%d", line)
	}

	var errs []string
	num := func(name string) float64 {
		v := field(name)
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a number", name, v))
		}
		return f
	}

	age, err := strconv.Atoi(field("age"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("age: %q is not an integer", field("age")))
	}
	row.Profile = model.UserProfile{
		Age:               age,
		Salary:            num("salary"),
		Country:           field("country"),
		State:             field("state"),
		Savings:           num("savings"),
		MonthlyInvestable: num("monthly_investable"),
		DebtPayments:      num("debt_payments"),
		EmergencyFund:     num("emergency_fund"),
	}.Normalize()

	goals, err := ParseGoals(field(goalsColumn))
	if err != nil {
		errs = append(errs, err.Error())
	}
	row.Goals = goals

	if len(errs) > 0 {
		row.Err = eris.Errorf("batch: line %d: %s", line, strings.Join(errs, "; "))
		return row
	}
	if err := (model.PlanInput{Profile: row.Profile, Goals: row.Goals}).Validate(); err != nil {
		row.Err = eris.Wrapf(err, "batch: line %d", line)
	}
	return row
}

// ParseGoals parses "horizon:target[:priority];..." where horizon is SHORT,
// MEDIUM, LONG or a full horizon label. Goals are named "Goal 1", "Goal 2"...
func ParseGoals(s string) ([]model.Goal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var goals []model.Goal
	for i, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, eris.Errorf("goals: %q must be horizon:target[:priority]", entry)
		}

		h, err := model.ParseHorizon(parts[0])
		if err != nil {
			return nil, eris.Wrapf(err, "goals: %q", entry)
		}
		target, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, eris.Errorf("goals: %q has a bad target", entry)
		}
		priority := defaultGoalPriority
		if len(parts) == 3 {
			if priority, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
				return nil, eris.Errorf("goals: %q has a bad priority", entry)
			}
		}

		goals = append(goals, model.Goal{
			ID:           strconv.Itoa(i + 1),
			Name:         fmt.Sprintf("Goal %d", i+1),
			TargetAmount: target,
			Horizon:      h,
			Priority:     priority,
		})
	}
	return goals, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
