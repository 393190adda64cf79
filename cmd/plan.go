package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/finplanner/internal/advisor"
	"github.com/sells-group/finplanner/internal/cache"
	"github.com/sells-group/finplanner/internal/export"
	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
	"github.com/sells-group/finplanner/internal/service"
)

var (
	planInput  string
	planFormat string
	planOutput string
	planNote   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a plan from a profile and goals file",
	Long:  "Reads a YAML or JSON document with a profile and goals, builds the plan and prints it as a table, JSON, CSV or XLSX.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readPlanInput(planInput)
		if err != nil {
			return err
		}

		c, err := cache.New(cfg.Cache)
		if err != nil {
			return err
		}
		if closer, ok := c.(io.Closer); ok {
			defer closer.Close() //nolint:errcheck
		}

		var noter service.Noter
		if planNote {
			if err := cfg.Validate("advisor"); err != nil {
				zap.L().Warn("coaching note will use the fallback text", zap.Error(err))
			}
			noter = advisor.FromConfig(cfg)
		}
		svc := service.New(nil, c, noter)

		result, err := svc.Preview(cmd.Context(), in.Profile, in.Goals)
		if err != nil {
			return err
		}
		note := svc.Note(cmd.Context(), in.Profile.Normalize(), in.Goals, result)
		progress := planner.Progress(in.Profile.Savings, in.Goals)

		output := planOutput
		if output == "" && strings.EqualFold(planFormat, "xlsx") {
			output = export.FileName(time.Now(), export.FormatXLSX)
			cmd.PrintErrf("writing %s\n", output)
		}

		return withOutput(output, cmd.OutOrStdout(), func(w io.Writer) error {
			return renderPlan(w, planFormat, result, note, &progress)
		})
	},
}

// readPlanInput decodes a {profile, goals} document. JSON is valid YAML, so
// one decoder handles both.
func readPlanInput(path string) (model.PlanInput, error) {
	var in model.PlanInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, eris.Wrapf(err, "read input %s", path)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, eris.Wrapf(err, "parse input %s", path)
	}
	return in, nil
}

// withOutput runs fn against path, or against stdout when path is empty.
func withOutput(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// renderPlan prints plan in the named format. progress is optional; when nil
// the goal progress lines are left out.
func renderPlan(w io.Writer, format string, plan model.PlanResult, note string, progress *planner.GoalProgress) error {
	switch strings.ToLower(format) {
	case "", "table":
		printPlanTable(w, plan, note, progress)
		return nil
	case "json":
		out := struct {
			model.PlanResult
			Note string `json:"note,omitempty"`
		}{plan, note}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal plan")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "csv":
		return export.Write(w, export.FormatCSV, plan, nil)
	case "xlsx":
		return export.Write(w, export.FormatXLSX, plan, progress)
	default:
		return eris.Errorf("unknown format %q (want table, json, csv or xlsx)", format)
	}
}

func printPlanTable(out io.Writer, plan model.PlanResult, note string, progress *planner.GoalProgress) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Risk score:\t%d / 100 (%s)\n", plan.RiskScore, planner.ToleranceLabel(plan.RiskScore))
	_, _ = fmt.Fprintf(w, "Estimated tax:\t%s\n", planner.FormatUSD(plan.TaxEstimate))
	_, _ = fmt.Fprintf(w, "Total investable:\t%s\n", planner.FormatUSD(plan.TotalInvestable))
	if progress != nil {
		_, _ = fmt.Fprintf(w, "Goal targets:\t%s\n", planner.FormatUSD(progress.TotalTargetCapital))
		_, _ = fmt.Fprintf(w, "Savings progress:\t%d%%\n", progress.SavingsProgress)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "ASSET CLASS\tPCT\tAMOUNT\tSUGGESTIONS")
	_, _ = fmt.Fprintln(w, "-----------\t---\t------\t-----------")
	for _, a := range plan.Allocations {
		_, _ = fmt.Fprintf(w, "%s\t%s%%\t%s\t%s\n",
			a.AssetClass,
			strconv.FormatFloat(a.Percentage, 'f', -1, 64),
			planner.FormatUSD(a.Amount),
			strings.Join(a.SuggestedInstruments, ", "),
		)
	}
	_ = w.Flush()

	if len(plan.Warnings) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, warn := range plan.Warnings {
			_, _ = fmt.Fprintf(out, "! %s\n", warn)
		}
	}
	if note != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", note)
	}
}

func init() {
	planCmd.Flags().StringVar(&planInput, "input", "", "profile and goals file (YAML or JSON)")
	planCmd.Flags().StringVar(&planFormat, "format", "table", "output format: table, json, csv, xlsx")
	planCmd.Flags().StringVar(&planOutput, "output", "", "output path (default stdout; xlsx defaults to a dated file)")
	planCmd.Flags().BoolVar(&planNote, "note", false, "append an AI coaching note")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}
