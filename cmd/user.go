package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/planner"
)

var userID string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage stored profiles, goals and plan history",
}

var profileFlags model.UserProfile

var userSetProfileCmd = &cobra.Command{
	Use:   "set-profile",
	Short: "Create or replace a user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "store")
		if err != nil {
			return err
		}
		defer env.Close()

		saved, err := env.Service.SaveProfile(cmd.Context(), userID, profileFlags)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved profile for %s: %s\n", userID, saved)
		return nil
	},
}

var (
	goalName     string
	goalTarget   float64
	goalHorizon  string
	goalPriority int
)

var userAddGoalCmd = &cobra.Command{
	Use:   "add-goal",
	Short: "Add a goal to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := model.ParseHorizon(goalHorizon)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "store")
		if err != nil {
			return err
		}
		defer env.Close()

		g, err := env.Service.AddGoal(cmd.Context(), userID, model.Goal{
			Name:         goalName,
			TargetAmount: goalTarget,
			Horizon:      h,
			Priority:     goalPriority,
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added goal %s (%s)\n", g.ID, g.Name)
		return nil
	},
}

var userListGoalsCmd = &cobra.Command{
	Use:   "list-goals",
	Short: "List a user's goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "store")
		if err != nil {
			return err
		}
		defer env.Close()

		goals, err := env.Store.ListGoals(cmd.Context(), userID)
		if err != nil {
			return err
		}
		printGoals(cmd.OutOrStdout(), goals)
		return nil
	},
}

var (
	userPlanSave   bool
	userPlanNote   bool
	userPlanFormat string
)

var userPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a plan from a user's stored profile and goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "store")
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		profile, err := env.Store.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		goals, err := env.Store.ListGoals(ctx, userID)
		if err != nil {
			return err
		}
		progress := planner.Progress(profile.Savings, goals)

		if userPlanSave {
			rec, err := env.Service.Generate(ctx, userID, userPlanNote)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "saved plan %s\n", rec.ID)
			return renderPlan(cmd.OutOrStdout(), userPlanFormat, rec.Result, rec.Note, &progress)
		}

		result, err := env.Service.Preview(ctx, *profile, goals)
		if err != nil {
			return err
		}
		var note string
		if userPlanNote {
			note = env.Service.Note(ctx, *profile, goals, result)
		}
		return renderPlan(cmd.OutOrStdout(), userPlanFormat, result, note, &progress)
	},
}

var (
	historyLimit  int
	historyOffset int
)

var userHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's saved plans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "store")
		if err != nil {
			return err
		}
		defer env.Close()

		plans, err := env.Service.History(cmd.Context(), userID, historyLimit, historyOffset)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), plans)
		return nil
	},
}

func printGoals(out io.Writer, goals []model.Goal) {
	if len(goals) == 0 {
		_, _ = fmt.Fprintln(out, "No goals.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTARGET\tHORIZON\tPRIORITY")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-------\t--------")
	for _, g := range goals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", g.ID, g.Name, planner.FormatUSD(g.TargetAmount), g.Horizon.Code(), g.Priority)
	}
	_ = w.Flush()
}

func printHistory(out io.Writer, plans []model.PlanRecord) {
	if len(plans) == 0 {
		_, _ = fmt.Fprintln(out, "No saved plans.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCREATED\tRISK\tINVESTABLE\tWARNINGS\tNOTE")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t----------\t--------\t----")
	for _, p := range plans {
		note := "no"
		if p.Note != "" {
			note = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			p.ID,
			p.CreatedAt.Format("2006-01-02 15:04"),
			p.Result.RiskScore,
			planner.FormatUSD(p.Result.TotalInvestable),
			len(p.Result.Warnings),
			note,
		)
	}
	_ = w.Flush()
}

func init() {
	userCmd.PersistentFlags().StringVar(&userID, "user", "", "user id")
	_ = userCmd.MarkPersistentFlagRequired("user")

	f := userSetProfileCmd.Flags()
	f.IntVar(&profileFlags.Age, "age", 0, "age in years")
	f.Float64Var(&profileFlags.Salary, "salary", 0, "annual gross salary")
	f.StringVar(&profileFlags.Country, "country", "USA", "country code")
	f.StringVar(&profileFlags.State, "state", "", "US state code")
	f.Float64Var(&profileFlags.Savings, "savings", 0, "current savings")
	f.Float64Var(&profileFlags.MonthlyInvestable, "monthly-investable", 0, "amount invested each month")
	f.Float64Var(&profileFlags.DebtPayments, "debt-payments", 0, "monthly debt payments")
	f.Float64Var(&profileFlags.EmergencyFund, "emergency-fund", 0, "emergency fund balance")
	_ = userSetProfileCmd.MarkFlagRequired("age")

	userAddGoalCmd.Flags().StringVar(&goalName, "name", "", "goal name")
	userAddGoalCmd.Flags().Float64Var(&goalTarget, "target", 0, "target amount")
	userAddGoalCmd.Flags().StringVar(&goalHorizon, "horizon", "LONG", "SHORT, MEDIUM or LONG")
	userAddGoalCmd.Flags().IntVar(&goalPriority, "priority", 3, "priority 1-5")
	_ = userAddGoalCmd.MarkFlagRequired("name")

	userPlanCmd.Flags().BoolVar(&userPlanSave, "save", false, "persist the plan to history")
	userPlanCmd.Flags().BoolVar(&userPlanNote, "note", false, "attach an AI coaching note")
	userPlanCmd.Flags().StringVar(&userPlanFormat, "format", "table", "output format: table, json")

	userHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum plans to list")
	userHistoryCmd.Flags().IntVar(&historyOffset, "offset", 0, "plans to skip")

	userCmd.AddCommand(userSetProfileCmd, userAddGoalCmd, userListGoalsCmd, userPlanCmd, userHistoryCmd)
	rootCmd.AddCommand(userCmd)
}
