package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brokerage-metrics/internal/metrics"
	"github.com/sells-group/brokerage-metrics/internal/report"
)

var reportOpts struct {
	User        string `validate:"required_if=Annual true"`
	Year        int    `validate:"gte=0"`
	Concurrency int    `validate:"gte=0,lte=64"`
	Annual      bool
	Quarter     int `validate:"gte=0,lte=4"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build dashboards for a whole roster concurrently",
	Long: "Builds one dashboard per roster member of --user, with team standings when --user is a team leader. Without --user every user in the snapshot gets a dashboard.\n\n" +
		"With --annual it prints the annual report of --user instead, narrowed to one quarter with --quarter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := validateFlags(reportOpts); err != nil {
			return err
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Report.Concurrency = reportOpts.Concurrency
		}

		snap, err := loadSnapshot(ctx, "report")
		if err != nil {
			return err
		}

		runner := report.NewRunner(newAssembler(cfg), report.Options{
			Concurrency: cfg.Report.Concurrency,
			CacheTTL:    time.Duration(cfg.Report.CacheTTLMinutes) * time.Minute,
		})
		ref := reference(reportOpts.Year)

		if reportOpts.Annual {
			user, err := findUser(snap, reportOpts.User)
			if err != nil {
				return err
			}
			annual, err := runner.Annual(snap, user, ref, reportOpts.Quarter)
			if err != nil {
				return err
			}
			zap.L().Info("report: annual built",
				zap.String("user", user.ID),
				zap.Int("year", annual.Year),
				zap.Int("quarter", annual.Quarter),
			)
			return render(cmd.OutOrStdout(), annual, func() []section { return annualSections(annual) })
		}

		var rep *report.Report
		if reportOpts.User != "" {
			leader, err := findUser(snap, reportOpts.User)
			if err != nil {
				return err
			}
			rep, err = runner.Team(ctx, snap, leader, ref, today())
			if err != nil {
				return err
			}
		} else {
			rep, err = runner.Everyone(ctx, snap, ref, today())
			if err != nil {
				return err
			}
		}

		return render(cmd.OutOrStdout(), rep, func() []section { return reportSections(rep) })
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportOpts.User, "user", "", "team leader (or agent) whose roster to report on; empty means everyone")
	f.IntVar(&reportOpts.Year, "year", 0, "reporting year (default report.year, else the current year)")
	f.IntVar(&reportOpts.Concurrency, "concurrency", 0, "parallel dashboard builds (overrides report.concurrency)")
	f.BoolVar(&reportOpts.Annual, "annual", false, "print the annual report of --user")
	f.IntVar(&reportOpts.Quarter, "quarter", 0, "with --annual, limit the report to quarter 1-4")
	rootCmd.AddCommand(reportCmd)
}

func reportSections(rep *report.Report) []section {
	f := newAssembler(cfg).Formatter()
	members := section{
		title:   "Dashboards " + itoa(rep.Reference.Year),
		headers: []string{"Member", "Role", "Closed gross", "Closed net", "Operations", "In progress", "Objective"},
	}
	for _, m := range rep.Members {
		d := m.Dashboard
		objective := "-"
		if d.Objective.HasObjective {
			objective = pct(d.Objective.Percentage)
		}
		members.rows = append(members.rows, []string{
			m.Member.Name,
			string(m.Member.Role.Normalize()),
			f.Full(d.Closed.Gross),
			f.Full(d.Closed.Net),
			itoa(d.Closed.Operations),
			itoa(d.InProgress.Operations),
			objective,
		})
	}
	out := []section{members}

	if len(rep.Standings) > 0 {
		standings := section{title: "Team standings", headers: []string{"#", "Member", "Fees", "Sides", "Goal"}}
		for _, r := range rep.Standings {
			standings.rows = append(standings.rows, []string{
				itoa(r.Position), r.Member.Name, f.Full(r.Fees), itoa(r.Sides), optPct(r.GoalPercent),
			})
		}
		out = append(out, standings)
	}
	return out
}

func annualSections(r *metrics.AnnualReport) []section {
	f := newAssembler(cfg).Formatter()
	title := "Annual report " + itoa(r.Year)
	if r.Quarter > 0 {
		title += " Q" + itoa(r.Quarter)
	}
	name := r.Name
	if name == "" {
		name = r.Viewer
	}

	goal := "-"
	if r.Objective.HasObjective {
		goal = pct(r.Objective.Percentage) + " of " + f.Full(r.Objective.Target)
	}
	summary := section{title: title + " for " + name, headers: []string{"Metric", "Value"}, rows: [][]string{
		{"Gross fees", f.Full(r.Closed.Gross)},
		{"Net fees", f.Full(r.Closed.Net)},
		{"In-progress gross fees", f.Full(r.InProgress.Gross)},
		{"In-progress net fees", f.Full(r.InProgress.Net)},
		{"Closed operations", itoa(r.Closed.Operations)},
		{"In-progress operations", itoa(r.InProgress.Operations)},
		{"Fallen operations", itoa(r.FallenOperations)},
		{"Closed volume", f.Full(r.Closed.DealValue)},
		{"Average deal value", f.Full(r.Closed.AverageDealValue)},
		{"Largest sale", f.Full(r.LargestSale)},
		{"Total sides", itoa(r.Closed.Sides)},
		{"Average sides", f.Full(r.AverageSides)},
		{"Monthly net average", f.Full(r.MonthlyNetAverage)},
		{"Average days to sell", f.Full(r.Closed.AverageDaysToSell)},
		{"Expenses", f.Full(r.Expenses)},
		{"Profitability", pct(r.Profitability)},
		{"Total profitability", pct(r.ProfitabilityTotal)},
		{"Exclusive", itoa(r.Exclusivity.Exclusive) + " (" + pct(r.Exclusivity.ExclusivePct) + ")"},
		{"Objective", goal},
	}}

	monthly := section{title: "Monthly activity", headers: []string{"Month", "Operations", "Gross", "Net"}}
	for _, m := range r.Monthly {
		monthly.rows = append(monthly.rows, []string{m.Month, itoa(m.Operations), f.Full(m.Gross), f.Full(m.Net)})
	}

	types := section{title: "Operations by type", headers: []string{"Type", "Count", "Count %", "Gross", "Gross %", "Volume"}}
	for _, t := range r.OperationTypes {
		types.rows = append(types.rows, []string{t.Label, itoa(t.Count), pct(t.CountPct), f.Full(t.Gross), pct(t.GrossPct), f.Full(t.DealValue)})
	}

	return []section{summary, monthly, types, categorySection("Property types", r.PropertyTypes)}
}
