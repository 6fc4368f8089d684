package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brokerage-metrics/internal/metrics"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

type dashboardFlags struct {
	User  string `validate:"required"`
	Year  int    `validate:"gte=0"`
	Month int    `validate:"gte=0,lte=12"`
	AsOf  string `validate:"omitempty,datetime=2006-01-02"`
	Alert bool
}

var dashboardOpts dashboardFlags

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the metrics dashboard of one user for a reporting year",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(dashboardOpts); err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), "engine")
		if err != nil {
			return err
		}
		viewer, err := findUser(snap, dashboardOpts.User)
		if err != nil {
			return err
		}

		ref := reference(dashboardOpts.Year)
		if dashboardOpts.Month > 0 {
			ref.Month = time.Month(dashboardOpts.Month)
		}
		in := metrics.Input{
			Viewer:     &viewer,
			Operations: snap.OperationsFor(viewer),
			Expenses:   snap.ExpensesFor(viewer.ID),
			Reference:  ref,
		}
		if dashboardOpts.Alert {
			in.AsOf = today()
			if dashboardOpts.AsOf != "" {
				d, err := model.ParseDate(dashboardOpts.AsOf)
				if err != nil {
					return eris.Wrap(err, "dashboard: --as-of")
				}
				in.AsOf = d
			}
		}

		d := newAssembler(cfg).Dashboard(in)
		zap.L().Info("dashboard: built",
			zap.String("user", viewer.ID),
			zap.Int("year", in.Reference.Year),
			zap.Int("operations", len(in.Operations)),
		)
		return render(cmd.OutOrStdout(), d, func() []section { return dashboardSections(d) })
	},
}

func init() {
	f := dashboardCmd.Flags()
	f.StringVar(&dashboardOpts.User, "user", "", "user ID whose dashboard to build (required)")
	f.IntVar(&dashboardOpts.Year, "year", 0, "reporting year (default report.year, else the current year)")
	f.IntVar(&dashboardOpts.Month, "month", 0, "reference month 1-12 for in-progress operations (default the current month)")
	f.StringVar(&dashboardOpts.AsOf, "as-of", "", "as-of date for rental alerts, YYYY-MM-DD (default today)")
	f.BoolVar(&dashboardOpts.Alert, "alerts", true, "include expiring rental alerts")
	rootCmd.AddCommand(dashboardCmd)
}

func dashboardSections(d *metrics.Dashboard) []section {
	kpis := section{title: "KPIs", headers: []string{"Metric", "Value", "Full value"}}
	for _, k := range d.KPIs {
		kpis.rows = append(kpis.rows, []string{k.Title, k.Value, k.FullValue})
	}

	f := newAssembler(cfg).Formatter()
	goal := section{title: "Objective", headers: []string{"Target", "Achieved", "Progress", "Remaining"}}
	if d.Objective.HasObjective {
		goal.rows = [][]string{{
			f.Full(d.Objective.Target),
			f.Full(d.Objective.Achieved),
			pct(d.Objective.Percentage),
			f.Full(d.Objective.Remaining),
		}}
	} else {
		goal.rows = [][]string{{"-", f.Full(d.Objective.Achieved), "-", "-"}}
	}

	mix := section{title: "Portfolio mix", headers: []string{"Split", "Count", "Share"}, rows: [][]string{
		{"Exclusive", itoa(d.Exclusivity.Exclusive), pct(d.Exclusivity.ExclusivePct)},
		{"Non-exclusive", itoa(d.Exclusivity.NonExclusive), pct(d.Exclusivity.NonExclusivePct)},
		{"Shared", itoa(d.Sharing.Shared), pct(d.Sharing.SharedPct)},
		{"Non-shared", itoa(d.Sharing.NonShared), pct(d.Sharing.NonSharedPct)},
	}}

	summary := section{title: "Operations by type", headers: []string{"Type", "Count", "Count %", "Gross", "Gross %"}}
	for _, r := range d.Summary.Rows {
		summary.rows = append(summary.rows, []string{r.Label, itoa(r.Count), pct(r.CountPct), f.Full(r.Gross), pct(r.GrossPct)})
	}
	summary.rows = append(summary.rows, []string{"Total", itoa(d.Summary.TotalCount), "", f.Full(d.Summary.TotalGross), ""})

	props := categorySection("Property types", d.PropertyTypes)
	fallen := categorySection("Fallen operations by reason", d.FallenReasons)

	monthly := section{title: "Monthly net fees", headers: []string{"Month", "Current", "Previous"}}
	for _, m := range d.MonthlyNet {
		monthly.rows = append(monthly.rows, []string{m.Month, f.Full(m.Current), f.Full(m.Previous)})
	}

	out := []section{kpis, goal, mix, summary, props, fallen, monthly}
	if len(d.RentalAlerts) > 0 {
		alerts := section{title: "Expiring rentals", headers: []string{"Operation", "Type", "Expires", "Days left", "Urgent"}}
		for _, a := range d.RentalAlerts {
			urgent := ""
			if a.Urgent {
				urgent = "yes"
			}
			alerts.rows = append(alerts.rows, []string{
				a.Operation.ID, a.Operation.Type.Label(), a.Operation.RentalExpirationDate.String(), itoa(a.DaysRemaining), urgent,
			})
		}
		out = append(out, alerts)
	}
	return out
}

func categorySection(title string, items []model.CategoryItem) section {
	s := section{title: title, headers: []string{"Name", "Count", "Share", "Color"}}
	for _, it := range items {
		s.rows = append(s.rows, []string{it.Name, itoa(it.Count), pct(it.Percentage), swatch(it.Color)})
	}
	return s
}
