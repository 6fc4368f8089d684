package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/brokerage-metrics/internal/metrics"
)

var projectionOpts struct {
	Objective     float64 `validate:"gt=0"`
	AverageTicket float64 `validate:"gte=0"`
	FeePct        float64 `validate:"gte=0,lte=100"`
	Effectiveness float64 `validate:"gte=0,lte=100"`
	Weeks         float64 `validate:"gte=0,lte=53"`
}

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Work back from an annual commission objective to the activity it takes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(projectionOpts); err != nil {
			return err
		}

		in := metrics.FunnelInput{
			Objective:     projectionOpts.Objective,
			AverageTicket: projectionOpts.AverageTicket,
			FeePct:        projectionOpts.FeePct,
			Effectiveness: projectionOpts.Effectiveness,
			Weeks:         projectionOpts.Weeks,
		}.WithDefaults(metrics.FunnelDefaults{
			AverageTicket: cfg.Projection.AverageTicket,
			FeePct:        cfg.Projection.FeePct,
			Effectiveness: cfg.Projection.Effectiveness,
			Weeks:         cfg.Projection.Weeks,
		})
		out := metrics.ProjectionFunnel(in)

		f := newAssembler(cfg).Formatter()
		return render(cmd.OutOrStdout(), out, func() []section {
			return []section{
				{
					title:   "Assumptions",
					headers: []string{"Input", "Value"},
					rows: [][]string{
						{"Objective", f.Full(in.Objective)},
						{"Average ticket", f.Full(in.AverageTicket)},
						{"Average fee", pct(in.FeePct)},
						{"Effectiveness", pct(in.Effectiveness)},
						{"Working weeks", f.Full(in.Weeks)},
					},
				},
				{
					title:   "Required activity",
					headers: []string{"Measure", "Year", "Month"},
					rows: [][]string{
						{"Sales volume", f.Full(out.Volume), f.Full(out.MonthlyVolume)},
						{"Closings", f.Full(out.Closings), f.Full(out.MonthlyClosings)},
						{"Sides to work", f.Full(out.AnnualSides), f.Full(out.MonthlySides)},
						{"Sides per week", f.Full(out.WeeklySides), ""},
					},
				},
			}
		})
	},
}

func init() {
	f := projectionCmd.Flags()
	f.Float64Var(&projectionOpts.Objective, "objective", 0, "annual commission objective (required)")
	f.Float64Var(&projectionOpts.AverageTicket, "ticket", 0, "average deal value (default projection.average_ticket)")
	f.Float64Var(&projectionOpts.FeePct, "fee-pct", 0, "average fee percentage (default projection.fee_pct)")
	f.Float64Var(&projectionOpts.Effectiveness, "effectiveness", 0, "percentage of worked sides that close (default projection.effectiveness)")
	f.Float64Var(&projectionOpts.Weeks, "weeks", 0, "working weeks per year (default projection.weeks)")
	rootCmd.AddCommand(projectionCmd)
}
