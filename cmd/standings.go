package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

var standingsOpts struct {
	User  string `validate:"required"`
	Year  string
	Month string
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Rank a team leader's roster by closed commission",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(standingsOpts); err != nil {
			return err
		}
		window, err := model.ParseTimeWindow(standingsOpts.Year, standingsOpts.Month)
		if err != nil {
			return eris.Wrap(err, "standings: window")
		}

		snap, err := loadSnapshot(cmd.Context(), "engine")
		if err != nil {
			return err
		}
		leader, err := findUser(snap, standingsOpts.User)
		if err != nil {
			return err
		}
		if !leader.IsTeamLeader() {
			return eris.Errorf("standings: user %q is not a team leader", leader.ID)
		}

		a := newAssembler(cfg)
		rows := a.Standings(leader, snap.Roster(leader), snap.OperationsFor(leader), window, reference(window.Year))
		if rows == nil {
			rows = []model.StandingRow{}
		}
		f := a.Formatter()
		return render(cmd.OutOrStdout(), rows, func() []section {
			s := section{title: "Team standings", headers: []string{"#", "Member", "Fees", "Net fees", "Operations", "Sides", "Goal"}}
			for _, r := range rows {
				name := r.Member.Name
				if r.IsLeader {
					name += " (leader)"
				}
				if r.IsTop {
					name = "★ " + name
				}
				s.rows = append(s.rows, []string{
					itoa(r.Position), name, f.Full(r.Fees), f.Full(r.NetFees), itoa(r.Operations), itoa(r.Sides), optPct(r.GoalPercent),
				})
			}
			return []section{s}
		})
	},
}

func init() {
	f := standingsCmd.Flags()
	f.StringVar(&standingsOpts.User, "user", "", "team leader user ID (required)")
	f.StringVar(&standingsOpts.Year, "year", "all", "year to rank, or all")
	f.StringVar(&standingsOpts.Month, "month", "all", "month to rank (1-12), or all")
	rootCmd.AddCommand(standingsCmd)
}
