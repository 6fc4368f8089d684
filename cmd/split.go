package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/brokerage-metrics/internal/fees"
)

var splitOpts struct {
	Op   string `validate:"required"`
	User string `validate:"required"`
}

// splitView is the split plus the operation it was computed for.
type splitView struct {
	Operation  string  `json:"operation" yaml:"operation"`
	Viewer     string  `json:"viewer" yaml:"viewer"`
	Role       string  `json:"role" yaml:"role"`
	Factor     float64 `json:"attribution_factor" yaml:"attribution_factor"`
	Sides      int     `json:"sides" yaml:"sides"`
	fees.Split `yaml:",inline"`
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Show how one operation's commission splits for a viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFlags(splitOpts); err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd.Context(), "engine")
		if err != nil {
			return err
		}
		op, ok := snap.Operation(splitOpts.Op)
		if !ok {
			return eris.Errorf("operation %q not found in snapshot", splitOpts.Op)
		}
		viewer, err := findUser(snap, splitOpts.User)
		if err != nil {
			return err
		}

		a := newAssembler(cfg)
		v := splitView{
			Operation: op.ID,
			Viewer:    viewer.ID,
			Role:      string(viewer.Role.Normalize()),
			Factor:    fees.FactorFor(op, viewer.ID),
			Sides:     fees.Sides(op, viewer.ID),
			Split:     a.Split(op, viewer),
		}
		f := a.Formatter()
		return render(cmd.OutOrStdout(), v, func() []section {
			return []section{{
				title:   "Fee split for " + op.ID + " (" + op.Type.Label() + ")",
				headers: []string{"Line", "Amount"},
				rows: [][]string{
					{"Deal value", f.Full(op.DealValue)},
					{"Gross broker fee", f.Full(v.GrossBrokerFee)},
					{"Viewer base", f.Full(v.Base)},
					{"Referral cut", f.Full(v.ReferralCut)},
					{"Shared cut", f.Full(v.SharedCut)},
					{"Franchise cut", f.Full(v.FranchiseCut)},
					{"Net advisor fee", f.Full(v.NetAdvisorFee)},
					{"Attribution", pct(v.Factor * 100)},
					{"Sides", itoa(v.Sides)},
				},
			}}
		})
	},
}

func init() {
	f := splitCmd.Flags()
	f.StringVar(&splitOpts.Op, "op", "", "operation ID (required)")
	f.StringVar(&splitOpts.User, "user", "", "viewer user ID (required)")
	rootCmd.AddCommand(splitCmd)
}
