package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliSnapshot = `{
  "operations": [
    {"id": "op-1", "owner_id": "lead", "advisor_id": "ana", "deal_value": 100000, "type": "sale",
     "status": "closed", "closing_date": "2024-03-10", "brokerage_rate": 3, "advisor_share_pct": 50,
     "seller_side": true, "exclusive": true},
    {"id": "op-2", "owner_id": "lead", "advisor_id": "bo", "deal_value": 200000, "type": "sale",
     "status": "closed", "closing_date": "2024-04-02", "brokerage_rate": 3, "advisor_share_pct": 50,
     "buyer_side": true, "seller_side": true},
    {"id": "op-3", "owner_id": "lead", "advisor_id": "ana", "deal_value": 1000, "type": "traditional_rental",
     "status": "closed", "closing_date": "2024-02-01", "rental_expiration_date": "2024-07-01",
     "brokerage_rate": 100, "advisor_share_pct": 50, "buyer_side": true}
  ],
  "expenses": [
    {"id": "e1", "date": "2024-02-01", "amount": 300, "direction": "outflow", "user_id": "ana"}
  ],
  "users": [
    {"id": "lead", "name": "Lead", "role": "team_leader_broker"},
    {"id": "ana", "name": "Ana", "role": "agent", "team_leader_id": "lead", "annual_objective": 6000},
    {"id": "bo", "name": "Bo", "role": "agent", "team_leader_id": "lead"}
  ]
}`

// resetFlags restores every flag to its default so commands do not leak
// state between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command in a temp dir holding the test snapshot.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot.json"), []byte(cliSnapshot), 0o644))
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	origNow := now
	now = func() time.Time { return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = origNow })

	oldCfg := cfg
	t.Cleanup(func() { cfg = oldCfg })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--source", "snapshot.json", "--driver", "file"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"dashboard", "standings", "split", "report", "projection"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "brokerage-metrics", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	for _, name := range []string{"source", "driver", "format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestRootCmd_SourceFlagsOverrideConfig(t *testing.T) {
	_, err := runCLI(t, "projection", "--objective", "1000")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "snapshot.json", cfg.Source.Path)
	assert.Equal(t, "file", cfg.Source.Driver)
}

func TestProjectionJSON(t *testing.T) {
	out, err := runCLI(t, "projection", "--objective", "30000", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Volume      float64 `json:"volume"`
		Closings    float64 `json:"closings"`
		AnnualSides float64 `json:"annual_sides"`
		Input       struct {
			AverageTicket float64 `json:"average_ticket"`
			Weeks         float64 `json:"weeks"`
		} `json:"input"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 1000000, got.Volume, 1e-6)
	assert.InDelta(t, 1000000.0/75000, got.Closings, 1e-9)
	assert.InDelta(t, 1000000.0/75000/15*100, got.AnnualSides, 1e-9)
	assert.InDelta(t, 75000, got.Input.AverageTicket, 1e-9)
	assert.InDelta(t, 52, got.Input.Weeks, 1e-9)
}

func TestProjectionRejectsMissingObjective(t *testing.T) {
	_, err := runCLI(t, "projection")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Objective failed gt")
}

func TestProjectionTable(t *testing.T) {
	out, err := runCLI(t, "projection", "--objective", "30000", "--ticket", "100000")
	require.NoError(t, err)
	assert.Contains(t, out, "Assumptions")
	assert.Contains(t, out, "Required activity")
	assert.Contains(t, out, "Sides per week")
}

func TestDashboardJSON(t *testing.T) {
	out, err := runCLI(t, "dashboard", "--user", "ana", "--year", "2024", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Closed struct {
			Gross      float64 `json:"gross"`
			Net        float64 `json:"net"`
			Operations int     `json:"operations"`
		} `json:"closed"`
		Objective struct {
			HasObjective bool    `json:"has_objective"`
			Target       float64 `json:"target"`
		} `json:"objective"`
		Expenses     float64 `json:"expenses"`
		RentalAlerts []struct {
			DaysRemaining int `json:"days_remaining"`
		} `json:"rental_alerts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Closed.Operations)
	assert.InDelta(t, 3000+1000, got.Closed.Gross, 1e-9)
	assert.True(t, got.Objective.HasObjective)
	assert.InDelta(t, 6000, got.Objective.Target, 1e-9)
	assert.InDelta(t, 300, got.Expenses, 1e-9)
	require.Len(t, got.RentalAlerts, 1)
	assert.Equal(t, 16, got.RentalAlerts[0].DaysRemaining)
}

func TestDashboardNoAlerts(t *testing.T) {
	out, err := runCLI(t, "dashboard", "--user", "ana", "--year", "2024", "--alerts=false", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "rental_alerts")
}

func TestDashboardTable(t *testing.T) {
	out, err := runCLI(t, "dashboard", "--user", "ana", "--year", "2024")
	require.NoError(t, err)
	for _, want := range []string{"KPIs", "Objective", "Portfolio mix", "Operations by type", "Monthly net fees", "Expiring rentals", "op-3"} {
		assert.Contains(t, out, want)
	}
}

func TestDashboardErrors(t *testing.T) {
	_, err := runCLI(t, "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User failed required")

	_, err = runCLI(t, "dashboard", "--user", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `user "ghost" not found`)

	_, err = runCLI(t, "dashboard", "--user", "ana", "--as-of", "15/06/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AsOf failed datetime")

	_, err = runCLI(t, "dashboard", "--user", "ana", "--month", "13")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Month failed lte")

	_, err = runCLI(t, "dashboard", "--user", "ana", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestStandingsTable(t *testing.T) {
	out, err := runCLI(t, "standings", "--user", "lead", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Team standings")

	bo := strings.Index(out, "Bo")
	ana := strings.Index(out, "Ana")
	require.True(t, bo >= 0 && ana >= 0, out)
	assert.Less(t, bo, ana, "Bo closed more and ranks first")
}

func TestStandingsJSON(t *testing.T) {
	out, err := runCLI(t, "standings", "--user", "lead", "--year", "2024", "--month", "3", "-o", "json")
	require.NoError(t, err)

	var rows []struct {
		Position int     `json:"position"`
		Fees     float64 `json:"fees"`
		Member   struct {
			ID string `json:"id"`
		} `json:"member"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "ana", rows[0].Member.ID)
	assert.Equal(t, 1, rows[0].Position)
	assert.InDelta(t, 3000, rows[0].Fees, 1e-9)
}

func TestStandingsErrors(t *testing.T) {
	_, err := runCLI(t, "standings", "--user", "ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a team leader")

	_, err = runCLI(t, "standings", "--user", "lead", "--month", "13")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "standings: window")
}

func TestSplitYAML(t *testing.T) {
	out, err := runCLI(t, "split", "--op", "op-1", "--user", "ana", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "operation: op-1")
	assert.Contains(t, out, "gross_broker_fee: 3000")
	assert.Contains(t, out, "net_advisor_fee: 1500")
	assert.Contains(t, out, "attribution_factor: 1")
	assert.Contains(t, out, "sides: 1")
}

func TestSplitErrors(t *testing.T) {
	_, err := runCLI(t, "split", "--op", "op-9", "--user", "ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `operation "op-9" not found`)

	_, err = runCLI(t, "split", "--user", "ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Op failed required")
}

func TestReportTeamJSON(t *testing.T) {
	out, err := runCLI(t, "report", "--user", "lead", "--year", "2024", "--concurrency", "2", "-o", "json")
	require.NoError(t, err)

	var rep struct {
		Leader struct {
			ID string `json:"id"`
		} `json:"leader"`
		Standings []json.RawMessage `json:"standings"`
		Members   []struct {
			Member struct {
				ID string `json:"id"`
			} `json:"member"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "lead", rep.Leader.ID)
	assert.Len(t, rep.Standings, 2)
	require.Len(t, rep.Members, 3)
	assert.Equal(t, "lead", rep.Members[0].Member.ID)
	assert.Equal(t, 2, cfg.Report.Concurrency)
}

func TestReportEveryoneTable(t *testing.T) {
	out, err := runCLI(t, "report", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboards 2024")
	assert.NotContains(t, out, "Team standings")
	for _, name := range []string{"Lead", "Ana", "Bo"} {
		assert.Contains(t, out, name)
	}
}

func TestReportRejectsBadConcurrency(t *testing.T) {
	_, err := runCLI(t, "report", "--concurrency", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Concurrency failed lte")
}

func TestMissingSource(t *testing.T) {
	_, err := runCLI(t, "dashboard", "--user", "ana", "--source", "missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load snapshot")
}

func TestReportAnnualJSON(t *testing.T) {
	out, err := runCLI(t, "report", "--annual", "--user", "ana", "--year", "2024", "-o", "json")
	require.NoError(t, err)

	var rep struct {
		Viewer  string `json:"viewer"`
		Year    int    `json:"year"`
		Quarter int    `json:"quarter"`
		Closed  struct {
			Operations int     `json:"operations"`
			Gross      float64 `json:"gross"`
			Net        float64 `json:"net"`
		} `json:"closed"`
		Monthly []json.RawMessage `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "ana", rep.Viewer)
	assert.Equal(t, 2024, rep.Year)
	assert.Zero(t, rep.Quarter)
	assert.Equal(t, 2, rep.Closed.Operations)
	assert.InDelta(t, 4000, rep.Closed.Gross, 1e-9)
	assert.InDelta(t, 2000, rep.Closed.Net, 1e-9)
	assert.Len(t, rep.Monthly, 12)
}

func TestReportAnnualQuarterTable(t *testing.T) {
	out, err := runCLI(t, "report", "--annual", "--user", "ana", "--year", "2024", "--quarter", "1")
	require.NoError(t, err)
	for _, want := range []string{"Annual report 2024 Q1 for Ana", "Monthly activity", "Operations by type", "Property types", "March"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Dashboards 2024")

	out, err = runCLI(t, "report", "--annual", "--user", "ana", "--year", "2024", "--quarter", "2", "-o", "json")
	require.NoError(t, err)
	var q2 struct {
		Quarter int `json:"quarter"`
		Closed  struct {
			Operations int `json:"operations"`
		} `json:"closed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q2))
	assert.Equal(t, 2, q2.Quarter)
	assert.Zero(t, q2.Closed.Operations)
}

func TestReportAnnualErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "needs a user", args: []string{"report", "--annual"}, want: "User failed required_if"},
		{name: "quarter out of range", args: []string{"report", "--annual", "--user", "ana", "--quarter", "5"}, want: "Quarter failed lte"},
		{name: "unknown user", args: []string{"report", "--annual", "--user", "zed"}, want: `"zed" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
