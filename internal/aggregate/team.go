package aggregate

import (
	"sort"

	"github.com/sells-group/brokerage-metrics/internal/calendar"
	"github.com/sells-group/brokerage-metrics/internal/fees"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// MemberFees is the adjusted gross of closed operations in window credited
// to memberID.
func MemberFees(ops []model.Operation, memberID string, window model.TimeWindow, ref model.Reference) float64 {
	var total float64
	for _, op := range calendar.Filter(ops, window, ref, model.StatusClosed) {
		total += fees.AdjustedGross(op, memberID)
	}
	return total
}

// TeamTotal is the gross of closed operations in window credited to any
// roster member. Each operation counts once, split by attribution, so the
// result equals the sum of MemberFees over the roster.
func TeamTotal(ops []model.Operation, roster []model.UserData, window model.TimeWindow, ref model.Reference) float64 {
	members := make(map[string]bool, len(roster))
	for _, m := range roster {
		members[m.ID] = true
	}

	var total float64
	for _, op := range calendar.Filter(ops, window, ref, model.StatusClosed) {
		var factor float64
		for _, c := range fees.Attribution(op) {
			if members[c.MemberID] {
				factor += c.Factor
			}
		}
		total += fees.HeadlineGross(op) * factor
	}
	return total
}

// GoalPercent returns amount as a percentage of the member's objective, or
// nil when no positive objective is set.
func GoalPercent(amount float64, member model.UserData) *float64 {
	obj, ok := member.Objective()
	if !ok {
		return nil
	}
	pct := amount / obj * 100
	return &pct
}

// Standings ranks roster members by adjusted gross over closed operations
// in window. Only team-leader viewers get standings; anyone else gets nil.
// The viewer is ranked too even when missing from roster. Members without a
// closed operation in window are left out. Ties keep roster order.
func (a *Aggregator) Standings(viewer model.UserData, roster []model.UserData, ops []model.Operation, window model.TimeWindow, ref model.Reference) []model.StandingRow {
	if !viewer.IsTeamLeader() {
		return nil
	}

	members := withViewer(viewer, roster)
	closed := calendar.Filter(ops, window, ref, model.StatusClosed)

	rows := make([]model.StandingRow, 0, len(members))
	for _, m := range members {
		row := model.StandingRow{Member: m, IsLeader: m.ID == viewer.ID}
		for _, op := range closed {
			factor := fees.FactorFor(op, m.ID)
			if factor == 0 {
				continue
			}
			row.Operations++
			row.Fees += fees.HeadlineGross(op) * factor
			row.NetFees += a.calc.Split(op, m).NetAdvisorFee * factor
			row.Sides += fees.Sides(op, m.ID)
		}
		if row.Operations == 0 {
			continue
		}
		row.GoalPercent = GoalPercent(row.Fees, m)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Fees > rows[j].Fees
	})
	for i := range rows {
		rows[i].Position = i + 1
		rows[i].IsTop = i == 0
	}
	return rows
}

func withViewer(viewer model.UserData, roster []model.UserData) []model.UserData {
	for _, m := range roster {
		if m.ID == viewer.ID {
			return roster
		}
	}
	out := make([]model.UserData, 0, len(roster)+1)
	out = append(out, viewer)
	return append(out, roster...)
}
