package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brokerage-metrics/internal/metrics"
	"github.com/sells-group/brokerage-metrics/internal/model"
	"github.com/sells-group/brokerage-metrics/internal/source"
)

// Report is a batch of dashboards plus, for team leaders, the standings.
type Report struct {
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
	Reference   model.Reference     `json:"reference" yaml:"reference"`
	Leader      *model.UserData     `json:"leader,omitempty" yaml:"leader,omitempty"`
	Standings   []model.StandingRow `json:"standings,omitempty" yaml:"standings,omitempty"`
	Members     []Result            `json:"members" yaml:"members"`
}

// Requests builds one dashboard request per user, scoped to what that user
// may see in snap.
func Requests(snap *source.Snapshot, users []model.UserData, ref model.Reference, asOf model.Date) []Request {
	reqs := make([]Request, 0, len(users))
	for _, u := range users {
		reqs = append(reqs, Request{
			Viewer:     u,
			Operations: snap.OperationsFor(u),
			Expenses:   snap.ExpensesFor(u.ID),
			Reference:  ref,
			AsOf:       asOf,
		})
	}
	return reqs
}

// Team builds dashboards for leader and every member of their roster, in
// roster order, and ranks the roster over the reporting year. An agent gets
// only their own dashboard.
func (r *Runner) Team(ctx context.Context, snap *source.Snapshot, leader model.UserData, ref model.Reference, asOf model.Date) (*Report, error) {
	members := []model.UserData{leader}
	if leader.IsTeamLeader() {
		members = snap.Roster(leader)
	}

	results, err := r.Run(ctx, Requests(snap, members, ref, asOf))
	if err != nil {
		return nil, err
	}

	rep := &Report{
		GeneratedAt: time.Now().UTC(),
		Reference:   ref,
		Members:     results,
	}
	if leader.IsTeamLeader() {
		l := leader
		rep.Leader = &l
		rep.Standings = r.assembler.Standings(leader, members, snap.OperationsFor(leader), model.TimeWindow{Year: ref.Year}, ref)
	}
	return rep, nil
}

// Everyone builds a dashboard for every user in snap, in snapshot order.
func (r *Runner) Everyone(ctx context.Context, snap *source.Snapshot, ref model.Reference, asOf model.Date) (*Report, error) {
	results, err := r.Run(ctx, Requests(snap, snap.Users, ref, asOf))
	if err != nil {
		return nil, err
	}
	return &Report{
		GeneratedAt: time.Now().UTC(),
		Reference:   ref,
		Members:     results,
	}, nil
}

// Annual builds the annual report of user over what user may see in snap.
// A quarter of 1-4 narrows it to that quarter; zero covers the whole year.
func (r *Runner) Annual(snap *source.Snapshot, user model.UserData, ref model.Reference, quarter int) (*metrics.AnnualReport, error) {
	if quarter < 0 || quarter > 4 {
		return nil, eris.Errorf("report: quarter %d is not 1-4", quarter)
	}
	return r.assembler.AnnualReport(metrics.AnnualInput{
		Viewer:     &user,
		Operations: snap.OperationsFor(user),
		Expenses:   snap.ExpensesFor(user.ID),
		Reference:  ref,
		Quarter:    quarter,
	}), nil
}
