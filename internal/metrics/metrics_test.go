package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

var ref = model.Reference{Year: 2024, Month: time.June}

func agentViewer() *model.UserData {
	return &model.UserData{ID: "a", Role: model.RoleAgent, AnnualObjective: model.Float64(12000)}
}

func op(id string, value float64, closing model.Date, mutate func(*model.Operation)) model.Operation {
	o := model.Operation{
		ID:              id,
		AdvisorID:       "a",
		DealValue:       value,
		BrokerageRate:   3,
		AdvisorSharePct: 50,
		Type:            model.TypeSale,
		Status:          model.StatusClosed,
		ClosingDate:     closing,
	}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

func TestDashboardNilViewer(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewAssembler(Options{}).Dashboard(Input{Reference: ref}))
}

func TestDashboardEmpty(t *testing.T) {
	t.Parallel()

	d := NewAssembler(Options{}).Dashboard(Input{Viewer: &model.UserData{ID: "a"}, Reference: ref})
	require.NotNil(t, d)

	// encoding/json rejects NaN and Inf, so a clean marshal proves none leaked.
	_, err := json.Marshal(d)
	require.NoError(t, err)

	assert.Len(t, d.KPIs, 9)
	for _, k := range d.KPIs {
		assert.Zero(t, k.Raw, k.Title)
		assert.Equal(t, "0", k.Value, k.Title)
	}
	assert.Zero(t, d.Closed)
	assert.Zero(t, d.Profitability)
	assert.Zero(t, d.ProfitabilityTotal)
	assert.Zero(t, d.FallenPercentage)
	assert.Zero(t, d.Projection.Percentage)
	assert.Zero(t, d.GrossFeePercentageAverage)
	assert.False(t, d.Objective.HasObjective)
	assert.Zero(t, d.Exclusivity.ExclusivePct)
	assert.Zero(t, d.Sharing.SharedPct)
	assert.Empty(t, d.OperationTypes)
	assert.Len(t, d.MonthlyNet, 12)
}

func TestDashboardTwoMonths(t *testing.T) {
	t.Parallel()

	ops := []model.Operation{
		op("1", 100000, model.NewDate(2024, time.February, 10), nil),
		op("2", 200000, model.NewDate(2024, time.April, 3), nil),
		op("old", 100000, model.NewDate(2023, time.April, 3), nil),
	}
	d := NewAssembler(Options{}).Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: ref})
	require.NotNil(t, d)

	nonZero := 0
	var sum float64
	for _, m := range d.MonthlyGross {
		if m.Current != 0 {
			nonZero++
			sum += m.Current
		}
	}
	assert.Equal(t, 2, nonZero)
	assert.InDelta(t, d.Closed.Gross, sum, 1e-9)
	assert.InDelta(t, 9000, d.Closed.Gross, 1e-9)
	assert.InDelta(t, 4500, d.Closed.Net, 1e-9)
	assert.InDelta(t, 3000, d.MonthlyGross[time.April-1].Previous, 1e-9)
	assert.InDelta(t, 3000, d.GrossTotals.Previous, 1e-9)
	assert.Equal(t, "April", d.MonthlyGross[3].Month)

	// February and April are both complete before June.
	assert.InDelta(t, 2250, d.MonthlyNetAverage, 1e-9)

	assert.True(t, d.Objective.HasObjective)
	assert.InDelta(t, 75, d.Objective.Percentage, 1e-9)
	assert.InDelta(t, 3000, d.Objective.Remaining, 1e-9)

	assert.InDelta(t, 9000, d.Projection.Monthly[5].Accumulated, 1e-9)
	assert.InDelta(t, 9000, d.Projection.CurrentMonthFees, 1e-9)
	assert.InDelta(t, 100, d.Projection.Percentage, 1e-9)
}

func TestDashboardMonthlyAverageForPastYear(t *testing.T) {
	t.Parallel()

	ops := []model.Operation{
		op("1", 100000, model.NewDate(2023, time.February, 10), nil),
		op("2", 200000, model.NewDate(2023, time.October, 3), nil),
	}
	a := NewAssembler(Options{})

	open := model.Reference{Year: 2023, Month: time.June}
	d := a.Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: open})
	assert.InDelta(t, 1500, d.MonthlyNetAverage, 1e-9)

	ended := model.Reference{Year: 2023, Month: time.June, CurrentYear: 2024}
	d = a.Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: ended})
	assert.InDelta(t, 2250, d.MonthlyNetAverage, 1e-9)
}

func TestDashboardObjectiveAndProfitability(t *testing.T) {
	t.Parallel()

	viewer := &model.UserData{ID: "a", Currency: "USD", AnnualObjective: model.Float64(1000)}
	ops := []model.Operation{
		op("1", 100000, model.NewDate(2024, time.March, 1), nil),
		{ID: "2", AdvisorID: "a", DealValue: 100000, BrokerageRate: 2, AdvisorSharePct: 50, Status: model.StatusInProgress, Type: model.TypeSale},
		{ID: "3", Status: model.StatusFallen, Type: model.TypeSale, ReservationDate: model.NewDate(2022, time.May, 1)},
	}
	expenses := []model.Expense{
		{Date: model.NewDate(2024, time.January, 5), Amount: 999999, AmountSecondary: 300, Direction: model.DirectionOutflow},
		{Date: model.NewDate(2024, time.January, 6), Amount: 999999, AmountSecondary: 500, Direction: model.DirectionIncome},
		{Date: model.NewDate(2023, time.January, 6), Amount: 999999, AmountSecondary: 500, Direction: model.DirectionOutflow},
	}
	d := NewAssembler(Options{}).Dashboard(Input{Viewer: viewer, Operations: ops, Expenses: expenses, Reference: ref})
	require.NotNil(t, d)

	assert.InDelta(t, 100, d.Objective.Percentage, 1e-9)
	assert.InDelta(t, -2000, d.Objective.Remaining, 1e-9)

	assert.InDelta(t, 300, d.Expenses, 1e-9)
	assert.InDelta(t, 80, d.Profitability, 1e-9)
	assert.InDelta(t, 90, d.ProfitabilityTotal, 1e-9)

	assert.InDelta(t, 2000, d.InProgress.Gross, 1e-9)
	assert.InDelta(t, 5000, d.Projection.Total, 1e-9)
	assert.InDelta(t, 60, d.Projection.Percentage, 1e-9)

	// Fallen operations are counted regardless of the reporting year.
	assert.Equal(t, 1, d.TotalFallen)
	assert.InDelta(t, 100, d.FallenPercentage, 1e-9)
}

func TestDashboardInputsUntouched(t *testing.T) {
	t.Parallel()

	ops := []model.Operation{op("1", 100000, model.NewDate(2024, time.March, 1), nil)}
	snapshot := append([]model.Operation(nil), ops...)
	viewer := agentViewer()
	before := *viewer

	NewAssembler(Options{}).Dashboard(Input{Viewer: viewer, Operations: ops, Reference: ref})
	assert.Equal(t, snapshot, ops)
	assert.Equal(t, before, *viewer)
}

func TestDashboardGrossFeePercentage(t *testing.T) {
	t.Parallel()

	both := func(m time.Month, pct float64) func(*model.Operation) {
		return func(o *model.Operation) {
			o.BuyerSide, o.SellerSide = true, true
			o.BuyerSidePct, o.SellerSidePct = pct, pct
			o.ClosingDate = model.NewDate(2024, m, 1)
		}
	}
	ops := []model.Operation{
		op("1", 1, model.Date{}, both(time.January, 2)),
		op("2", 1, model.Date{}, both(time.March, 3)),
		op("3", 1, model.NewDate(2023, time.March, 1), func(o *model.Operation) {
			o.BuyerSide, o.SellerSide = true, true
			o.BuyerSidePct, o.SellerSidePct = 1, 1
		}),
	}
	d := NewAssembler(Options{}).Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: ref})
	require.NotNil(t, d)
	assert.InDelta(t, 4, d.GrossFeePercentage[0].CurrentValue, 1e-9)
	assert.InDelta(t, 6, d.GrossFeePercentage[2].CurrentValue, 1e-9)
	assert.InDelta(t, 2, d.GrossFeePercentage[2].PreviousValue, 1e-9)
	assert.InDelta(t, 5, d.GrossFeePercentageAverage, 1e-9)
}

func TestDashboardRentalAlerts(t *testing.T) {
	t.Parallel()

	ops := []model.Operation{
		{ID: "r", Status: model.StatusClosed, Type: model.TypeCommercialRental,
			ClosingDate: model.NewDate(2023, time.June, 1), RentalExpirationDate: model.NewDate(2024, time.June, 20)},
	}
	a := NewAssembler(Options{})
	d := a.Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: ref})
	assert.Empty(t, d.RentalAlerts)

	d = a.Dashboard(Input{Viewer: agentViewer(), Operations: ops, Reference: ref, AsOf: model.NewDate(2024, time.June, 1)})
	require.Len(t, d.RentalAlerts, 1)
	assert.True(t, d.RentalAlerts[0].Urgent)
}

func TestKPIColorsFollowPalette(t *testing.T) {
	t.Parallel()

	a := NewAssembler(Options{Palette: []string{"red", "blue"}})
	d := a.Dashboard(Input{Viewer: agentViewer(), Reference: ref})
	require.Len(t, d.KPIs, 9)
	assert.Equal(t, "red", d.KPIs[0].Color)
	assert.Equal(t, "blue", d.KPIs[1].Color)
	assert.Equal(t, "red", d.KPIs[8].Color)
}

func TestAssemblerStandings(t *testing.T) {
	t.Parallel()

	leader := model.UserData{ID: "lead", Role: model.RoleTeamLeaderBroker}
	roster := []model.UserData{leader, {ID: "a"}, {ID: "b"}, {ID: "c"}}
	may := model.NewDate(2024, time.May, 2)
	ops := []model.Operation{
		{AdvisorID: "a", DealValue: 100000, BrokerageRate: 3, Status: model.StatusClosed, ClosingDate: may},
		{AdvisorID: "c", DealValue: 300000, BrokerageRate: 3, Status: model.StatusClosed, ClosingDate: may},
		{AdvisorID: "b", DealValue: 300000, BrokerageRate: 3, Status: model.StatusClosed, ClosingDate: model.NewDate(2024, time.April, 2)},
	}
	rows := NewAssembler(Options{}).Standings(leader, roster, ops, model.TimeWindow{Year: 2024, Month: 5}, ref)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].Member.ID)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "a", rows[1].Member.ID)
	assert.Equal(t, 2, rows[1].Position)
	assert.Greater(t, rows[0].Fees, rows[1].Fees)
}
