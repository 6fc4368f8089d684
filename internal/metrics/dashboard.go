package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/sells-group/brokerage-metrics/internal/aggregate"
	"github.com/sells-group/brokerage-metrics/internal/calendar"
	"github.com/sells-group/brokerage-metrics/internal/classify"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Input is everything a dashboard is computed from.
type Input struct {
	// Viewer is nil until the profile has loaded; no dashboard is built then.
	Viewer     *model.UserData
	Operations []model.Operation
	Expenses   []model.Expense
	Reference  model.Reference
	// AsOf enables rental expiration alerts when set.
	AsOf model.Date
}

// Objective tracks progress towards the annual objective.
type Objective struct {
	HasObjective bool    `json:"has_objective" yaml:"has_objective"`
	Target       float64 `json:"target" yaml:"target"`
	Achieved     float64 `json:"achieved" yaml:"achieved"`
	// Percentage is capped at 100 for gauge display.
	Percentage float64 `json:"percentage" yaml:"percentage"`
	// Remaining is Target - Achieved and goes negative once exceeded.
	Remaining float64 `json:"remaining" yaml:"remaining"`
}

// YearTotals pairs a reporting-year total with the previous year's.
type YearTotals struct {
	Current  float64 `json:"current" yaml:"current"`
	Previous float64 `json:"previous" yaml:"previous"`
}

// Projection is the cumulative gross of the reporting year against what the
// open pipeline would add.
type Projection struct {
	Monthly           []MonthlyAccumulated `json:"monthly" yaml:"monthly"`
	Accumulated       float64              `json:"accumulated" yaml:"accumulated"`
	Total             float64              `json:"total" yaml:"total"`
	Percentage        float64              `json:"percentage" yaml:"percentage"`
	CurrentMonthFees  float64              `json:"current_month_fees" yaml:"current_month_fees"`
	InProgressPending float64              `json:"in_progress_pending" yaml:"in_progress_pending"`
}

// MonthlyAccumulated is one point of the cumulative projection curve.
type MonthlyAccumulated struct {
	Month       string  `json:"month" yaml:"month"`
	Accumulated float64 `json:"accumulated" yaml:"accumulated"`
}

// Dashboard is the full metrics object for one viewer and reporting year.
type Dashboard struct {
	Reference model.Reference `json:"reference" yaml:"reference"`
	KPIs      []model.KPI     `json:"kpis" yaml:"kpis"`

	Closed     aggregate.Totals `json:"closed" yaml:"closed"`
	InProgress aggregate.Totals `json:"in_progress" yaml:"in_progress"`

	MonthlyNetAverage float64 `json:"monthly_net_average" yaml:"monthly_net_average"`

	Objective          Objective `json:"objective" yaml:"objective"`
	Expenses           float64   `json:"expenses" yaml:"expenses"`
	Profitability      float64   `json:"profitability" yaml:"profitability"`
	ProfitabilityTotal float64   `json:"profitability_total" yaml:"profitability_total"`

	Exclusivity    classify.Exclusivity `json:"exclusivity" yaml:"exclusivity"`
	Sharing        classify.Sharing     `json:"sharing" yaml:"sharing"`
	OperationTypes []model.CategoryItem `json:"operation_types" yaml:"operation_types"`
	PropertyTypes  []model.CategoryItem `json:"property_types" yaml:"property_types"`

	FallenTypes      []model.CategoryItem `json:"fallen_types" yaml:"fallen_types"`
	FallenReasons    []model.CategoryItem `json:"fallen_reasons" yaml:"fallen_reasons"`
	TotalFallen      int                  `json:"total_fallen" yaml:"total_fallen"`
	FallenPercentage float64              `json:"fallen_percentage" yaml:"fallen_percentage"`

	MonthlyNet   []model.MonthlyComparison `json:"monthly_net" yaml:"monthly_net"`
	MonthlyGross []model.MonthlyComparison `json:"monthly_gross" yaml:"monthly_gross"`
	NetTotals    YearTotals                `json:"net_totals" yaml:"net_totals"`
	GrossTotals  YearTotals                `json:"gross_totals" yaml:"gross_totals"`

	Projection Projection `json:"projection" yaml:"projection"`

	GrossFeePercentage        []model.MonthlyPercentage `json:"gross_fee_percentage" yaml:"gross_fee_percentage"`
	GrossFeePercentageAverage float64                   `json:"gross_fee_percentage_average" yaml:"gross_fee_percentage_average"`

	Summary      classify.Summary       `json:"summary" yaml:"summary"`
	RentalAlerts []classify.RentalAlert `json:"rental_alerts,omitempty" yaml:"rental_alerts,omitempty"`
}

// Clone returns a deep copy of d, so a caller may modify it freely.
func (d *Dashboard) Clone() *Dashboard {
	if d == nil {
		return nil
	}
	c := *d
	c.KPIs = slices.Clone(d.KPIs)
	c.OperationTypes = slices.Clone(d.OperationTypes)
	c.PropertyTypes = slices.Clone(d.PropertyTypes)
	c.FallenTypes = slices.Clone(d.FallenTypes)
	c.FallenReasons = slices.Clone(d.FallenReasons)
	c.MonthlyNet = slices.Clone(d.MonthlyNet)
	c.MonthlyGross = slices.Clone(d.MonthlyGross)
	c.Projection.Monthly = slices.Clone(d.Projection.Monthly)
	c.GrossFeePercentage = slices.Clone(d.GrossFeePercentage)
	c.Summary.Rows = slices.Clone(d.Summary.Rows)
	c.RentalAlerts = slices.Clone(d.RentalAlerts)
	return &c
}

// Dashboard builds the metrics for in.Viewer over the reporting year in
// in.Reference. It returns nil only when the viewer is nil. Inputs are not
// modified.
func (a *Assembler) Dashboard(in Input) *Dashboard {
	if in.Viewer == nil {
		return nil
	}
	viewer := *in.Viewer
	ref := in.Reference
	year := model.TimeWindow{Year: ref.Year}

	yearOps := calendar.YearOps(in.Operations, ref.Year, ref)
	closedOps := calendar.ByStatus(yearOps, model.StatusClosed)
	allClosed := calendar.ByStatus(in.Operations, model.StatusClosed)

	d := &Dashboard{Reference: ref}
	d.Closed = a.agg.Totals(in.Operations, viewer, year, ref, aggregate.Options{ClosedOnly: true})
	d.InProgress = a.agg.Totals(in.Operations, viewer, year, ref,
		aggregate.Options{Statuses: []model.OperationStatus{model.StatusInProgress}})

	netFn := func(op model.Operation) float64 { return a.calc.Split(op, viewer).NetAdvisorFee }
	grossFn := func(op model.Operation) float64 { return a.calc.Split(op, viewer).GrossBrokerFee }

	netCurrent := classify.MonthlySeries(allClosed, ref.Year, ref, netFn)
	netPrevious := classify.MonthlySeries(allClosed, ref.Year-1, ref, netFn)
	grossCurrent := classify.MonthlySeries(allClosed, ref.Year, ref, grossFn)
	grossPrevious := classify.MonthlySeries(allClosed, ref.Year-1, ref, grossFn)

	d.MonthlyNetAverage = completedMonthAverage(closedOps, netCurrent, ref)
	d.KPIs = a.kpis(d)

	d.Objective = objective(viewer, d.Closed.Gross)
	d.Expenses = yearExpenses(in.Expenses, viewer, ref.Year)
	d.Profitability = profitability(d.Closed.Net, d.Expenses)
	d.ProfitabilityTotal = profitability(d.Closed.Gross, d.Expenses)

	d.Exclusivity = classify.ExclusivityMix(closedOps)
	d.Sharing = classify.SharingMix(closedOps)
	d.OperationTypes = classify.ByOperationType(closedOps, a.palette)
	d.PropertyTypes = classify.ByPropertyType(closedOps, a.palette)

	d.FallenTypes = classify.FallenByType(in.Operations, a.palette)
	d.FallenReasons = classify.FallenByReason(in.Operations, a.palette)
	for _, it := range d.FallenTypes {
		d.TotalFallen += it.Count
	}
	d.FallenPercentage = safePct(float64(d.TotalFallen), float64(len(closedOps)))

	d.MonthlyNet = comparisons(netCurrent, netPrevious)
	d.MonthlyGross = comparisons(grossCurrent, grossPrevious)
	d.NetTotals = YearTotals{Current: netCurrent.Total(), Previous: netPrevious.Total()}
	d.GrossTotals = YearTotals{Current: grossCurrent.Total(), Previous: grossPrevious.Total()}

	d.Projection = projection(grossCurrent, d.Closed.Gross, d.InProgress.Gross, ref)

	d.GrossFeePercentage, d.GrossFeePercentageAverage = grossFeePercentage(allClosed, ref.Year)

	d.Summary = classify.SummaryByType(closedOps)

	if in.AsOf.Present() {
		d.RentalAlerts = classify.ExpiringRentals(in.Operations, in.AsOf, a.rentalDays)
	}
	return d
}

func (a *Assembler) kpis(d *Dashboard) []model.KPI {
	money := func(title string, v float64) model.KPI {
		compact, full := a.format.Both(v)
		return model.KPI{Title: title, Value: compact, FullValue: full, Raw: v}
	}
	count := func(title string, n int) model.KPI {
		s := a.format.Count(n)
		return model.KPI{Title: title, Value: s, FullValue: s, Raw: float64(n)}
	}

	kpis := []model.KPI{
		money("Net Fees", d.Closed.Net),
		money("Gross Fees", d.Closed.Gross),
		money("Closed Volume", d.Closed.DealValue),
		count("Total Sides", d.Closed.Sides),
		money("Average Deal Value", d.Closed.AverageDealValue),
		count("Closed Operations", d.Closed.Operations),
		money("Monthly Net Average", d.MonthlyNetAverage),
		money("In-Progress Net Fees", d.InProgress.Net),
		money("In-Progress Gross Fees", d.InProgress.Gross),
	}
	for i := range kpis {
		kpis[i].Color = a.palette.Color(i)
	}
	return kpis
}

// completedMonthAverage averages net fees over the months before the
// reference month that had at least one closed operation.
func completedMonthAverage(closedOps []model.Operation, net classify.Series, ref model.Reference) float64 {
	var active [12]bool
	for _, op := range closedOps {
		_, m, ok := calendar.PeriodOf(op, ref)
		if ok && m >= 1 && m <= 12 {
			active[m-1] = true
		}
	}
	var sum float64
	var n int
	for i := 0; i < calendar.MonthsElapsed(ref) && i < 12; i++ {
		if active[i] {
			sum += net[i]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func objective(viewer model.UserData, gross float64) Objective {
	target, ok := viewer.Objective()
	if !ok {
		return Objective{Achieved: gross}
	}
	return Objective{
		HasObjective: true,
		Target:       target,
		Achieved:     gross,
		Percentage:   math.Min(safePct(gross, target), 100),
		Remaining:    target - gross,
	}
}

func yearExpenses(expenses []model.Expense, viewer model.UserData, year int) float64 {
	return periodExpenses(expenses, viewer, year, 0)
}

// periodExpenses sums outflows of year, or of one quarter when q is 1-4.
func periodExpenses(expenses []model.Expense, viewer model.UserData, year, q int) float64 {
	var total float64
	for _, e := range expenses {
		if !e.IsOutflow() || !e.Date.Present() || e.Date.Year() != year {
			continue
		}
		if q != 0 && calendar.QuarterOf(int(e.Date.Month())) != q {
			continue
		}
		total += e.AmountFor(viewer)
	}
	return total
}

func profitability(fee, expenses float64) float64 {
	if fee <= 0 {
		return 0
	}
	return (fee - expenses) / fee * 100
}

func monthName(i int) string {
	return time.Month(i + 1).String()
}

func comparisons(current, previous classify.Series) []model.MonthlyComparison {
	out := make([]model.MonthlyComparison, 12)
	for i := range out {
		out[i] = model.MonthlyComparison{Month: monthName(i), Current: current[i], Previous: previous[i]}
	}
	return out
}

func projection(grossCurrent classify.Series, closedGross, inProgressGross float64, ref model.Reference) Projection {
	cum := classify.Cumulative(grossCurrent)
	p := Projection{
		Monthly:           make([]MonthlyAccumulated, 12),
		Accumulated:       closedGross,
		Total:             closedGross + inProgressGross,
		InProgressPending: inProgressGross,
	}
	for i := range p.Monthly {
		p.Monthly[i] = MonthlyAccumulated{Month: monthName(i), Accumulated: cum[i]}
	}
	p.Percentage = safePct(closedGross, p.Total)
	if ref.Month >= time.January && ref.Month <= time.December {
		p.CurrentMonthFees = cum[ref.Month-1]
	}
	return p
}

func grossFeePercentage(closedOps []model.Operation, year int) ([]model.MonthlyPercentage, float64) {
	current := classify.GrossFeePercentageByMonth(closedOps, year)
	previous := classify.GrossFeePercentageByMonth(closedOps, year-1)

	out := make([]model.MonthlyPercentage, 12)
	var sum float64
	var n int
	for i := range out {
		out[i] = model.MonthlyPercentage{
			Month:         monthName(i),
			CurrentValue:  current[i+1],
			PreviousValue: previous[i+1],
		}
		if v := current[i+1]; v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return out, 0
	}
	return out, sum / float64(n)
}
