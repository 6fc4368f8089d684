package metrics

import (
	"time"

	"github.com/sells-group/brokerage-metrics/internal/aggregate"
	"github.com/sells-group/brokerage-metrics/internal/calendar"
	"github.com/sells-group/brokerage-metrics/internal/classify"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// AnnualPropertyTypes is how many property types the annual report lists.
const AnnualPropertyTypes = 5

// AnnualInput is what an annual report is computed from.
type AnnualInput struct {
	Viewer     *model.UserData
	Operations []model.Operation
	Expenses   []model.Expense
	Reference  model.Reference
	// Quarter narrows the report to one quarter, 1-4. Zero covers the year.
	Quarter int
}

// AnnualMonth is one month row of the annual report.
type AnnualMonth struct {
	Month      string  `json:"month" yaml:"month"`
	Number     int     `json:"number" yaml:"number"`
	Operations int     `json:"operations" yaml:"operations"`
	Gross      float64 `json:"gross" yaml:"gross"`
	Net        float64 `json:"net" yaml:"net"`
}

// AnnualReport summarizes one user's year, or one quarter of it.
type AnnualReport struct {
	Viewer  string `json:"viewer" yaml:"viewer"`
	Name    string `json:"name" yaml:"name"`
	Year    int    `json:"year" yaml:"year"`
	Quarter int    `json:"quarter,omitempty" yaml:"quarter,omitempty"`

	Closed           aggregate.Totals `json:"closed" yaml:"closed"`
	InProgress       aggregate.Totals `json:"in_progress" yaml:"in_progress"`
	FallenOperations int              `json:"fallen_operations" yaml:"fallen_operations"`

	LargestSale       float64 `json:"largest_sale" yaml:"largest_sale"`
	AverageSides      float64 `json:"average_sides" yaml:"average_sides"`
	MonthlyNetAverage float64 `json:"monthly_net_average" yaml:"monthly_net_average"`

	Expenses           float64 `json:"expenses" yaml:"expenses"`
	Profitability      float64 `json:"profitability" yaml:"profitability"`
	ProfitabilityTotal float64 `json:"profitability_total" yaml:"profitability_total"`

	Exclusivity    classify.Exclusivity   `json:"exclusivity" yaml:"exclusivity"`
	Objective      Objective              `json:"objective" yaml:"objective"`
	OperationTypes []classify.TypeSummary `json:"operation_types" yaml:"operation_types"`
	Monthly        []AnnualMonth          `json:"monthly" yaml:"monthly"`
	PropertyTypes  []model.CategoryItem   `json:"property_types" yaml:"property_types"`
}

// AnnualReport builds the year (or quarter) summary for in.Viewer. It
// returns nil when the viewer is nil. While the reporting year is still
// running, months after the reference month show no activity.
func (a *Assembler) AnnualReport(in AnnualInput) *AnnualReport {
	if in.Viewer == nil {
		return nil
	}
	viewer := *in.Viewer
	ref := in.Reference
	year := model.TimeWindow{Year: ref.Year}

	period := calendar.QuarterOps(in.Operations, ref.Year, in.Quarter, ref)
	closed := calendar.ByStatus(period, model.StatusClosed)

	r := &AnnualReport{
		Viewer:  viewer.ID,
		Name:    viewer.Name,
		Year:    ref.Year,
		Quarter: in.Quarter,
	}
	r.Closed = a.agg.Totals(period, viewer, year, ref, aggregate.Options{ClosedOnly: true})
	r.InProgress = a.agg.Totals(period, viewer, year, ref,
		aggregate.Options{Statuses: []model.OperationStatus{model.StatusInProgress}})
	r.FallenOperations = len(calendar.ByStatus(period, model.StatusFallen))

	r.LargestSale = largestSale(closed)
	if r.Closed.Operations > 0 {
		r.AverageSides = float64(r.Closed.Sides) / float64(r.Closed.Operations)
	}

	r.Monthly = a.annualMonths(closed, viewer, ref)
	r.MonthlyNetAverage = activeMonthAverage(r.Monthly)

	r.Expenses = periodExpenses(in.Expenses, viewer, ref.Year, in.Quarter)
	r.Profitability = profitability(r.Closed.Net, r.Expenses)
	r.ProfitabilityTotal = profitability(r.Closed.Gross, r.Expenses)

	r.Exclusivity = classify.ExclusivityMix(closed)
	r.Objective = objective(viewer, r.Closed.Gross)
	r.OperationTypes = classify.SummaryByType(closed).Rows
	r.PropertyTypes = classify.TopPropertyTypes(closed, a.palette, AnnualPropertyTypes)
	return r
}

func (a *Assembler) annualMonths(closed []model.Operation, viewer model.UserData, ref model.Reference) []AnnualMonth {
	months := make([]AnnualMonth, 12)
	for i := range months {
		months[i] = AnnualMonth{Month: time.Month(i + 1).String(), Number: i + 1}
	}
	last := 12
	if !ref.Past() && ref.Month >= time.January && ref.Month <= time.December {
		last = int(ref.Month)
	}
	for _, op := range closed {
		_, m, ok := calendar.PeriodOf(op, ref)
		if !ok || m < 1 || m > last {
			continue
		}
		s := a.calc.Split(op, viewer)
		months[m-1].Operations++
		months[m-1].Gross += s.GrossBrokerFee
		months[m-1].Net += s.NetAdvisorFee
	}
	return months
}

// activeMonthAverage averages net fees over months with a closed operation.
func activeMonthAverage(months []AnnualMonth) float64 {
	var sum float64
	var n int
	for _, m := range months {
		if m.Operations > 0 {
			sum += m.Net
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// largestSale is the highest deal value among closed sales, purchases and
// developments. Rentals are not sales.
func largestSale(closed []model.Operation) float64 {
	var top float64
	for _, op := range closed {
		switch op.Type {
		case model.TypeSale, model.TypePurchase, model.TypeDevelopment:
			if op.DealValue > top {
				top = op.DealValue
			}
		}
	}
	return top
}
