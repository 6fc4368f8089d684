package classify

import (
	"sort"

	"github.com/sells-group/brokerage-metrics/internal/calendar"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Series is one value per calendar month, January first.
type Series [12]float64

// Total sums the series.
func (s Series) Total() float64 {
	var t float64
	for _, v := range s {
		t += v
	}
	return t
}

// MonthlySeries buckets value(op) into the months of year. Each operation
// lands in the month calendar.PeriodOf assigns it; undated operations are
// skipped.
func MonthlySeries(ops []model.Operation, year int, ref model.Reference, value func(model.Operation) float64) Series {
	var s Series
	for _, op := range ops {
		y, m, ok := calendar.PeriodOf(op, ref)
		if !ok || y != year || m < 1 || m > 12 {
			continue
		}
		s[m-1] += value(op)
	}
	return s
}

// Cumulative returns the running total of s.
func Cumulative(s Series) Series {
	var out Series
	var run float64
	for i, v := range s {
		run += v
		out[i] = run
	}
	return out
}

// GrossFeePercentageByMonth averages BuyerSidePct+SellerSidePct per month of
// year over closed, non-rental operations with both sides represented.
// Months without such operations are absent from the result.
func GrossFeePercentageByMonth(ops []model.Operation, year int) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, op := range ops {
		if op.Status != model.StatusClosed || op.Type.IsRental() || op.SidesRepresented() != 2 {
			continue
		}
		d := op.EventDate()
		if !d.Present() || d.Year() != year {
			continue
		}
		m := int(d.Month())
		sums[m] += op.BuyerSidePct + op.SellerSidePct
		counts[m]++
	}
	out := make(map[int]float64, len(sums))
	for m, sum := range sums {
		out[m] = sum / float64(counts[m])
	}
	return out
}

// RentalAlert flags a rental whose contract expires soon.
type RentalAlert struct {
	Operation     model.Operation `json:"operation" yaml:"operation"`
	DaysRemaining int             `json:"days_remaining" yaml:"days_remaining"`
	Urgent        bool            `json:"urgent" yaml:"urgent"`
}

// UrgentRentalDays is the window within which an expiring rental is urgent.
const UrgentRentalDays = 30

// ExpiringRentals lists closed rentals expiring between asOf and
// asOf+withinDays, soonest first.
func ExpiringRentals(ops []model.Operation, asOf model.Date, withinDays int) []RentalAlert {
	var out []RentalAlert
	for _, op := range ops {
		if op.Status != model.StatusClosed || !op.Type.IsRental() || !op.RentalExpirationDate.Present() {
			continue
		}
		days := calendar.DaysBetween(asOf, op.RentalExpirationDate)
		if days < 0 || days > withinDays {
			continue
		}
		out = append(out, RentalAlert{
			Operation:     op,
			DaysRemaining: days,
			Urgent:        days <= UrgentRentalDays,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysRemaining < out[j].DaysRemaining
	})
	return out
}
