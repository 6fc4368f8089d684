// Package calendar places operations on the calendar and selects them by
// time window and status.
package calendar

import (
	"math"
	"time"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

// PeriodOf returns the year and month an operation belongs to. In-progress
// operations belong to the reference period. Terminal operations use the
// closing date, falling back to the reservation date; ok is false when
// neither is set.
func PeriodOf(op model.Operation, ref model.Reference) (year, month int, ok bool) {
	if op.Status == model.StatusInProgress {
		return ref.Year, int(ref.Month), true
	}
	d := op.EventDate()
	if !d.Present() {
		return 0, 0, false
	}
	return d.Year(), int(d.Month()), true
}

// Filter returns the operations inside the window, in input order. When
// statuses are given only those statuses are kept. The input is not modified.
func Filter(ops []model.Operation, window model.TimeWindow, ref model.Reference, statuses ...model.OperationStatus) []model.Operation {
	out := make([]model.Operation, 0, len(ops))
	for _, op := range ops {
		if len(statuses) > 0 && !hasStatus(op.Status, statuses) {
			continue
		}
		y, m, ok := PeriodOf(op, ref)
		if !ok || !window.Contains(y, m) {
			continue
		}
		out = append(out, op)
	}
	return out
}

// YearOps returns the operations belonging to the given year.
func YearOps(ops []model.Operation, year int, ref model.Reference, statuses ...model.OperationStatus) []model.Operation {
	return Filter(ops, model.TimeWindow{Year: year}, ref, statuses...)
}

// QuarterOf returns the quarter (1-4) of a month, or 0 when month is not
// 1-12.
func QuarterOf(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return (month-1)/3 + 1
}

// QuarterOps returns the operations belonging to quarter q of year, placed
// by PeriodOf. A q of zero selects the whole year.
func QuarterOps(ops []model.Operation, year, q int, ref model.Reference, statuses ...model.OperationStatus) []model.Operation {
	set := YearOps(ops, year, ref, statuses...)
	if q == 0 {
		return set
	}
	out := set[:0]
	for _, op := range set {
		if _, m, _ := PeriodOf(op, ref); QuarterOf(m) == q {
			out = append(out, op)
		}
	}
	return out
}

// ByStatus returns the operations with the given status regardless of date.
func ByStatus(ops []model.Operation, status model.OperationStatus) []model.Operation {
	out := make([]model.Operation, 0, len(ops))
	for _, op := range ops {
		if op.Status == status {
			out = append(out, op)
		}
	}
	return out
}

// DaysBetween returns the whole number of days from a to b, rounded.
func DaysBetween(a, b model.Date) int {
	return int(math.Round(b.Sub(a.Time).Hours() / 24))
}

// MonthsElapsed returns how many complete months of the reference year have
// passed before the reference month. January yields zero. A reporting year
// that has already ended has all twelve months complete.
func MonthsElapsed(ref model.Reference) int {
	if ref.Past() {
		return 12
	}
	if ref.Month < time.January {
		return 0
	}
	return int(ref.Month) - 1
}

func hasStatus(s model.OperationStatus, statuses []model.OperationStatus) bool {
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
