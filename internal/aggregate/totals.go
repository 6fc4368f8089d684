// Package aggregate folds fee splits over sets of operations for a viewer
// or a whole team.
package aggregate

import (
	"github.com/sells-group/brokerage-metrics/internal/calendar"
	"github.com/sells-group/brokerage-metrics/internal/fees"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Options narrows what Totals folds over.
type Options struct {
	// ClosedOnly keeps only closed operations.
	ClosedOnly bool
	// Statuses keeps only the listed statuses. Ignored when ClosedOnly is set.
	Statuses []model.OperationStatus
}

// Totals are the sums and averages of a filtered operation set.
type Totals struct {
	Gross             float64 `json:"gross" yaml:"gross"`
	Net               float64 `json:"net" yaml:"net"`
	Operations        int     `json:"operations" yaml:"operations"`
	Sides             int     `json:"sides" yaml:"sides"`
	BuyerSides        int     `json:"buyer_sides" yaml:"buyer_sides"`
	SellerSides       int     `json:"seller_sides" yaml:"seller_sides"`
	DealValue         float64 `json:"deal_value" yaml:"deal_value"`
	AverageDealValue  float64 `json:"average_deal_value" yaml:"average_deal_value"`
	AverageDaysToSell float64 `json:"average_days_to_sell" yaml:"average_days_to_sell"`
}

// Aggregator folds a fee calculator over operation sets.
type Aggregator struct {
	calc *fees.Calculator
}

// New creates an Aggregator. A nil calculator uses the default one.
func New(calc *fees.Calculator) *Aggregator {
	if calc == nil {
		calc = fees.NewCalculator()
	}
	return &Aggregator{calc: calc}
}

// Totals sums gross and net fees of the operations inside window, as seen
// by viewer, and computes counts and averages over the same set.
func (a *Aggregator) Totals(ops []model.Operation, viewer model.UserData, window model.TimeWindow, ref model.Reference, opts Options) Totals {
	statuses := opts.Statuses
	if opts.ClosedOnly {
		statuses = []model.OperationStatus{model.StatusClosed}
	}
	set := calendar.Filter(ops, window, ref, statuses...)

	var t Totals
	for _, op := range set {
		s := a.calc.Split(op, viewer)
		t.Gross += s.GrossBrokerFee
		t.Net += s.NetAdvisorFee
		t.Operations++
		if op.BuyerSide {
			t.BuyerSides++
		}
		if op.SellerSide {
			t.SellerSides++
		}
		t.DealValue += op.DealValue
	}
	t.Sides = t.BuyerSides + t.SellerSides
	t.AverageDealValue = AverageDealValue(set)
	t.AverageDaysToSell = AverageDaysToSell(set)
	return t
}

// AverageDealValue averages the deal value of closed sales, purchases and
// developments. It is zero when there are none.
func AverageDealValue(ops []model.Operation) float64 {
	var sum float64
	var n int
	for _, op := range ops {
		if op.Status != model.StatusClosed {
			continue
		}
		switch op.Type {
		case model.TypeSale, model.TypePurchase, model.TypeDevelopment:
			sum += op.DealValue
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AverageDaysToSell averages the days from capture to reservation over
// closed operations that carry both dates. Rentals and developments are not
// sales and are left out. Operations missing a date are excluded, not
// counted as zero.
func AverageDaysToSell(ops []model.Operation) float64 {
	var sum, n int
	for _, op := range ops {
		if op.Status != model.StatusClosed || op.Type.IsRental() || op.Type == model.TypeDevelopment {
			continue
		}
		if !op.CaptureDate.Present() || !op.ReservationDate.Present() {
			continue
		}
		sum += calendar.DaysBetween(op.CaptureDate, op.ReservationDate)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
