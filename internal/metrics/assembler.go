// Package metrics assembles fee splits, aggregates and classifications into
// the dashboard a viewer sees and the standings a team leader ranks by.
package metrics

import (
	"github.com/sells-group/brokerage-metrics/internal/aggregate"
	"github.com/sells-group/brokerage-metrics/internal/classify"
	"github.com/sells-group/brokerage-metrics/internal/fees"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// DefaultPalette is the chart palette used when none is configured.
var DefaultPalette = classify.Palette{
	"#f472b6",
	"#c084fc",
	"#818cf8",
	"#38bdf8",
	"#a3e635",
	"#fbbf24",
	"#f87171",
	"#4ade80",
	"#60a5fa",
}

// DefaultRentalAlertDays is how far ahead rental expirations are reported.
const DefaultRentalAlertDays = 45

// Options configures an Assembler.
type Options struct {
	Palette          classify.Palette
	Locale           string
	CompactThreshold float64
	RentalAlertDays  int
	Calculator       *fees.Calculator
}

// Assembler builds dashboards. It holds only immutable configuration and is
// safe for concurrent use.
type Assembler struct {
	palette    classify.Palette
	format     *Formatter
	calc       *fees.Calculator
	agg        *aggregate.Aggregator
	rentalDays int
}

// NewAssembler creates an Assembler, filling unset options with defaults.
func NewAssembler(opts Options) *Assembler {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.RentalAlertDays <= 0 {
		opts.RentalAlertDays = DefaultRentalAlertDays
	}
	if opts.Calculator == nil {
		opts.Calculator = fees.NewCalculator()
	}
	return &Assembler{
		palette:    opts.Palette,
		format:     NewFormatter(opts.Locale, opts.CompactThreshold),
		calc:       opts.Calculator,
		agg:        aggregate.New(opts.Calculator),
		rentalDays: opts.RentalAlertDays,
	}
}

// Formatter returns the formatter used for KPI values.
func (a *Assembler) Formatter() *Formatter {
	return a.format
}

// Split computes the fee split of one operation for viewer.
func (a *Assembler) Split(op model.Operation, viewer model.UserData) fees.Split {
	return a.calc.Split(op, viewer)
}

// Standings ranks a team leader's roster. Non-leader viewers get nil.
func (a *Assembler) Standings(viewer model.UserData, roster []model.UserData, ops []model.Operation, window model.TimeWindow, ref model.Reference) []model.StandingRow {
	return a.agg.Standings(viewer, roster, ops, window, ref)
}

// Totals exposes the aggregator for callers that need raw sums.
func (a *Assembler) Totals(ops []model.Operation, viewer model.UserData, window model.TimeWindow, ref model.Reference, opts aggregate.Options) aggregate.Totals {
	return a.agg.Totals(ops, viewer, window, ref, opts)
}

func safePct(part, total float64) float64 {
	return classify.Percent(part, total)
}
