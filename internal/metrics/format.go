package metrics

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "es-AR"

// DefaultCompactThreshold is the magnitude from which values are compacted.
const DefaultCompactThreshold = 100000

var compactUnits = []struct {
	value  float64
	symbol string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Formatter renders money figures for KPI cards.
type Formatter struct {
	printer   *message.Printer
	decimal   string
	threshold float64
}

// NewFormatter creates a Formatter for locale. An unparsable locale falls
// back to DefaultLocale and a non-positive threshold to
// DefaultCompactThreshold.
func NewFormatter(locale string, threshold float64) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	if threshold <= 0 {
		threshold = DefaultCompactThreshold
	}
	p := message.NewPrinter(tag)
	sep := "."
	if s := p.Sprintf("%.1f", 1.5); len(s) == 3 {
		sep = s[1:2]
	}
	return &Formatter{printer: p, decimal: sep, threshold: threshold}
}

// Full renders v with grouping and two decimals, dropping an all-zero
// fraction.
func (f *Formatter) Full(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := f.printer.Sprintf("%.2f", math.Abs(v))
	s = strings.TrimSuffix(s, f.decimal+"00")
	if v < 0 && s != "0" {
		return "-" + s
	}
	return s
}

// Compact renders v with a K/M/B/T suffix once it reaches the threshold,
// and as Full below it.
func (f *Formatter) Compact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	abs := math.Abs(v)
	if abs < f.threshold {
		return f.Full(v)
	}
	for _, u := range compactUnits {
		if abs < u.value {
			continue
		}
		scaled := math.Round(abs/u.value*100) / 100
		s := strings.Replace(strconv.FormatFloat(scaled, 'f', -1, 64), ".", f.decimal, 1) + u.symbol
		if v < 0 {
			return "-" + s
		}
		return s
	}
	return f.Full(v)
}

// Both returns the compact and full renderings of v.
func (f *Formatter) Both(v float64) (compact, full string) {
	return f.Compact(v), f.Full(v)
}

// Count renders an integer count.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}
