package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// AllPeriods is the Year or Month value that matches everything.
const AllPeriods = 0

// TimeWindow selects a calendar year and month. Zero means "all".
type TimeWindow struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
}

// Contains reports whether the given year and month fall inside the window.
func (w TimeWindow) Contains(year, month int) bool {
	if w.Year != AllPeriods && w.Year != year {
		return false
	}
	if w.Month != AllPeriods && w.Month != month {
		return false
	}
	return true
}

// ParseTimeWindow parses the filter values the UI sends: "all" or a number.
func ParseTimeWindow(year, month string) (TimeWindow, error) {
	var w TimeWindow
	y, err := parsePeriod(year)
	if err != nil {
		return w, eris.Wrap(err, "model: window year")
	}
	m, err := parsePeriod(month)
	if err != nil {
		return w, eris.Wrap(err, "model: window month")
	}
	if m < 0 || m > 12 {
		return w, eris.Errorf("model: window month must be 1-12 or all, got %d", m)
	}
	w.Year, w.Month = y, m
	return w, nil
}

func parsePeriod(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return AllPeriods, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid period %q", s)
	}
	return n, nil
}

// Reference is the injected "now" for reporting: the reporting year and the
// current month. In-progress deals are bucketed into it.
type Reference struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	// CurrentYear is the calendar year of the clock. When it is after Year
	// the reporting year has ended. Zero means unknown.
	CurrentYear int `json:"current_year,omitempty" yaml:"current_year,omitempty"`
}

// ReferenceFor builds a Reference from a wall-clock instant. Callers at the
// edge of the program use it; the engine only receives the result.
func ReferenceFor(t time.Time) Reference {
	u := t.UTC()
	return Reference{Year: u.Year(), Month: u.Month(), CurrentYear: u.Year()}
}

// Past reports whether the reporting year ended before the clock year.
func (r Reference) Past() bool {
	return r.CurrentYear > 0 && r.Year < r.CurrentYear
}

// WithYear pins the reporting year while keeping the month.
func (r Reference) WithYear(year int) Reference {
	if year > 0 {
		r.Year = year
	}
	return r
}
