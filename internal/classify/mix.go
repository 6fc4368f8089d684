// Package classify groups operations into categories and calendar buckets
// for charts and trend series.
package classify

import (
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// Percent returns part/total x 100, or 0 when total is not positive.
func Percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// Exclusivity is the exclusive / non-exclusive mix of closed operations.
type Exclusivity struct {
	Exclusive    int `json:"exclusive" yaml:"exclusive"`
	NonExclusive int `json:"non_exclusive" yaml:"non_exclusive"`
	Unspecified  int `json:"unspecified" yaml:"unspecified"`

	// Percentages over the classified subset; they add up to 100 whenever
	// anything was classified.
	ExclusivePct    float64 `json:"exclusive_pct" yaml:"exclusive_pct"`
	NonExclusivePct float64 `json:"non_exclusive_pct" yaml:"non_exclusive_pct"`

	// PercentagesOfAll uses every closed operation as the denominator.
	PercentagesOfAll ExclusivityShares `json:"percentages_of_all" yaml:"percentages_of_all"`
}

// ExclusivityShares are the three exclusivity buckets as percentages.
type ExclusivityShares struct {
	Exclusive    float64 `json:"exclusive" yaml:"exclusive"`
	NonExclusive float64 `json:"non_exclusive" yaml:"non_exclusive"`
	Unspecified  float64 `json:"unspecified" yaml:"unspecified"`
}

// Classified is the number of operations with an exclusivity flag set.
func (e Exclusivity) Classified() int {
	return e.Exclusive + e.NonExclusive
}

// ExclusivityMix classifies the closed operations in ops. The exclusive flag
// wins when both flags are set.
func ExclusivityMix(ops []model.Operation) Exclusivity {
	var e Exclusivity
	for _, op := range ops {
		if op.Status != model.StatusClosed {
			continue
		}
		switch {
		case op.Exclusive:
			e.Exclusive++
		case op.NonExclusive:
			e.NonExclusive++
		default:
			e.Unspecified++
		}
	}

	classified := float64(e.Classified())
	e.ExclusivePct = Percent(float64(e.Exclusive), classified)
	e.NonExclusivePct = Percent(float64(e.NonExclusive), classified)

	all := classified + float64(e.Unspecified)
	e.PercentagesOfAll = ExclusivityShares{
		Exclusive:    Percent(float64(e.Exclusive), all),
		NonExclusive: Percent(float64(e.NonExclusive), all),
		Unspecified:  Percent(float64(e.Unspecified), all),
	}
	return e
}

// Sharing is the shared / non-shared mix of closed operations. Operations
// with no side represented are not counted.
type Sharing struct {
	Shared       int     `json:"shared" yaml:"shared"`
	NonShared    int     `json:"non_shared" yaml:"non_shared"`
	SharedPct    float64 `json:"shared_pct" yaml:"shared_pct"`
	NonSharedPct float64 `json:"non_shared_pct" yaml:"non_shared_pct"`
}

// SharingMix classifies closed operations by how many sides the agency
// represented: both is non-shared, exactly one is shared.
func SharingMix(ops []model.Operation) Sharing {
	var s Sharing
	for _, op := range ops {
		if op.Status != model.StatusClosed {
			continue
		}
		switch op.SidesRepresented() {
		case 2:
			s.NonShared++
		case 1:
			s.Shared++
		}
	}
	total := float64(s.Shared + s.NonShared)
	s.SharedPct = Percent(float64(s.Shared), total)
	s.NonSharedPct = Percent(float64(s.NonShared), total)
	return s
}
