package classify

import (
	"sort"

	"github.com/sells-group/brokerage-metrics/internal/fees"
	"github.com/sells-group/brokerage-metrics/internal/model"
)

// UnspecifiedReason names fallen operations recorded without a reason.
const UnspecifiedReason = "unspecified"

// Palette is an ordered list of chart colors.
type Palette []string

// Color returns the i-th color, cycling when the palette is shorter than
// the number of items. An empty palette yields "".
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return ""
	}
	return p[i%len(p)]
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// items sorts by count, highest first, keeping first-seen order on ties,
// and colors the result in that order.
func (c *counter) items(palette Palette) []model.CategoryItem {
	var total int
	for _, n := range c.counts {
		total += n
	}
	out := make([]model.CategoryItem, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, model.CategoryItem{
			Name:       k,
			Count:      c.counts[k],
			Percentage: Percent(float64(c.counts[k]), float64(total)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	for i := range out {
		out[i].Color = palette.Color(i)
	}
	return out
}

// ByOperationType breaks closed operations down by type label.
func ByOperationType(ops []model.Operation, palette Palette) []model.CategoryItem {
	c := newCounter()
	for _, op := range ops {
		if op.Status == model.StatusClosed {
			c.add(op.Type.Label())
		}
	}
	return c.items(palette)
}

// ByPropertyType breaks closed sales and purchases down by property type.
// Percentages are over that subset only.
func ByPropertyType(ops []model.Operation, palette Palette) []model.CategoryItem {
	c := newCounter()
	for _, op := range ops {
		if op.Status == model.StatusClosed && op.Type.IsSaleOrPurchase() {
			c.add(string(op.PropertyType.OrUnspecified()))
		}
	}
	return c.items(palette)
}

// TopPropertyTypes breaks every closed operation down by property type and
// keeps the limit most frequent. A limit of zero keeps them all.
func TopPropertyTypes(ops []model.Operation, palette Palette, limit int) []model.CategoryItem {
	c := newCounter()
	for _, op := range ops {
		if op.Status == model.StatusClosed {
			c.add(string(op.PropertyType.OrUnspecified()))
		}
	}
	items := c.items(palette)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// FallenByType breaks every fallen operation down by type. Callers pass the
// unfiltered set; no time window applies.
func FallenByType(ops []model.Operation, palette Palette) []model.CategoryItem {
	c := newCounter()
	for _, op := range ops {
		if op.Status == model.StatusFallen {
			c.add(op.Type.Label())
		}
	}
	return c.items(palette)
}

// FallenByReason breaks every fallen operation down by its recorded reason.
func FallenByReason(ops []model.Operation, palette Palette) []model.CategoryItem {
	c := newCounter()
	for _, op := range ops {
		if op.Status != model.StatusFallen {
			continue
		}
		reason := op.FallenReason
		if reason == "" {
			reason = UnspecifiedReason
		}
		c.add(reason)
	}
	return c.items(palette)
}

// TypeSummary is one row of the per-type operations summary.
type TypeSummary struct {
	Type      model.OperationType `json:"type" yaml:"type"`
	Label     string              `json:"label" yaml:"label"`
	Count     int                 `json:"count" yaml:"count"`
	CountPct  float64             `json:"count_pct" yaml:"count_pct"`
	Gross     float64             `json:"gross" yaml:"gross"`
	GrossPct  float64             `json:"gross_pct" yaml:"gross_pct"`
	DealValue float64             `json:"deal_value" yaml:"deal_value"`
}

// Summary is the operations summary table.
type Summary struct {
	Rows       []TypeSummary `json:"rows" yaml:"rows"`
	TotalCount int           `json:"total_count" yaml:"total_count"`
	TotalGross float64       `json:"total_gross" yaml:"total_gross"`
}

// SummaryByType totals closed operations per type. Rows are sorted by
// count, highest first, keeping first-seen order on ties.
func SummaryByType(ops []model.Operation) Summary {
	var s Summary
	index := make(map[model.OperationType]int)
	for _, op := range ops {
		if op.Status != model.StatusClosed {
			continue
		}
		i, ok := index[op.Type]
		if !ok {
			i = len(s.Rows)
			index[op.Type] = i
			s.Rows = append(s.Rows, TypeSummary{Type: op.Type, Label: op.Type.Label()})
		}
		gross := fees.HeadlineGross(op)
		s.Rows[i].Count++
		s.Rows[i].Gross += gross
		s.Rows[i].DealValue += op.DealValue
		s.TotalCount++
		s.TotalGross += gross
	}
	for i := range s.Rows {
		s.Rows[i].CountPct = Percent(float64(s.Rows[i].Count), float64(s.TotalCount))
		s.Rows[i].GrossPct = Percent(s.Rows[i].Gross, s.TotalGross)
	}
	sort.SliceStable(s.Rows, func(i, j int) bool {
		return s.Rows[i].Count > s.Rows[j].Count
	})
	return s
}
