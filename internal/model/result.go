package model

// KPI is a dashboard card.
type KPI struct {
	Title     string  `json:"title" yaml:"title"`
	Value     string  `json:"value" yaml:"value"`
	FullValue string  `json:"full_value" yaml:"full_value"`
	Raw       float64 `json:"raw" yaml:"raw"`
	Color     string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// CategoryItem is one slice of a breakdown chart.
type CategoryItem struct {
	Name       string  `json:"name" yaml:"name"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Color      string  `json:"color" yaml:"color"`
}

// MonthlyComparison pairs a month of the reporting year with the same month
// of the previous year.
type MonthlyComparison struct {
	Month    string  `json:"month" yaml:"month"`
	Current  float64 `json:"current" yaml:"current"`
	Previous float64 `json:"previous" yaml:"previous"`
}

// MonthlyPercentage is a MonthlyComparison for percentage series.
type MonthlyPercentage struct {
	Month         string  `json:"month" yaml:"month"`
	CurrentValue  float64 `json:"current_value" yaml:"current_value"`
	PreviousValue float64 `json:"previous_value" yaml:"previous_value"`
}

// StandingRow is one ranked member of a team.
type StandingRow struct {
	Member   UserData `json:"member" yaml:"member"`
	Position int      `json:"position" yaml:"position"`
	Fees     float64  `json:"fees" yaml:"fees"`
	// NetFees is scaled by the attribution factor, like Fees.
	NetFees    float64 `json:"net_fees" yaml:"net_fees"`
	Operations int     `json:"operations" yaml:"operations"`
	Sides      int     `json:"sides" yaml:"sides"`
	// GoalPercent is nil when the member has no objective set.
	GoalPercent *float64 `json:"goal_percent" yaml:"goal_percent"`
	IsTop       bool     `json:"is_top" yaml:"is_top"`
	IsLeader    bool     `json:"is_leader" yaml:"is_leader"`
}
