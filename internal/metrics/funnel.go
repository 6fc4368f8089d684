package metrics

// FunnelDefaults are the planning assumptions used when a caller leaves a
// funnel input unset.
type FunnelDefaults struct {
	AverageTicket float64 `yaml:"average_ticket" mapstructure:"average_ticket"`
	FeePct        float64 `yaml:"fee_pct" mapstructure:"fee_pct"`
	Effectiveness float64 `yaml:"effectiveness" mapstructure:"effectiveness"`
	Weeks         float64 `yaml:"weeks" mapstructure:"weeks"`
}

// DefaultFunnel returns the stock planning assumptions.
func DefaultFunnel() FunnelDefaults {
	return FunnelDefaults{
		AverageTicket: 75000,
		FeePct:        3,
		Effectiveness: 15,
		Weeks:         52,
	}
}

// FunnelInput describes an annual commission target and how deals convert.
type FunnelInput struct {
	Objective     float64 `json:"objective" yaml:"objective"`
	AverageTicket float64 `json:"average_ticket" yaml:"average_ticket"`
	FeePct        float64 `json:"fee_pct" yaml:"fee_pct"`
	Effectiveness float64 `json:"effectiveness" yaml:"effectiveness"`
	Weeks         float64 `json:"weeks" yaml:"weeks"`
}

// WithDefaults fills unset inputs from d.
func (in FunnelInput) WithDefaults(d FunnelDefaults) FunnelInput {
	if in.AverageTicket == 0 {
		in.AverageTicket = d.AverageTicket
	}
	if in.FeePct == 0 {
		in.FeePct = d.FeePct
	}
	if in.Effectiveness == 0 {
		in.Effectiveness = d.Effectiveness
	}
	if in.Weeks == 0 {
		in.Weeks = d.Weeks
	}
	return in
}

// Funnel is the activity needed to reach the objective.
type Funnel struct {
	Input           FunnelInput `json:"input" yaml:"input"`
	Volume          float64     `json:"volume" yaml:"volume"`
	Closings        float64     `json:"closings" yaml:"closings"`
	AnnualSides     float64     `json:"annual_sides" yaml:"annual_sides"`
	WeeklySides     float64     `json:"weekly_sides" yaml:"weekly_sides"`
	MonthlySides    float64     `json:"monthly_sides" yaml:"monthly_sides"`
	MonthlyVolume   float64     `json:"monthly_volume" yaml:"monthly_volume"`
	MonthlyClosings float64     `json:"monthly_closings" yaml:"monthly_closings"`
}

// ProjectionFunnel works backwards from the objective: the sales volume
// that yields it at the average fee, the closings that volume takes at the
// average ticket, and the sides to work given the effectiveness rate.
// Every output is zero when any input is not positive.
func ProjectionFunnel(in FunnelInput) Funnel {
	out := Funnel{Input: in}
	if in.Objective <= 0 || in.AverageTicket <= 0 || in.FeePct <= 0 || in.Effectiveness <= 0 || in.Weeks <= 0 {
		return out
	}
	out.Volume = in.Objective / (in.FeePct / 100)
	out.Closings = out.Volume / in.AverageTicket
	out.AnnualSides = out.Closings / in.Effectiveness * 100
	out.WeeklySides = out.AnnualSides / in.Weeks
	out.MonthlySides = out.AnnualSides / 12
	out.MonthlyVolume = out.Volume / 12
	out.MonthlyClosings = out.Closings / 12
	return out
}
