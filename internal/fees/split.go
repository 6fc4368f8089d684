// Package fees computes the gross brokerage commission of an operation and
// the net amount a given viewer keeps after every split.
package fees

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/sells-group/brokerage-metrics/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Split is the commission outcome of one operation for one viewer.
type Split struct {
	GrossBrokerFee float64 `json:"gross_broker_fee" yaml:"gross_broker_fee"`
	NetAdvisorFee  float64 `json:"net_advisor_fee" yaml:"net_advisor_fee"`

	// Breakdown of how the net figure was reached.
	Base         float64 `json:"base" yaml:"base"`
	ReferralCut  float64 `json:"referral_cut" yaml:"referral_cut"`
	SharedCut    float64 `json:"shared_cut" yaml:"shared_cut"`
	FranchiseCut float64 `json:"franchise_cut" yaml:"franchise_cut"`
}

// baseFunc returns the viewer's portion of the gross fee before cuts.
type baseFunc func(op model.Operation, gross decimal.Decimal, viewerID string) decimal.Decimal

// baseByRole is the single place role-dependent behavior lives.
var baseByRole = map[model.Role]baseFunc{
	model.RoleAgent:            agentBase,
	model.RoleTeamLeaderBroker: teamLeaderBase,
}

// Calculator computes fee splits. The zero value is ready to use.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Split computes gross and net commission of op as seen by viewer.
//
// The net figure starts from the viewer's base (see baseByRole) and then
// deducts, in order, the referral cut, the shared-deal cut and the
// franchise override. Each cut is a percentage of the base. The remainder
// never drops below zero, so earlier cuts are paid first when the
// percentages over-allocate.
func (c *Calculator) Split(op model.Operation, viewer model.UserData) Split {
	gross := grossOf(op)

	base := baseByRole[viewer.Role.Normalize()](op, gross, viewer.ID)
	if base.IsNegative() {
		base = decimal.Zero
	}

	remaining := base
	referral := take(&remaining, pctOf(base, op.ReferralPct))
	var shared decimal.Decimal
	if op.SharedWith != "" {
		shared = take(&remaining, pctOf(base, op.SharedPct))
	}
	franchise := take(&remaining, pctOf(base, op.FranchisePct))

	headline := gross
	if op.ListingNotMine {
		headline = decimal.Zero
	}

	return Split{
		GrossBrokerFee: headline.InexactFloat64(),
		NetAdvisorFee:  remaining.InexactFloat64(),
		Base:           base.InexactFloat64(),
		ReferralCut:    referral.InexactFloat64(),
		SharedCut:      shared.InexactFloat64(),
		FranchiseCut:   franchise.InexactFloat64(),
	}
}

// Gross returns DealValue x BrokerageRate / 100, ignoring ListingNotMine.
func Gross(op model.Operation) float64 {
	return grossOf(op).InexactFloat64()
}

// HeadlineGross is the gross shown on dashboards: zero when the listing was
// captured by someone else.
func HeadlineGross(op model.Operation) float64 {
	if op.ListingNotMine {
		return 0
	}
	return Gross(op)
}

func grossOf(op model.Operation) decimal.Decimal {
	return pctOf(dec(op.DealValue), op.BrokerageRate)
}

// agentBase applies the viewer's own advisor share. A viewer named only as
// the additional advisor takes the additional share, whether or not a
// primary advisor is set.
func agentBase(op model.Operation, gross decimal.Decimal, viewerID string) decimal.Decimal {
	share := op.AdvisorSharePct
	if viewerID != "" && viewerID == op.AdditionalAdvisorID && viewerID != op.AdvisorID {
		share = op.AdditionalAdvisorSharePct
	}
	return pctOf(gross, share)
}

func teamLeaderBase(op model.Operation, gross decimal.Decimal, viewerID string) decimal.Decimal {
	primary := op.AdvisorID != "" && op.AdvisorID != viewerID
	additional := op.AdditionalAdvisorID != "" &&
		op.AdditionalAdvisorID != viewerID &&
		op.AdditionalAdvisorID != op.AdvisorID

	base := gross
	if primary {
		base = base.Sub(pctOf(gross, op.AdvisorSharePct))
	}
	if additional {
		base = base.Sub(pctOf(gross, op.AdditionalAdvisorSharePct))
	}
	return base
}

func pctOf(v decimal.Decimal, pct float64) decimal.Decimal {
	if pct == 0 {
		return decimal.Zero
	}
	return v.Mul(dec(pct)).Div(hundred)
}

// dec converts v, treating NaN and infinities as absent.
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// take subtracts cut from *remaining, capped at what is left, and returns
// the amount actually taken.
func take(remaining *decimal.Decimal, cut decimal.Decimal) decimal.Decimal {
	if cut.IsNegative() {
		cut = decimal.Zero
	}
	if cut.GreaterThan(*remaining) {
		cut = *remaining
	}
	*remaining = remaining.Sub(cut)
	return cut
}
