package fees

import "github.com/sells-group/brokerage-metrics/internal/model"

// Credit is the share of an operation attributed to one team member.
type Credit struct {
	MemberID string
	Factor   float64
}

// Attribution lists who is credited with op. Two distinct advisors split it
// in halves; a single advisor takes all of it; an operation with no advisor
// belongs to its owner.
func Attribution(op model.Operation) []Credit {
	switch {
	case op.HasTwoAdvisors():
		return []Credit{
			{MemberID: op.AdvisorID, Factor: 0.5},
			{MemberID: op.AdditionalAdvisorID, Factor: 0.5},
		}
	case op.AdvisorID != "":
		return []Credit{{MemberID: op.AdvisorID, Factor: 1}}
	case op.AdditionalAdvisorID != "":
		return []Credit{{MemberID: op.AdditionalAdvisorID, Factor: 1}}
	default:
		return []Credit{{MemberID: op.OwnerID, Factor: 1}}
	}
}

// FactorFor returns the attribution factor of memberID on op, or 0.
func FactorFor(op model.Operation, memberID string) float64 {
	var f float64
	for _, c := range Attribution(op) {
		if c.MemberID == memberID {
			f += c.Factor
		}
	}
	return f
}

// AdjustedGross is the headline gross of op scaled by memberID's factor.
func AdjustedGross(op model.Operation, memberID string) float64 {
	return HeadlineGross(op) * FactorFor(op, memberID)
}

// Sides returns the sides credited to memberID. A member listed as both
// advisors takes every side, each of two distinct advisors takes one, and a
// sole advisor takes every side.
func Sides(op model.Operation, memberID string) int {
	if memberID == "" {
		return 0
	}
	total := op.SidesRepresented()
	isPrimary := op.AdvisorID == memberID
	isAdditional := op.AdditionalAdvisorID == memberID
	switch {
	case isPrimary && isAdditional:
		return total
	case !isPrimary && !isAdditional:
		if op.AdvisorID == "" && op.AdditionalAdvisorID == "" && op.OwnerID == memberID {
			return total
		}
		return 0
	case op.AdditionalAdvisorID != "" && op.AdvisorID != "":
		return 1
	default:
		return total
	}
}
