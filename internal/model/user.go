package model

// Role is the viewer's role. Unknown or empty roles behave as RoleAgent.
type Role string

const (
	RoleAgent            Role = "agent"
	RoleTeamLeaderBroker Role = "team_leader_broker"
)

// Normalize folds unknown roles into RoleAgent.
func (r Role) Normalize() Role {
	if r == RoleTeamLeaderBroker {
		return RoleTeamLeaderBroker
	}
	return RoleAgent
}

// UserData is a viewer profile or a team roster entry.
type UserData struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Email           string   `json:"email,omitempty" yaml:"email,omitempty"`
	Role            Role     `json:"role" yaml:"role"`
	AnnualObjective *float64 `json:"annual_objective,omitempty" yaml:"annual_objective,omitempty"`
	Currency        string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	TeamLeaderID    string   `json:"team_leader_id,omitempty" yaml:"team_leader_id,omitempty"`
}

// TeamMember is a roster entry. It carries the same profile fields as UserData.
type TeamMember = UserData

// IsTeamLeader reports whether the user aggregates a team.
func (u UserData) IsTeamLeader() bool {
	return u.Role.Normalize() == RoleTeamLeaderBroker
}

// Objective returns the annual objective and whether a positive one is set.
func (u UserData) Objective() (float64, bool) {
	if u.AnnualObjective == nil || *u.AnnualObjective <= 0 {
		return 0, false
	}
	return *u.AnnualObjective, true
}

// UsesSecondaryCurrency reports whether expense amounts should be read from
// the secondary (USD) column.
func (u UserData) UsesSecondaryCurrency() bool {
	return u.Currency == "USD"
}

// Float64 returns a pointer to v. Handy for optional objectives.
func Float64(v float64) *float64 {
	return &v
}
