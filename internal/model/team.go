package model

import "time"

type TeamMember struct {
	Name             string    `json:"name" yaml:"name" validate:"required"`
	JobTitle         string    `json:"job_title" yaml:"jobTitle"`
	Country          string    `json:"country,omitempty" yaml:"country"`
	GitHub           string    `json:"github,omitempty" yaml:"github"`
	Teams            []string  `json:"teams" yaml:"team"`
	TeamLead         bool      `json:"team_lead" yaml:"teamLead"`
	PineappleOnPizza bool      `json:"pineapple_on_pizza" yaml:"pineappleOnPizza"`
	Headshot         string    `json:"headshot,omitempty" yaml:"headshot"`
	StartDate        time.Time `json:"start_date" yaml:"startDate"`
}

// InTeam reports whether the member belongs to team.
func (m *TeamMember) InTeam(team string) bool {
	for _, t := range m.Teams {
		if t == team {
			return true
		}
	}
	return false
}
