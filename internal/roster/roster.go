package roster

import (
	"slices"
	"strings"

	"github.com/yakoovad/productsite/internal/model"
)

// Roster is the display view of one team.
type Roster struct {
	Team            string              `json:"team"`
	Members         []*model.TeamMember `json:"members"`
	LeadCount       int                 `json:"lead_count"`
	TraitPercentage int                 `json:"pineapple_percentage"`
}

// Aggregate filters all to the members of team and orders leads first.
// The second result is false when the team has no members; callers render
// nothing in that case.
func Aggregate(all []*model.TeamMember, team string) (*Roster, bool) {
	if team == "" {
		return nil, false
	}

	members := make([]*model.TeamMember, 0, len(all))
	for _, m := range all {
		if m != nil && m.InTeam(team) {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return nil, false
	}

	// Within the lead and non-lead groups the source order (start date) must survive.
	slices.SortStableFunc(members, func(a, b *model.TeamMember) int {
		switch {
		case a.TeamLead == b.TeamLead:
			return 0
		case a.TeamLead:
			return -1
		default:
			return 1
		}
	})

	var leads, trait int
	for _, m := range members {
		if m.TeamLead {
			leads++
		}
		if m.PineappleOnPizza {
			trait++
		}
	}

	return &Roster{
		Team:            team,
		Members:         members,
		LeadCount:       leads,
		TraitPercentage: Percentage(trait, len(members)),
	}, true
}

// Percentage returns 100*n/total rounded half up. total must be positive.
func Percentage(n, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*n + total) / (2 * total)
}

// TeamURL builds the handbook link for a team.
func TeamURL(prefix, team string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.ToLower(team)
}
