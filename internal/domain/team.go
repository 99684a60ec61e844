package domain

import "strings"

// Team is a named roster with exactly one coach. Players is treated as a set
// keyed by player ID; order carries no meaning.
type Team struct {
	ID       int64     `json:"id"`
	TeamName string    `json:"teamName"`
	Players  []*Player `json:"players"`
	Coach    *Coach    `json:"coach"`
}

// NewTeam validates t and returns a copy whose roster has duplicates removed.
func NewTeam(t Team) (*Team, error) {
	if blank(t.TeamName) {
		return nil, ErrTeamNameRequired
	}
	if t.Coach == nil {
		return nil, ErrTeamCoachRequired
	}

	team := &Team{
		ID:       t.ID,
		TeamName: strings.TrimSpace(t.TeamName),
		Coach:    t.Coach,
		Players:  make([]*Player, 0, len(t.Players)),
	}
	for _, p := range t.Players {
		team.AddPlayer(p)
	}
	return team, nil
}

// AddPlayer is a no-op when a player with the same non-zero ID is already on
// the roster. Unsaved players (ID 0) are always appended.
func (t *Team) AddPlayer(p *Player) {
	if p == nil {
		return
	}
	if p.ID != 0 && t.HasPlayer(p.ID) {
		return
	}
	t.Players = append(t.Players, p)
}

// RemovePlayer drops the player with p's ID. Absent and unsaved (ID 0)
// players are ignored.
func (t *Team) RemovePlayer(p *Player) {
	if p == nil || p.ID == 0 {
		return
	}
	for i, existing := range t.Players {
		if existing.ID == p.ID {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return
		}
	}
}

func (t *Team) HasPlayer(playerID int64) bool {
	for _, p := range t.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (t *Team) UpdateCoach(c *Coach) error {
	if c == nil {
		return ErrTeamCoachRequired
	}
	t.Coach = c
	return nil
}

func (t *Team) UpdateTeamName(name string) error {
	if blank(name) {
		return ErrTeamNameRequired
	}
	t.TeamName = strings.TrimSpace(name)
	return nil
}

// PlayerIDs returns the roster IDs in roster order.
func (t *Team) PlayerIDs() []int64 {
	ids := make([]int64, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// IsCoachedBy reports whether the team's coach belongs to userID.
func (t *Team) IsCoachedBy(userID int64) bool {
	return t.Coach != nil && t.Coach.User != nil && t.Coach.User.ID == userID
}

// Equal compares ID, name, coach and the roster as a set.
func (t *Team) Equal(o *Team) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.ID != o.ID || t.TeamName != o.TeamName || !t.Coach.Equal(o.Coach) {
		return false
	}
	if len(t.Players) != len(o.Players) {
		return false
	}
	for _, p := range t.Players {
		found := false
		for _, q := range o.Players {
			if p.Equal(q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
