package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Game is a match between exactly two teams. Result is empty until played.
type Game struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Result string    `json:"result"`
	Teams  []*Team   `json:"teams"`
}

// NewGame checks the date first, then the team list shape.
func NewGame(g Game) (*Game, error) {
	if err := ValidateGameShape(g.Date, g.Teams); err != nil {
		return nil, err
	}
	if a, b := g.Teams[0], g.Teams[1]; a == nil || b == nil {
		return nil, ErrTeamsRequired
	} else if a.ID != 0 && a.ID == b.ID {
		return nil, ErrGameTeamsDistinct
	}

	teams := make([]*Team, 2)
	copy(teams, g.Teams)
	return &Game{
		ID:     g.ID,
		Date:   g.Date,
		Result: strings.TrimSpace(g.Result),
		Teams:  teams,
	}, nil
}

// ValidateGameShape runs the checks that need no team lookups, so callers can
// reject a bad payload before touching storage.
func ValidateGameShape[T any](date time.Time, teams []T) error {
	switch {
	case date.IsZero():
		return ErrGameDateRequired
	case teams == nil:
		return ErrTeamsRequired
	case len(teams) != 2:
		return ErrTwoTeamsRequired
	}
	return nil
}

func (g *Game) HasTeam(teamID int64) bool {
	for _, t := range g.Teams {
		if t != nil && t.ID == teamID {
			return true
		}
	}
	return false
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrGameDateRequired
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("Invalid date %q.", s))
	}
	return t, nil
}
