package service

import (
	"context"
	"errors"
	"time"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/store"
)

// GameInput is the create/update payload. On update an empty Date and a nil
// Result keep the stored values; Teams is always replaced.
type GameInput struct {
	Date   string  `json:"date"`
	Result *string `json:"result"`
	Teams  []Ref   `json:"teams"`
}

// GameService schedules games and records results.
type GameService struct {
	games GameRepository
	teams TeamRepository
}

func NewGameService(games GameRepository, teams TeamRepository) *GameService {
	return &GameService{games: games, teams: teams}
}

func (s *GameService) List(ctx context.Context) ([]*domain.Game, error) {
	return s.list(ctx, store.GameFilter{})
}

func (s *GameService) ListByTeam(ctx context.Context, teamID int64) ([]*domain.Game, error) {
	return s.list(ctx, store.GameFilter{TeamID: teamID})
}

// ListByUser returns games of every team userID coaches or plays in.
func (s *GameService) ListByUser(ctx context.Context, userID int64) ([]*domain.Game, error) {
	return s.list(ctx, store.GameFilter{UserID: userID})
}

func (s *GameService) list(ctx context.Context, f store.GameFilter) ([]*domain.Game, error) {
	games, err := s.games.List(ctx, f)
	if err != nil {
		return nil, storageFailure(ctx, "games.List", err)
	}
	return games, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	g, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, "games.GetByID", "Game", id, err)
	}
	return g, nil
}

// resolveTeams loads both referenced teams as full aggregates, in ref order.
func (s *GameService) resolveTeams(ctx context.Context, refs []Ref) ([]*domain.Team, error) {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}

	found, err := s.teams.List(ctx, store.TeamFilter{IDs: ids})
	if err != nil {
		return nil, storageFailure(ctx, "teams.List", err)
	}
	byID := make(map[int64]*domain.Team, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	teams := make([]*domain.Team, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, domain.NotFound("Team", id)
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (s *GameService) build(ctx context.Context, id int64, date time.Time, result string, refs []Ref) (*domain.Game, error) {
	if err := domain.ValidateGameShape(date, refs); err != nil {
		return nil, err
	}
	teams, err := s.resolveTeams(ctx, refs)
	if err != nil {
		return nil, err
	}
	return domain.NewGame(domain.Game{ID: id, Date: date, Result: result, Teams: teams})
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(s)
}

// Create reports payload shape errors before any team is looked up.
func (s *GameService) Create(ctx context.Context, in GameInput) (*domain.Game, error) {
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, err
	}
	var result string
	if in.Result != nil {
		result = *in.Result
	}

	g, err := s.build(ctx, 0, date, result, in.Teams)
	if err != nil {
		return nil, err
	}
	created, err := s.games.Create(ctx, g)
	if err != nil {
		return nil, storageFailure(ctx, "games.Create", err)
	}
	return created, nil
}

// Update merges date and result with the stored game and replaces the teams.
func (s *GameService) Update(ctx context.Context, id int64, in GameInput) (*domain.Game, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	date := existing.Date
	if in.Date != "" {
		if date, err = domain.ParseDate(in.Date); err != nil {
			return nil, err
		}
	}
	result := existing.Result
	if in.Result != nil {
		result = *in.Result
	}

	g, err := s.build(ctx, id, date, result, in.Teams)
	if err != nil {
		return nil, err
	}
	updated, err := s.games.Update(ctx, g)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("Game", id)
	}
	if err != nil {
		return nil, storageFailure(ctx, "games.Update", err)
	}
	return updated, nil
}

// Delete looks the game up first so a missing id never reaches the store's
// delete.
func (s *GameService) Delete(ctx context.Context, id int64) (*domain.Game, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.games.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("Game", id)
	}
	if err != nil {
		return nil, storageFailure(ctx, "games.Delete", err)
	}
	return g, nil
}
