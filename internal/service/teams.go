package service

import (
	"context"
	"errors"
	"strings"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/store"
)

// TeamInput describes a whole team. Coach and players are referenced by id.
type TeamInput struct {
	TeamName string `json:"teamName"`
	Coach    *Ref   `json:"coach"`
	Players  []Ref  `json:"players"`
}

// TeamService manages teams and their rosters.
type TeamService struct {
	teams   TeamRepository
	coaches CoachRepository
	players PlayerRepository
}

func NewTeamService(teams TeamRepository, coaches CoachRepository, players PlayerRepository) *TeamService {
	return &TeamService{teams: teams, coaches: coaches, players: players}
}

func (s *TeamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.list(ctx, store.TeamFilter{})
}

// ListByUser returns the teams userID coaches or plays in.
func (s *TeamService) ListByUser(ctx context.Context, userID int64) ([]*domain.Team, error) {
	return s.list(ctx, store.TeamFilter{UserID: userID})
}

func (s *TeamService) ListByCoach(ctx context.Context, coachID int64) ([]*domain.Team, error) {
	return s.list(ctx, store.TeamFilter{CoachID: coachID})
}

func (s *TeamService) list(ctx context.Context, f store.TeamFilter) ([]*domain.Team, error) {
	teams, err := s.teams.List(ctx, f)
	if err != nil {
		return nil, storageFailure(ctx, "teams.List", err)
	}
	return teams, nil
}

func (s *TeamService) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, "teams.GetByID", "Team", id, err)
	}
	return t, nil
}

// build validates in and resolves its references into a Team with the given id.
func (s *TeamService) build(ctx context.Context, id int64, in TeamInput) (*domain.Team, error) {
	if strings.TrimSpace(in.TeamName) == "" {
		return nil, domain.ErrTeamNameRequired
	}
	if in.Coach == nil || in.Coach.ID == 0 {
		return nil, domain.ErrTeamCoachRequired
	}

	coach, err := s.coaches.GetByID(ctx, in.Coach.ID)
	if err != nil {
		return nil, lookupFailure(ctx, "coaches.GetByID", "Coach", in.Coach.ID, err)
	}

	players, err := s.resolvePlayers(ctx, in.Players)
	if err != nil {
		return nil, err
	}

	return domain.NewTeam(domain.Team{ID: id, TeamName: in.TeamName, Coach: coach, Players: players})
}

func (s *TeamService) resolvePlayers(ctx context.Context, refs []Ref) ([]*domain.Player, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}

	found, err := s.players.ListByIDs(ctx, ids)
	if err != nil {
		return nil, storageFailure(ctx, "players.ListByIDs", err)
	}
	byID := make(map[int64]*domain.Player, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, domain.NotFound("Player", id)
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *TeamService) Create(ctx context.Context, in TeamInput) (*domain.Team, error) {
	t, err := s.build(ctx, 0, in)
	if err != nil {
		return nil, err
	}
	created, err := s.teams.Create(ctx, t)
	if err != nil {
		return nil, storageFailure(ctx, "teams.Create", err)
	}
	return created, nil
}

// Update replaces name, coach and roster of an existing team.
func (s *TeamService) Update(ctx context.Context, id int64, in TeamInput) (*domain.Team, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	t, err := s.build(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, t)
}

func (s *TeamService) save(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	updated, err := s.teams.Update(ctx, t)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("Team", t.ID)
	}
	if err != nil {
		return nil, storageFailure(ctx, "teams.Update", err)
	}
	return updated, nil
}

// Delete fails with ErrTeamInUse while a game still references the team.
func (s *TeamService) Delete(ctx context.Context, id int64) (*domain.Team, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.teams.Delete(ctx, id)
	switch {
	case errors.Is(err, store.ErrInUse):
		return nil, domain.ErrTeamInUse
	case errors.Is(err, store.ErrNotFound):
		return nil, domain.NotFound("Team", id)
	case err != nil:
		return nil, storageFailure(ctx, "teams.Delete", err)
	}
	return t, nil
}

// AddPlayer puts the player on the roster. It does not write when the player
// is already a member.
func (s *TeamService) AddPlayer(ctx context.Context, teamID, playerID int64) (*domain.Team, error) {
	t, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t.HasPlayer(playerID) {
		return t, nil
	}

	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, lookupFailure(ctx, "players.GetByID", "Player", playerID, err)
	}
	t.AddPlayer(p)
	return s.save(ctx, t)
}

// RemovePlayer takes the player off the roster. Non-members are ignored.
func (s *TeamService) RemovePlayer(ctx context.Context, teamID, playerID int64) (*domain.Team, error) {
	t, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !t.HasPlayer(playerID) {
		return t, nil
	}
	t.RemovePlayer(&domain.Player{ID: playerID})
	return s.save(ctx, t)
}
