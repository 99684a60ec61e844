package service

import (
	"context"
	"errors"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/store"
)

// PlayerService provides read access to players. Players are created through
// UserService so that email checks and hashing happen in one place.
type PlayerService struct {
	players PlayerRepository
}

func NewPlayerService(players PlayerRepository) *PlayerService {
	return &PlayerService{players: players}
}

func (s *PlayerService) List(ctx context.Context) ([]*domain.Player, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, storageFailure(ctx, "players.List", err)
	}
	return players, nil
}

func (s *PlayerService) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, "players.GetByID", "Player", id, err)
	}
	return p, nil
}

func (s *PlayerService) GetByUserID(ctx context.Context, userID int64) (*domain.Player, error) {
	p, err := s.players.GetByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.NotFoundError{Kind: "Player", Field: "user id", Value: userID}
	}
	if err != nil {
		return nil, storageFailure(ctx, "players.GetByUserID", err)
	}
	return p, nil
}

// CoachService provides read access to coaches.
type CoachService struct {
	coaches CoachRepository
}

func NewCoachService(coaches CoachRepository) *CoachService {
	return &CoachService{coaches: coaches}
}

func (s *CoachService) List(ctx context.Context) ([]*domain.Coach, error) {
	coaches, err := s.coaches.List(ctx)
	if err != nil {
		return nil, storageFailure(ctx, "coaches.List", err)
	}
	return coaches, nil
}

func (s *CoachService) GetByID(ctx context.Context, id int64) (*domain.Coach, error) {
	c, err := s.coaches.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, "coaches.GetByID", "Coach", id, err)
	}
	return c, nil
}

func (s *CoachService) GetByUserID(ctx context.Context, userID int64) (*domain.Coach, error) {
	c, err := s.coaches.GetByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.NotFoundError{Kind: "Coach", Field: "user id", Value: userID}
	}
	if err != nil {
		return nil, storageFailure(ctx, "coaches.GetByUserID", err)
	}
	return c, nil
}
