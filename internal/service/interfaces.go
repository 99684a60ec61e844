package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/store"
)

type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
}

// PlayerRepository creates the player's user in the same transaction.
type PlayerRepository interface {
	List(ctx context.Context) ([]*domain.Player, error)
	GetByID(ctx context.Context, id int64) (*domain.Player, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Player, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*domain.Player, error)
	Create(ctx context.Context, u *domain.User) (*domain.Player, error)
}

// CoachRepository creates the coach's user in the same transaction.
type CoachRepository interface {
	List(ctx context.Context) ([]*domain.Coach, error)
	GetByID(ctx context.Context, id int64) (*domain.Coach, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Coach, error)
	Create(ctx context.Context, u *domain.User) (*domain.Coach, error)
}

type TeamRepository interface {
	List(ctx context.Context, f store.TeamFilter) ([]*domain.Team, error)
	GetByID(ctx context.Context, id int64) (*domain.Team, error)
	Create(ctx context.Context, t *domain.Team) (*domain.Team, error)
	Update(ctx context.Context, t *domain.Team) (*domain.Team, error)
	Delete(ctx context.Context, id int64) error
}

type GameRepository interface {
	List(ctx context.Context, f store.GameFilter) ([]*domain.Game, error)
	GetByID(ctx context.Context, id int64) (*domain.Game, error)
	Create(ctx context.Context, g *domain.Game) (*domain.Game, error)
	Update(ctx context.Context, g *domain.Game) (*domain.Game, error)
	Delete(ctx context.Context, id int64) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}
