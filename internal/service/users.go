package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/store"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// ProfileInput replaces a user's profile. Password is never touched and role
// may be repeated but not changed.
type ProfileInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role,omitempty"`
}

// AuthenticationResponse is returned by a successful login.
type AuthenticationResponse struct {
	Message     string      `json:"message"`
	Token       string      `json:"token"`
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	PhoneNumber string      `json:"phoneNumber"`
	FullName    string      `json:"fullname"`
}

// UserService handles registration, login and profile updates.
type UserService struct {
	users   UserRepository
	players PlayerRepository
	coaches CoachRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
}

func NewUserService(users UserRepository, players PlayerRepository, coaches CoachRepository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{users: users, players: players, coaches: coaches, hasher: hasher, tokens: tokens}
}

// prepare validates in, rejects a taken email and hashes the password.
func (s *UserService) prepare(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := domain.NewUser(domain.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    in.Password,
		Role:        domain.Role(strings.ToLower(strings.TrimSpace(in.Role))),
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, u.Email, 0); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(u.Password)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}
	u.Password = digest
	return u, nil
}

// ensureEmailFree fails with ErrEmailTaken when email belongs to a user other
// than exceptID.
func (s *UserService) ensureEmailFree(ctx context.Context, email string, exceptID int64) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return storageFailure(ctx, "users.GetByEmail", err)
	case existing.ID != exceptID:
		return domain.ErrEmailTaken
	}
	return nil
}

// createFailure maps the unique-email race onto ErrEmailTaken.
func createFailure(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrDuplicateEmail) {
		return domain.ErrEmailTaken
	}
	return storageFailure(ctx, op, err)
}

// Register creates the account and, for coaches and players, the matching
// wrapper row in the same transaction. It returns the stored user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	switch u.Role {
	case domain.RolePlayer:
		p, err := s.players.Create(ctx, u)
		if err != nil {
			return nil, createFailure(ctx, "players.Create", err)
		}
		return p.User, nil
	case domain.RoleCoach:
		c, err := s.coaches.Create(ctx, u)
		if err != nil {
			return nil, createFailure(ctx, "coaches.Create", err)
		}
		return c.User, nil
	case domain.RoleAdmin:
		created, err := s.users.Create(ctx, u)
		if err != nil {
			return nil, createFailure(ctx, "users.Create", err)
		}
		return created, nil
	}
	return nil, domain.ErrRoleInvalid
}

// RegisterPlayer registers in as a player regardless of in.Role.
func (s *UserService) RegisterPlayer(ctx context.Context, in RegisterInput) (*domain.Player, error) {
	in.Role = string(domain.RolePlayer)
	u, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.players.Create(ctx, u)
	if err != nil {
		return nil, createFailure(ctx, "players.Create", err)
	}
	return p, nil
}

// RegisterCoach registers in as a coach regardless of in.Role.
func (s *UserService) RegisterCoach(ctx context.Context, in RegisterInput) (*domain.Coach, error) {
	in.Role = string(domain.RoleCoach)
	u, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	c, err := s.coaches.Create(ctx, u)
	if err != nil {
		return nil, createFailure(ctx, "coaches.Create", err)
	}
	return c, nil
}

// Authenticate checks the credentials and issues a token. Unknown emails and
// wrong passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthenticationResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageFailure(ctx, "users.GetByEmail", err)
	}

	if !s.hasher.Compare(password, u.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("authenticating user %d: %w", u.ID, err)
	}

	return &AuthenticationResponse{
		Message:     "Authentication successful",
		Token:       token,
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName(),
	}, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storageFailure(ctx, "users.List", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, "users.GetByID", "User", id, err)
	}
	return u, nil
}

// UpdateProfile rebuilds the user from in, carrying the stored password and
// role forward.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*domain.User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r := strings.TrimSpace(in.Role); r != "" && domain.Role(strings.ToLower(r)) != existing.Role {
		return nil, domain.ErrRoleImmutable
	}

	u, err := domain.NewUser(domain.User{
		ID:          existing.ID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    existing.Password,
		Role:        existing.Role,
	})
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(u.Email, existing.Email) {
		if err := s.ensureEmailFree(ctx, u.Email, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.Update(ctx, u)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("User", id)
	}
	if err != nil {
		return nil, createFailure(ctx, "users.Update", err)
	}
	return updated, nil
}
