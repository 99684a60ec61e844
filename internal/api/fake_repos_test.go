package api

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/service"
	"github.com/teamtrack/teamtrack/internal/store"
)

// memDB is an in-memory stand-in for PostgreSQL behind the service
// repositories. Aggregates are stored by pointer, which is enough for
// handler tests.
type memDB struct {
	mu      sync.Mutex
	nextID  int64
	users   []*domain.User
	players []*domain.Player
	coaches []*domain.Coach
	teams   []*domain.Team
	games   []*domain.Game
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) repos() service.Repositories {
	return service.Repositories{
		Users:   memUsers{db},
		Players: memPlayers{db},
		Coaches: memCoaches{db},
		Teams:   memTeams{db},
		Games:   memGames{db},
	}
}

func find[T any](items []T, match func(T) bool) (T, error) {
	for _, it := range items {
		if match(it) {
			return it, nil
		}
	}
	var zero T
	return zero, store.ErrNotFound
}

type memUsers struct{ db *memDB }

func (r memUsers) List(context.Context) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.users), nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.users, func(u *domain.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.users, func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.insertUser(u)
}

func (db *memDB) insertUser(u *domain.User) (*domain.User, error) {
	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, store.ErrDuplicateEmail
		}
	}
	cp := *u
	cp.ID = db.id()
	db.users = append(db.users, &cp)
	return &cp, nil
}

func (r memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, err := find(r.db.users, func(x *domain.User) bool { return x.ID == u.ID })
	if err != nil {
		return nil, err
	}
	*existing = *u
	return existing, nil
}

type memPlayers struct{ db *memDB }

func (r memPlayers) List(context.Context) ([]*domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.players), nil
}

func (r memPlayers) GetByID(_ context.Context, id int64) (*domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.players, func(p *domain.Player) bool { return p.ID == id })
}

func (r memPlayers) GetByUserID(_ context.Context, userID int64) (*domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.players, func(p *domain.Player) bool { return p.User.ID == userID })
}

func (r memPlayers) ListByIDs(_ context.Context, ids []int64) ([]*domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Player
	for _, p := range r.db.players {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlayers) Create(_ context.Context, u *domain.User) (*domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	created, err := r.db.insertUser(u)
	if err != nil {
		return nil, err
	}
	p := &domain.Player{ID: r.db.id(), User: created}
	r.db.players = append(r.db.players, p)
	return p, nil
}

type memCoaches struct{ db *memDB }

func (r memCoaches) List(context.Context) ([]*domain.Coach, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.coaches), nil
}

func (r memCoaches) GetByID(_ context.Context, id int64) (*domain.Coach, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.coaches, func(c *domain.Coach) bool { return c.ID == id })
}

func (r memCoaches) GetByUserID(_ context.Context, userID int64) (*domain.Coach, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.coaches, func(c *domain.Coach) bool { return c.User.ID == userID })
}

func (r memCoaches) Create(_ context.Context, u *domain.User) (*domain.Coach, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	created, err := r.db.insertUser(u)
	if err != nil {
		return nil, err
	}
	c := &domain.Coach{ID: r.db.id(), User: created}
	r.db.coaches = append(r.db.coaches, c)
	return c, nil
}

type memTeams struct{ db *memDB }

func (r memTeams) List(_ context.Context, f store.TeamFilter) ([]*domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Team
	for _, t := range r.db.teams {
		if f.IDs != nil && !slices.Contains(f.IDs, t.ID) {
			continue
		}
		if f.CoachID != 0 && t.Coach.ID != f.CoachID {
			continue
		}
		if f.UserID != 0 && !teamHasUser(t, f.UserID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func teamHasUser(t *domain.Team, userID int64) bool {
	if t.IsCoachedBy(userID) {
		return true
	}
	for _, p := range t.Players {
		if p.User.ID == userID {
			return true
		}
	}
	return false
}

func (r memTeams) GetByID(_ context.Context, id int64) (*domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.teams, func(t *domain.Team) bool { return t.ID == id })
}

func (r memTeams) Create(_ context.Context, t *domain.Team) (*domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *t
	cp.ID = r.db.id()
	r.db.teams = append(r.db.teams, &cp)
	return &cp, nil
}

func (r memTeams) Update(_ context.Context, t *domain.Team) (*domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, err := find(r.db.teams, func(x *domain.Team) bool { return x.ID == t.ID })
	if err != nil {
		return nil, err
	}
	*existing = *t
	return existing, nil
}

func (r memTeams) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, g := range r.db.games {
		if g.HasTeam(id) {
			return store.ErrInUse
		}
	}
	i := slices.IndexFunc(r.db.teams, func(t *domain.Team) bool { return t.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.teams = slices.Delete(r.db.teams, i, i+1)
	return nil
}

type memGames struct{ db *memDB }

func (r memGames) List(_ context.Context, f store.GameFilter) ([]*domain.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Game
	for _, g := range r.db.games {
		if f.ID != 0 && g.ID != f.ID {
			continue
		}
		if f.TeamID != 0 && !g.HasTeam(f.TeamID) {
			continue
		}
		if f.UserID != 0 && !teamHasUser(g.Teams[0], f.UserID) && !teamHasUser(g.Teams[1], f.UserID) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r memGames) GetByID(_ context.Context, id int64) (*domain.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return find(r.db.games, func(g *domain.Game) bool { return g.ID == id })
}

func (r memGames) Create(_ context.Context, g *domain.Game) (*domain.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *g
	cp.ID = r.db.id()
	r.db.games = append(r.db.games, &cp)
	return &cp, nil
}

func (r memGames) Update(_ context.Context, g *domain.Game) (*domain.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, err := find(r.db.games, func(x *domain.Game) bool { return x.ID == g.ID })
	if err != nil {
		return nil, err
	}
	*existing = *g
	return existing, nil
}

func (r memGames) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := slices.IndexFunc(r.db.games, func(g *domain.Game) bool { return g.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.games = slices.Delete(r.db.games, i, i+1)
	return nil
}

// plainHasher keeps tests fast; bcrypt is covered in the auth package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error)  { return "hashed:" + p, nil }
func (plainHasher) Compare(p, digest string) bool { return digest == "hashed:"+p }
