package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/teamtrack/internal/domain"
)

// memberRow is a players or coaches row joined with its user.
type memberRow struct {
	ID   int64
	User *domain.User
}

// listMembers reads table ("players" or "coaches") joined with users.
func (b *base) listMembers(ctx context.Context, db DBTX, table, where string, args ...any) ([]memberRow, error) {
	rows, err := db.Query(ctx,
		`SELECT m.id, `+userColumns+`
		 FROM `+table+` m JOIN users u ON u.id = m.user_id `+where+`
		 ORDER BY m.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []memberRow{}
	for rows.Next() {
		var id int64
		u, err := b.scanUser(rows.Scan, &id)
		if err != nil {
			return nil, err
		}
		out = append(out, memberRow{ID: id, User: u})
	}
	return out, rows.Err()
}

func (b *base) getMember(ctx context.Context, table, where string, arg any) (memberRow, error) {
	rows, err := b.listMembers(ctx, b.db, table, where, arg)
	if err != nil {
		return memberRow{}, err
	}
	if len(rows) == 0 {
		return memberRow{}, ErrNotFound
	}
	return rows[0], nil
}

// createMember inserts the user and its wrapper row in one transaction.
func (b *base) createMember(ctx context.Context, table string, in *domain.User) (memberRow, error) {
	var out memberRow
	err := b.inTx(ctx, func(tx pgx.Tx) error {
		u, err := b.insertUser(ctx, tx, in)
		if err != nil {
			return err
		}
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO `+table+` (user_id) VALUES ($1) RETURNING id`, u.ID,
		).Scan(&id); err != nil {
			return classify(err)
		}
		out = memberRow{ID: id, User: u}
		return nil
	})
	return out, err
}

// PlayerStore provides database operations for players.
type PlayerStore struct {
	*base
}

func toPlayers(rows []memberRow) []*domain.Player {
	out := make([]*domain.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Player{ID: r.ID, User: r.User})
	}
	return out
}

func (s *PlayerStore) List(ctx context.Context) ([]*domain.Player, error) {
	rows, err := s.listMembers(ctx, s.db, "players", "")
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return toPlayers(rows), nil
}

func (s *PlayerStore) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	r, err := s.getMember(ctx, "players", "WHERE m.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting player by id: %w", err)
	}
	return &domain.Player{ID: r.ID, User: r.User}, nil
}

func (s *PlayerStore) GetByUserID(ctx context.Context, userID int64) (*domain.Player, error) {
	r, err := s.getMember(ctx, "players", "WHERE m.user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("getting player by user id: %w", err)
	}
	return &domain.Player{ID: r.ID, User: r.User}, nil
}

// ListByIDs returns the players among ids that exist, ordered by id.
func (s *PlayerStore) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Player, error) {
	rows, err := s.listMembers(ctx, s.db, "players", "WHERE m.id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("listing players by id: %w", err)
	}
	return toPlayers(rows), nil
}

// Create stores the user and the player row atomically.
func (s *PlayerStore) Create(ctx context.Context, u *domain.User) (*domain.Player, error) {
	r, err := s.createMember(ctx, "players", u)
	if err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return &domain.Player{ID: r.ID, User: r.User}, nil
}

// CoachStore provides database operations for coaches.
type CoachStore struct {
	*base
}

func (s *CoachStore) List(ctx context.Context) ([]*domain.Coach, error) {
	rows, err := s.listMembers(ctx, s.db, "coaches", "")
	if err != nil {
		return nil, fmt.Errorf("listing coaches: %w", err)
	}
	out := make([]*domain.Coach, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Coach{ID: r.ID, User: r.User})
	}
	return out, nil
}

func (s *CoachStore) GetByID(ctx context.Context, id int64) (*domain.Coach, error) {
	r, err := s.getMember(ctx, "coaches", "WHERE m.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting coach by id: %w", err)
	}
	return &domain.Coach{ID: r.ID, User: r.User}, nil
}

func (s *CoachStore) GetByUserID(ctx context.Context, userID int64) (*domain.Coach, error) {
	r, err := s.getMember(ctx, "coaches", "WHERE m.user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("getting coach by user id: %w", err)
	}
	return &domain.Coach{ID: r.ID, User: r.User}, nil
}

// Create stores the user and the coach row atomically.
func (s *CoachStore) Create(ctx context.Context, u *domain.User) (*domain.Coach, error) {
	r, err := s.createMember(ctx, "coaches", u)
	if err != nil {
		return nil, fmt.Errorf("creating coach: %w", err)
	}
	return &domain.Coach{ID: r.ID, User: r.User}, nil
}
