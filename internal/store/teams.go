package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/teamtrack/internal/domain"
)

// TeamFilter narrows List. Zero fields are ignored; set fields are ANDed.
type TeamFilter struct {
	IDs     []int64
	CoachID int64
	// UserID matches teams the user coaches or plays in.
	UserID int64
}

// TeamStore provides database operations for teams and their rosters.
type TeamStore struct {
	*base
}

func teamQuery(f TeamFilter) sq.SelectBuilder {
	q := psql.Select("t.id", "t.team_name", "t.coach_id").From("teams t").OrderBy("t.id")
	if f.IDs != nil {
		q = q.Where(sq.Eq{"t.id": f.IDs})
	}
	if f.CoachID != 0 {
		q = q.Where(sq.Eq{"t.coach_id": f.CoachID})
	}
	if f.UserID != 0 {
		q = q.Where(sq.Or{
			sq.Expr("t.coach_id IN (SELECT c.id FROM coaches c WHERE c.user_id = ?)", f.UserID),
			sq.Expr("t.id IN (SELECT tp.team_id FROM team_players tp JOIN players p ON p.id = tp.player_id WHERE p.user_id = ?)", f.UserID),
		})
	}
	return q
}

// List returns full team aggregates (coach, roster, users) matching f.
func (s *TeamStore) List(ctx context.Context, f TeamFilter) ([]*domain.Team, error) {
	teams, err := s.load(ctx, s.db, f)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return teams, nil
}

func (s *TeamStore) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	teams, err := s.load(ctx, s.db, TeamFilter{IDs: []int64{id}})
	if err != nil {
		return nil, fmt.Errorf("getting team by id: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("getting team by id: %w", ErrNotFound)
	}
	return teams[0], nil
}

func (s *TeamStore) load(ctx context.Context, db DBTX, f TeamFilter) ([]*domain.Team, error) {
	query, args, err := teamQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building team query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	teams := []*domain.Team{}
	coachOf := map[int64]int64{}
	for rows.Next() {
		t := &domain.Team{Players: []*domain.Player{}}
		var coachID int64
		if err := rows.Scan(&t.ID, &t.TeamName, &coachID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		coachOf[t.ID] = coachID
		teams = append(teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return teams, nil
	}

	teamIDs := make([]int64, 0, len(teams))
	coachIDs := make([]int64, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
		coachIDs = append(coachIDs, coachOf[t.ID])
	}

	coaches, err := s.listMembers(ctx, db, "coaches", "WHERE m.id = ANY($1)", coachIDs)
	if err != nil {
		return nil, fmt.Errorf("loading coaches: %w", err)
	}
	byCoach := make(map[int64]*domain.Coach, len(coaches))
	for _, c := range coaches {
		byCoach[c.ID] = &domain.Coach{ID: c.ID, User: c.User}
	}

	roster, err := s.loadRosters(ctx, db, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("loading rosters: %w", err)
	}

	for _, t := range teams {
		t.Coach = byCoach[coachOf[t.ID]]
		if players, ok := roster[t.ID]; ok {
			t.Players = players
		}
	}
	return teams, nil
}

func (s *TeamStore) loadRosters(ctx context.Context, db DBTX, teamIDs []int64) (map[int64][]*domain.Player, error) {
	rows, err := db.Query(ctx,
		`SELECT tp.team_id, p.id, `+userColumns+`
		 FROM team_players tp
		 JOIN players p ON p.id = tp.player_id
		 JOIN users u ON u.id = p.user_id
		 WHERE tp.team_id = ANY($1)
		 ORDER BY tp.team_id, p.id`, teamIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64][]*domain.Player{}
	for rows.Next() {
		var teamID, playerID int64
		u, err := s.scanUser(rows.Scan, &teamID, &playerID)
		if err != nil {
			return nil, err
		}
		out[teamID] = append(out[teamID], &domain.Player{ID: playerID, User: u})
	}
	return out, rows.Err()
}

func (s *TeamStore) writeRoster(ctx context.Context, tx pgx.Tx, t *domain.Team) error {
	if _, err := tx.Exec(ctx, `DELETE FROM team_players WHERE team_id = $1`, t.ID); err != nil {
		return err
	}
	ids := t.PlayerIDs()
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO team_players (team_id, player_id)
		 SELECT $1, unnest($2::bigint[])`, t.ID, ids)
	return classify(err)
}

// Create inserts the team and its roster in one transaction.
func (s *TeamStore) Create(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	var out *domain.Team
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO teams (team_name, coach_id) VALUES ($1, $2) RETURNING id`,
			t.TeamName, t.Coach.ID,
		).Scan(&id); err != nil {
			return classify(err)
		}

		saved := *t
		saved.ID = id
		if err := s.writeRoster(ctx, tx, &saved); err != nil {
			return err
		}
		out = &saved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	return out, nil
}

// Update replaces name, coach and the whole roster.
func (s *TeamStore) Update(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE teams SET team_name = $2, coach_id = $3 WHERE id = $1`,
			t.ID, t.TeamName, t.Coach.ID)
		if err != nil {
			return classify(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return s.writeRoster(ctx, tx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("updating team: %w", err)
	}
	out := *t
	return &out, nil
}

// Delete removes the team and its roster links. Teams still referenced by a
// game yield ErrInUse.
func (s *TeamStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting team: %w", ErrNotFound)
	}
	return nil
}
