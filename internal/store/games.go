package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/teamtrack/internal/domain"
)

// GameFilter narrows List. Zero fields are ignored; set fields are ANDed.
type GameFilter struct {
	ID     int64
	TeamID int64
	// UserID matches games of any team the user coaches or plays in.
	UserID int64
}

// GameStore provides database operations for games.
type GameStore struct {
	*base
	teams *TeamStore
}

func gameQuery(f GameFilter) sq.SelectBuilder {
	q := psql.Select("g.id", "g.date", "g.result").From("games g").OrderBy("g.date", "g.id")
	if f.ID != 0 {
		q = q.Where(sq.Eq{"g.id": f.ID})
	}
	if f.TeamID != 0 {
		q = q.Where(sq.Expr("g.id IN (SELECT gt.game_id FROM game_teams gt WHERE gt.team_id = ?)", f.TeamID))
	}
	if f.UserID != 0 {
		q = q.Where(sq.Expr(
			`g.id IN (SELECT gt.game_id FROM game_teams gt JOIN teams t ON t.id = gt.team_id
			 WHERE t.coach_id IN (SELECT c.id FROM coaches c WHERE c.user_id = ?)
			    OR t.id IN (SELECT tp.team_id FROM team_players tp JOIN players p ON p.id = tp.player_id WHERE p.user_id = ?))`,
			f.UserID, f.UserID))
	}
	return q
}

// List returns games matching f with both teams fully loaded.
func (s *GameStore) List(ctx context.Context, f GameFilter) ([]*domain.Game, error) {
	games, err := s.load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

func (s *GameStore) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	games, err := s.load(ctx, GameFilter{ID: id})
	if err != nil {
		return nil, fmt.Errorf("getting game by id: %w", err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("getting game by id: %w", ErrNotFound)
	}
	return games[0], nil
}

func (s *GameStore) load(ctx context.Context, f GameFilter) ([]*domain.Game, error) {
	query, args, err := gameQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building game query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	games := []*domain.Game{}
	for rows.Next() {
		g := &domain.Game{}
		var date time.Time
		if err := rows.Scan(&g.ID, &date, &g.Result); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning game row: %w", err)
		}
		g.Date = date.UTC()
		games = append(games, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return games, nil
	}

	gameIDs := make([]int64, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}

	linkRows, err := s.db.Query(ctx,
		`SELECT game_id, team_id FROM game_teams
		 WHERE game_id = ANY($1) ORDER BY game_id, position`, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("loading game teams: %w", err)
	}
	links := map[int64][]int64{}
	teamIDs := []int64{}
	seen := map[int64]bool{}
	for linkRows.Next() {
		var gameID, teamID int64
		if err := linkRows.Scan(&gameID, &teamID); err != nil {
			linkRows.Close()
			return nil, err
		}
		links[gameID] = append(links[gameID], teamID)
		if !seen[teamID] {
			seen[teamID] = true
			teamIDs = append(teamIDs, teamID)
		}
	}
	linkRows.Close()
	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	teams, err := s.teams.load(ctx, s.db, TeamFilter{IDs: teamIDs})
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	byID := make(map[int64]*domain.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	for _, g := range games {
		g.Teams = make([]*domain.Team, 0, 2)
		for _, id := range links[g.ID] {
			if t, ok := byID[id]; ok {
				g.Teams = append(g.Teams, t)
			}
		}
	}
	return games, nil
}

func writeGameTeams(ctx context.Context, tx pgx.Tx, g *domain.Game) error {
	if _, err := tx.Exec(ctx, `DELETE FROM game_teams WHERE game_id = $1`, g.ID); err != nil {
		return err
	}
	for pos, t := range g.Teams {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_teams (game_id, team_id, position) VALUES ($1, $2, $3)`,
			g.ID, t.ID, pos); err != nil {
			return classify(err)
		}
	}
	return nil
}

// Create inserts the game and links both teams in one transaction.
func (s *GameStore) Create(ctx context.Context, g *domain.Game) (*domain.Game, error) {
	var out *domain.Game
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		saved := *g
		if err := tx.QueryRow(ctx,
			`INSERT INTO games (date, result) VALUES ($1, $2) RETURNING id`,
			g.Date, g.Result,
		).Scan(&saved.ID); err != nil {
			return classify(err)
		}
		if err := writeGameTeams(ctx, tx, &saved); err != nil {
			return err
		}
		out = &saved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return out, nil
}

// Update overwrites date and result and relinks the teams.
func (s *GameStore) Update(ctx context.Context, g *domain.Game) (*domain.Game, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE games SET date = $2, result = $3 WHERE id = $1`, g.ID, g.Date, g.Result)
		if err != nil {
			return classify(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return writeGameTeams(ctx, tx, g)
	})
	if err != nil {
		return nil, fmt.Errorf("updating game: %w", err)
	}
	out := *g
	return &out, nil
}

func (s *GameStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting game: %w", ErrNotFound)
	}
	return nil
}
