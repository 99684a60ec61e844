package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamQuery_NoFilter(t *testing.T) {
	sql, args, err := teamQuery(TeamFilter{}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT t.id, t.team_name, t.coach_id FROM teams t ORDER BY t.id", sql)
	assert.Empty(t, args)
}

func TestTeamQuery_ByIDs(t *testing.T) {
	sql, args, err := teamQuery(TeamFilter{IDs: []int64{3, 4}}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE t.id IN ($1,$2)")
	assert.Equal(t, []any{int64(3), int64(4)}, args)
}

func TestTeamQuery_ByUser(t *testing.T) {
	sql, args, err := teamQuery(TeamFilter{UserID: 9}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "c.user_id = $1")
	assert.Contains(t, sql, "p.user_id = $2")
	assert.Contains(t, sql, " OR ")
	assert.Equal(t, []any{int64(9), int64(9)}, args)
}

func TestTeamQuery_CombinedFiltersAreANDed(t *testing.T) {
	sql, args, err := teamQuery(TeamFilter{CoachID: 2, UserID: 5}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "t.coach_id = $1 AND (")
	assert.Equal(t, []any{int64(2), int64(5), int64(5)}, args)
}

func TestGameQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   GameFilter
		contains []string
		args     []any
	}{
		{"all", GameFilter{}, []string{"FROM games g ORDER BY g.date, g.id"}, nil},
		{"by id", GameFilter{ID: 7}, []string{"WHERE g.id = $1"}, []any{int64(7)}},
		{"by team", GameFilter{TeamID: 2}, []string{"gt.team_id = $1"}, []any{int64(2)}},
		{"by user", GameFilter{UserID: 4}, []string{"c.user_id = $1", "p.user_id = $2"}, []any{int64(4), int64(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := gameQuery(tt.filter).ToSql()
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, sql, want)
			}
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.ErrorIs(t, classify(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), ErrNotFound)

	dup := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, classify(dup), ErrDuplicateEmail)

	otherDup := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "players_user_id_key"}
	assert.NotErrorIs(t, classify(otherDup), ErrDuplicateEmail)

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "game_teams_team_id_fkey"}
	assert.ErrorIs(t, classify(fk), ErrInUse)

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}
