package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/mock"
	"github.com/teamtrack/teamtrack/internal/store"
)

func newTestGameService(ctrl *gomock.Controller) (*GameService, *mock.MockGameRepository, *mock.MockTeamRepository) {
	games := mock.NewMockGameRepository(ctrl)
	teams := mock.NewMockTeamRepository(ctrl)
	return NewGameService(games, teams), games, teams
}

func strPtr(s string) *string { return &s }

func TestGameCreateThenUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, teams := newTestGameService(ctrl)
	ctx := context.Background()

	teamA, teamB := teamFixture(1), teamFixture(2)
	teams.EXPECT().List(ctx, store.TeamFilter{IDs: []int64{1, 2}}).Return([]*domain.Team{teamA, teamB}, nil).Times(2)

	var stored *domain.Game
	games.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, g *domain.Game) (*domain.Game, error) {
			saved := *g
			saved.ID = 11
			stored = &saved
			return stored, nil
		})

	created, err := svc.Create(ctx, GameInput{Date: "2024-12-17", Teams: []Ref{{ID: 1}, {ID: 2}}})
	require.NoError(t, err)
	assert.Equal(t, "", created.Result)
	assert.Equal(t, time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC), created.Date)

	games.EXPECT().GetByID(ctx, int64(11)).DoAndReturn(
		func(context.Context, int64) (*domain.Game, error) { return stored, nil })
	games.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, g *domain.Game) (*domain.Game, error) { return g, nil })

	updated, err := svc.Update(ctx, 11, GameInput{Result: strPtr("1-0"), Teams: []Ref{{ID: 1}, {ID: 2}}})
	require.NoError(t, err)
	assert.Equal(t, "1-0", updated.Result)
	assert.Equal(t, created.Date, updated.Date, "omitted date keeps the stored value")
	assert.True(t, updated.HasTeam(1))
	assert.True(t, updated.HasTeam(2))
}

func TestGameCreate_ShapeErrorsBeforeLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, _ := newTestGameService(ctrl)
	ctx := context.Background()

	tests := []struct {
		name string
		in   GameInput
		want string
	}{
		{"no date", GameInput{Teams: []Ref{{ID: 1}, {ID: 2}}}, "Game date is required."},
		{"no teams", GameInput{Date: "2024-12-17"}, "Teams are required."},
		{"three teams", GameInput{Date: "2024-12-17", Teams: []Ref{{ID: 1}, {ID: 2}, {ID: 3}}}, "Exactly two teams are required."},
		{"one team", GameInput{Date: "2024-12-17", Teams: []Ref{{ID: 1}}}, "Exactly two teams are required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestGameCreate_UnknownTeam(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, teams := newTestGameService(ctrl)
	ctx := context.Background()

	teams.EXPECT().List(ctx, store.TeamFilter{IDs: []int64{1, 8}}).Return([]*domain.Team{teamFixture(1)}, nil)

	_, err := svc.Create(ctx, GameInput{Date: "2024-12-17", Teams: []Ref{{ID: 1}, {ID: 8}}})
	assert.Equal(t, "Team with id 8 does not exist.", err.Error())
}

func TestGameCreate_SameTeamTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, teams := newTestGameService(ctrl)
	ctx := context.Background()

	teams.EXPECT().List(ctx, store.TeamFilter{IDs: []int64{1, 1}}).Return([]*domain.Team{teamFixture(1)}, nil)

	_, err := svc.Create(ctx, GameInput{Date: "2024-12-17", Teams: []Ref{{ID: 1}, {ID: 1}}})
	assert.ErrorIs(t, err, domain.ErrGameTeamsDistinct)
}

func TestGameUpdate_TeamsAlwaysRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, _ := newTestGameService(ctrl)
	ctx := context.Background()

	games.EXPECT().GetByID(ctx, int64(11)).Return(&domain.Game{ID: 11, Date: time.Now()}, nil)

	_, err := svc.Update(ctx, 11, GameInput{Result: strPtr("2-2")})
	assert.ErrorIs(t, err, domain.ErrTeamsRequired)
}

func TestGameUpdate_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, _ := newTestGameService(ctrl)
	ctx := context.Background()

	games.EXPECT().GetByID(ctx, int64(404)).Return(nil, store.ErrNotFound)

	_, err := svc.Update(ctx, 404, GameInput{Teams: []Ref{{ID: 1}, {ID: 2}}})
	assert.Equal(t, "Game with id 404 does not exist.", err.Error())
}

func TestGameDelete_MissingNeverCallsStoreDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, _ := newTestGameService(ctrl)
	ctx := context.Background()

	games.EXPECT().GetByID(ctx, int64(404)).Return(nil, store.ErrNotFound)
	games.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Delete(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, "Game with id 404 does not exist.", err.Error())
}

func TestGameDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, _ := newTestGameService(ctrl)
	ctx := context.Background()

	g := &domain.Game{ID: 3}
	games.EXPECT().GetByID(ctx, int64(3)).Return(g, nil)
	games.EXPECT().Delete(ctx, int64(3)).Return(nil)

	deleted, err := svc.Delete(ctx, 3)
	require.NoError(t, err)
	assert.Same(t, g, deleted)
}

func TestGameListings(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, games, _ := newTestGameService(ctrl)
	ctx := context.Background()

	games.EXPECT().List(ctx, store.GameFilter{}).Return([]*domain.Game{{ID: 1}}, nil)
	games.EXPECT().List(ctx, store.GameFilter{TeamID: 2}).Return([]*domain.Game{}, nil)
	games.EXPECT().List(ctx, store.GameFilter{UserID: 3}).Return([]*domain.Game{{ID: 1}, {ID: 2}}, nil)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	byTeam, err := svc.ListByTeam(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, byTeam)

	byUser, err := svc.ListByUser(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}
