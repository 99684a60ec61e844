package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo admin, coaches, players, teams and a game",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var demoAdmin = service.RegisterInput{
	FirstName: "Adje", LastName: "Min", Email: "admin@teamtrack.be",
	PhoneNumber: "0497000030", Password: "Admin123!", Role: "admin",
}

var demoCoaches = []service.RegisterInput{
	{FirstName: "Bob", LastName: "Peeters", Email: "bobpeeters@teamtrack.be", PhoneNumber: "0497000000", Password: "Bob123!"},
	{FirstName: "Aad", LastName: "De Mos", Email: "aaddemos@teamtrack.be", PhoneNumber: "0497000007", Password: "Aad123!"},
}

var demoPlayers = []service.RegisterInput{
	{FirstName: "Wayne", LastName: "Rooney", Email: "waynerooney@teamtrack.be", PhoneNumber: "0497000001", Password: "Wayne123!"},
	{FirstName: "Cristiano", LastName: "Ronaldo", Email: "cristianoronaldo@teamtrack.be", PhoneNumber: "0497000002", Password: "Cristiano123!"},
	{FirstName: "Lionel", LastName: "Messi", Email: "lionelmessi@teamtrack.be", PhoneNumber: "0497000003", Password: "Lionel132!"},
	{FirstName: "Rajo", LastName: "Timmermans", Email: "rajotimmermans@teamtrack.be", PhoneNumber: "0497000004", Password: "Rajo123!"},
	{FirstName: "Sander", LastName: "Coemans", Email: "sandercoemans@teamtrack.be", PhoneNumber: "0497000005", Password: "Sander123!"},
	{FirstName: "Eden", LastName: "Hazard", Email: "edenhazard@teamtrack.be", PhoneNumber: "0497000006", Password: "Eden123!"},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("seed", cfg.Log.Level)

	ctx := log.WithContext(context.Background())
	a, err := newApp(ctx, cfg, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer a.pool.Close()

	n, err := a.stores.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		log.Info().Int("users", n).Msg("database already has users, skipping seed")
		return nil
	}

	if err := seedDemo(ctx, a.services); err != nil {
		return err
	}
	log.Info().Msg("demo data seeded")
	return nil
}

// seedDemo creates two teams of three players, each with its own coach, and
// one played game between them.
func seedDemo(ctx context.Context, svc *service.Services) error {
	if _, err := svc.Users.Register(ctx, demoAdmin); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	coachRefs := make([]service.Ref, 0, len(demoCoaches))
	for _, in := range demoCoaches {
		c, err := svc.Users.RegisterCoach(ctx, in)
		if err != nil {
			return fmt.Errorf("seeding coach %s: %w", in.Email, err)
		}
		coachRefs = append(coachRefs, service.Ref{ID: c.ID})
	}

	playerRefs := make([]service.Ref, 0, len(demoPlayers))
	for _, in := range demoPlayers {
		p, err := svc.Users.RegisterPlayer(ctx, in)
		if err != nil {
			return fmt.Errorf("seeding player %s: %w", in.Email, err)
		}
		playerRefs = append(playerRefs, service.Ref{ID: p.ID})
	}

	teamNames := []string{"Maaskantje United", "Real Woensel"}
	teamRefs := make([]service.Ref, 0, len(teamNames))
	for i, name := range teamNames {
		t, err := svc.Teams.Create(ctx, service.TeamInput{
			TeamName: name,
			Coach:    &coachRefs[i],
			Players:  playerRefs[i*3 : i*3+3],
		})
		if err != nil {
			return fmt.Errorf("seeding team %s: %w", name, err)
		}
		teamRefs = append(teamRefs, service.Ref{ID: t.ID})
	}

	result := "1-0"
	if _, err := svc.Games.Create(ctx, service.GameInput{
		Date:   "2024-12-17",
		Result: &result,
		Teams:  teamRefs,
	}); err != nil {
		return fmt.Errorf("seeding game: %w", err)
	}
	return nil
}
