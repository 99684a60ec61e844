// Package service implements the TeamTrack use cases on top of the domain
// model and the repositories.
package service

// Repositories groups the persistence dependencies.
type Repositories struct {
	Users   UserRepository
	Players PlayerRepository
	Coaches CoachRepository
	Teams   TeamRepository
	Games   GameRepository
}

// Services is the full set of use cases handed to the transport layer.
type Services struct {
	Users   *UserService
	Players *PlayerService
	Coaches *CoachService
	Teams   *TeamService
	Games   *GameService
}

func New(repos Repositories, hasher PasswordHasher, tokens TokenIssuer) *Services {
	return &Services{
		Users:   NewUserService(repos.Users, repos.Players, repos.Coaches, hasher, tokens),
		Players: NewPlayerService(repos.Players),
		Coaches: NewCoachService(repos.Coaches),
		Teams:   NewTeamService(repos.Teams, repos.Coaches, repos.Players),
		Games:   NewGameService(repos.Games, repos.Teams),
	}
}

// Ref points at an existing entity by id, e.g. {"id": 3}.
type Ref struct {
	ID int64 `json:"id"`
}
