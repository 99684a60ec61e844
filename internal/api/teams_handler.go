package api

import (
	"context"
	"net/http"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/auth"
	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/service"
)

// teamsHandler groups team-related HTTP handlers. Writes are open to admins
// and to the coach who leads the team.
type teamsHandler struct {
	teams   *service.TeamService
	coaches *service.CoachService
	audit   auditor
}

func newTeamsHandler(teams *service.TeamService, coaches *service.CoachService, a auditor) *teamsHandler {
	return &teamsHandler{teams: teams, coaches: coaches, audit: a}
}

// List handles GET /api/v1/teams.
func (h *teamsHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	h.writeList(w, r, teams, err)
}

// ListByUser handles GET /api/v1/teams/user/{userId}: teams the user coaches
// or plays in.
func (h *teamsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	teams, err := h.teams.ListByUser(r.Context(), userID)
	h.writeList(w, r, teams, err)
}

// ListByCoach handles GET /api/v1/teams/coach/{coachId}.
func (h *teamsHandler) ListByCoach(w http.ResponseWriter, r *http.Request) {
	coachID, ok := pathID(w, r, "coachId")
	if !ok {
		return
	}
	teams, err := h.teams.ListByCoach(r.Context(), coachID)
	h.writeList(w, r, teams, err)
}

func (h *teamsHandler) writeList(w http.ResponseWriter, r *http.Request, teams []*domain.Team, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(teams))
}

// Get handles GET /api/v1/teams/{id}.
func (h *teamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.teams.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /api/v1/teams. A coach creates teams for themselves;
// when the body names no coach the caller's own coach record is used.
func (h *teamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.TeamInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if !h.claimCoach(w, r, &req) {
		return
	}

	t, err := h.teams.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionTeamCreate, "team", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/v1/teams/{id}.
func (h *teamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}
	var req service.TeamInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if !h.claimCoach(w, r, &req) {
		return
	}

	t, err := h.teams.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionTeamUpdate, "team", t.ID)
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/v1/teams/{id}.
func (h *teamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}
	t, err := h.teams.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionTeamDelete, "team", t.ID)
	writeJSON(w, http.StatusOK, t)
}

// AddPlayer handles PUT /api/v1/teams/{id}/players/{playerId}.
func (h *teamsHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, audit.ActionPlayerAdd, h.teams.AddPlayer)
}

// RemovePlayer handles DELETE /api/v1/teams/{id}/players/{playerId}.
func (h *teamsHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	h.roster(w, r, audit.ActionPlayerRemove, h.teams.RemovePlayer)
}

type rosterOp func(ctx context.Context, teamID, playerID int64) (*domain.Team, error)

func (h *teamsHandler) roster(w http.ResponseWriter, r *http.Request, action string, op rosterOp) {
	id, ok := h.owned(w, r)
	if !ok {
		return
	}
	playerID, ok := pathID(w, r, "playerId")
	if !ok {
		return
	}
	t, err := op(r.Context(), id, playerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, action, "team", t.ID)
	writeJSON(w, http.StatusOK, t)
}

// owned parses {id}, loads the team and checks that the caller may change it.
func (h *teamsHandler) owned(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, false
	}
	t, err := h.teams.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return 0, false
	}
	p := auth.PrincipalFromContext(r.Context())
	if !p.IsAdmin() && !t.IsCoachedBy(p.UserID) {
		writeError(w, http.StatusForbidden, "Only the team's coach or an admin can change this team.")
		return 0, false
	}
	return id, true
}

// claimCoach fills in or checks req.Coach for a coach caller. Admins may name
// any coach.
func (h *teamsHandler) claimCoach(w http.ResponseWriter, r *http.Request, req *service.TeamInput) bool {
	p := auth.PrincipalFromContext(r.Context())
	if p.IsAdmin() {
		return true
	}
	own, err := h.coaches.GetByUserID(r.Context(), p.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			writeError(w, http.StatusForbidden, msgForbidden)
			return false
		}
		writeServiceError(w, r, err)
		return false
	}
	if req.Coach == nil {
		req.Coach = &service.Ref{ID: own.ID}
		return true
	}
	if req.Coach.ID != own.ID {
		writeError(w, http.StatusForbidden, "Coaches can only manage their own teams.")
		return false
	}
	return true
}
