package api

import (
	"net/http"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/service"
)

// gamesHandler serves game lookups for everyone and writes for coaches and
// admins.
type gamesHandler struct {
	games *service.GameService
	audit auditor
}

func newGamesHandler(games *service.GameService, a auditor) *gamesHandler {
	return &gamesHandler{games: games, audit: a}
}

// List handles GET /api/v1/games.
func (h *gamesHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.List(r.Context())
	h.writeList(w, r, games, err)
}

// ListByTeam handles GET /api/v1/games/team/{teamId}.
func (h *gamesHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamId")
	if !ok {
		return
	}
	games, err := h.games.ListByTeam(r.Context(), teamID)
	h.writeList(w, r, games, err)
}

// ListByUser handles GET /api/v1/games/user/{userId}.
func (h *gamesHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	games, err := h.games.ListByUser(r.Context(), userID)
	h.writeList(w, r, games, err)
}

func (h *gamesHandler) writeList(w http.ResponseWriter, r *http.Request, games []*domain.Game, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(games))
}

// Get handles GET /api/v1/games/{id}.
func (h *gamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := h.games.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Create handles POST /api/v1/games.
func (h *gamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.GameInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	g, err := h.games.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionGameCreate, "game", g.ID)
	writeJSON(w, http.StatusCreated, g)
}

// Update handles PUT /api/v1/games/{id}. Omitted date and result keep their
// stored values.
func (h *gamesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.GameInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	g, err := h.games.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionGameUpdate, "game", g.ID)
	writeJSON(w, http.StatusOK, g)
}

// Delete handles DELETE /api/v1/games/{id}.
func (h *gamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := h.games.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.log(r, audit.ActionGameDelete, "game", g.ID)
	writeJSON(w, http.StatusOK, g)
}
