package api

import (
	"net/http"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/metrics"
	"github.com/teamtrack/teamtrack/internal/service"
)

type playersHandler struct {
	players *service.PlayerService
	users   *service.UserService
	metrics *metrics.Metrics
	audit   auditor
}

func newPlayersHandler(players *service.PlayerService, users *service.UserService, m *metrics.Metrics, a auditor) *playersHandler {
	return &playersHandler{players: players, users: users, metrics: m, audit: a}
}

// List handles GET /api/v1/players.
func (h *playersHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(players))
}

// Get handles GET /api/v1/players/{id}.
func (h *playersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.players.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetByUser handles GET /api/v1/players/user/{userId}.
func (h *playersHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	p, err := h.players.GetByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/v1/players (admin only).
func (h *playersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	p, err := h.users.RegisterPlayer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.metrics.IncRegistration("player")
	h.audit.log(r, audit.ActionRegister, "player", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

type coachesHandler struct {
	coaches *service.CoachService
	users   *service.UserService
	metrics *metrics.Metrics
	audit   auditor
}

func newCoachesHandler(coaches *service.CoachService, users *service.UserService, m *metrics.Metrics, a auditor) *coachesHandler {
	return &coachesHandler{coaches: coaches, users: users, metrics: m, audit: a}
}

// List handles GET /api/v1/coaches.
func (h *coachesHandler) List(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.coaches.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(coaches))
}

// Get handles GET /api/v1/coaches/{id}.
func (h *coachesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.coaches.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetByUser handles GET /api/v1/coaches/user/{userId}.
func (h *coachesHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	c, err := h.coaches.GetByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create handles POST /api/v1/coaches (admin only).
func (h *coachesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	c, err := h.users.RegisterCoach(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.metrics.IncRegistration("coach")
	h.audit.log(r, audit.ActionRegister, "coach", c.ID)
	writeJSON(w, http.StatusCreated, c)
}
