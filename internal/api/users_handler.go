package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/auth"
	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/metrics"
	"github.com/teamtrack/teamtrack/internal/service"
)

// usersHandler serves registration, login and profile routes.
type usersHandler struct {
	users   *service.UserService
	metrics *metrics.Metrics
	audit   auditor
}

func newUsersHandler(users *service.UserService, m *metrics.Metrics, a auditor) *usersHandler {
	return &usersHandler{users: users, metrics: m, audit: a}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/users/register. Anyone may register as a
// coach or player; creating an admin takes an admin bearer token.
func (h *usersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if role, err := domain.ParseRole(req.Role); err == nil && role == domain.RoleAdmin {
		if !auth.PrincipalFromContext(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "Only an admin can register another admin.")
			return
		}
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.metrics.IncRegistration(string(u.Role))
	h.audit.log(r, audit.ActionRegister, "user", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/v1/users/login.
func (h *usersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			h.metrics.IncAuthFailure("password")
		}
		writeServiceError(w, r, err)
		return
	}

	h.metrics.IncAuthSuccess("password")
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/users/me.
func (h *usersHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	u, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// List handles GET /api/v1/users (admin only).
func (h *usersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

// Get handles GET /api/v1/users/{id}.
func (h *usersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok || !selfOrAdmin(w, r, id) {
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Update handles PUT /api/v1/users/{id}. The password is never changed here.
func (h *usersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok || !selfOrAdmin(w, r, id) {
		return
	}

	var req service.ProfileInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	u, err := h.users.UpdateProfile(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.log(r, audit.ActionUserUpdate, "user", u.ID)
	writeJSON(w, http.StatusOK, u)
}

// selfOrAdmin writes a 403 unless the caller is userID or an admin.
func selfOrAdmin(w http.ResponseWriter, r *http.Request, userID int64) bool {
	p := auth.PrincipalFromContext(r.Context())
	if p.IsAdmin() || (p != nil && p.UserID == userID) {
		return true
	}
	writeError(w, http.StatusForbidden, msgForbidden)
	return false
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
