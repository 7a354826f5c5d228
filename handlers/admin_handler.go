package handlers

import (
	"net/http"

	"helpdesk-system/models"
	"helpdesk-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// AdminHandler serves user administration and the analytics dashboard. All
// routes are mounted behind RequireRole(admin).
type AdminHandler struct {
	users   *services.UserService
	reports *services.ReportService
}

func NewAdminHandler(users *services.UserService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{users: users, reports: reports}
}

func (h *AdminHandler) ListUsers(e *core.RequestEvent) error {
	users, err := h.users.List(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch users", err)
	}

	return e.JSON(http.StatusOK, users)
}

func (h *AdminHandler) UpdateUserRole(e *core.RequestEvent) error {
	userID := e.Request.PathValue("userId")

	var req struct {
		Role string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return apis.NewBadRequestError("Invalid role", err)
	}

	if err := h.users.UpdateRole(e.Request.Context(), userID, role); err != nil {
		return apis.NewBadRequestError("Failed to update role", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) SetUserStatus(e *core.RequestEvent) error {
	session := RequestSession(e)
	userID := e.Request.PathValue("userId")

	var req struct {
		Active bool `json:"active"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	// An admin deactivating their own account would lock everyone out of
	// this session's tail; require another admin to do it.
	if userID == session.UserID && !req.Active {
		return apis.NewBadRequestError("Cannot deactivate your own account", nil)
	}

	if err := h.users.SetActive(e.Request.Context(), userID, req.Active); err != nil {
		return apis.NewBadRequestError("Failed to update user status", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	dashboard, err := h.reports.Dashboard(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to build dashboard", err)
	}

	return e.JSON(http.StatusOK, dashboard)
}
