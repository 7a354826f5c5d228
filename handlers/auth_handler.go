package handlers

import (
	"net/http"

	"helpdesk-system/config"
	"helpdesk-system/models"
	"helpdesk-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler covers role resolution and the key-gated admin sign-up.
// Password auth, sign-up and password reset themselves are the store's
// built-in auth endpoints; nothing here re-implements them.
type AuthHandler struct {
	app   core.App
	users *services.UserService
	cfg   *config.Config
}

func NewAuthHandler(app core.App, users *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{app: app, users: users, cfg: cfg}
}

// Session returns the caller's identity snapshot plus the landing route the
// client should navigate to.
func (h *AuthHandler) Session(e *core.RequestEvent) error {
	session := RequestSession(e)

	return e.JSON(http.StatusOK, map[string]any{
		"user_id": session.UserID,
		"role":    session.Role,
		"status":  session.Status,
		"landing": session.Role.LandingPath(),
	})
}

// SelectRole is the one-time role-selection flow for accounts created
// without a role.
func (h *AuthHandler) SelectRole(e *core.RequestEvent) error {
	session := RequestSession(e)

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
	if role == models.RoleAdmin {
		return apis.NewForbiddenError("Admin accounts require the admin sign-up flow", nil)
	}

	if err := h.users.SelectRole(e.Request.Context(), session.UserID, role); err != nil {
		return apis.NewBadRequestError("Failed to set role", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"landing": role.LandingPath()})
}

// AdminSignUp creates an admin account when the supplied key matches the
// configured bcrypt hash.
func (h *AuthHandler) AdminSignUp(e *core.RequestEvent) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		AdminKey string `json:"admin_key"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if h.cfg.AdminSignupKeyHash == "" {
		return apis.NewForbiddenError("Admin sign-up is disabled", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminSignupKeyHash), []byte(req.AdminKey)); err != nil {
		return apis.NewForbiddenError("Invalid admin key", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("users")
	if err != nil {
		return apis.NewBadRequestError("Users collection unavailable", err)
	}

	record := core.NewRecord(collection)
	record.Set("name", req.Name)
	record.SetEmail(req.Email)
	record.SetPassword(req.Password)
	record.Set("role", string(models.RoleAdmin))
	record.Set("status", models.UserActive)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create admin account", err)
	}

	return e.JSON(http.StatusOK, map[string]string{
		"user_id": record.Id,
		"landing": models.RoleAdmin.LandingPath(),
	})
}
