package handlers

import (
	"log/slog"

	"helpdesk-system/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
)

const sessionKey = "helpdeskSession"

// SessionMiddleware resolves the authenticated identity to an immutable
// per-request snapshot (id, role, status). Handlers read the snapshot via
// RequestSession instead of re-fetching the user record ad hoc.
//
// An Inactive account is rejected and its token key rotated, so every
// outstanding session dies with this one.
func SessionMiddleware() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "helpdeskSession",
		Func: func(e *core.RequestEvent) error {
			if e.Auth == nil {
				return apis.NewUnauthorizedError("Authentication required", nil)
			}

			// Fresh read: role and status may have changed since the
			// token was issued.
			record, err := e.App.FindRecordById("users", e.Auth.Id)
			if err != nil {
				return apis.NewUnauthorizedError("Account not found", err)
			}

			if record.GetString("status") == models.UserInactive {
				record.RefreshTokenKey()
				if err := e.App.Save(record); err != nil {
					slog.Error("failed to rotate token key for inactive user",
						"user", record.Id, "error", err)
				}
				return apis.NewUnauthorizedError("Account is inactive", nil)
			}

			e.Set(sessionKey, models.Session{
				UserID: record.Id,
				Role:   models.Role(record.GetString("role")),
				Status: record.GetString("status"),
			})

			return e.Next()
		},
	}
}

// RequestSession returns the snapshot attached by SessionMiddleware. The
// zero value means the middleware did not run.
func RequestSession(e *core.RequestEvent) models.Session {
	session, _ := e.Get(sessionKey).(models.Session)
	return session
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...models.Role) *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "helpdeskRequireRole",
		Func: func(e *core.RequestEvent) error {
			session := RequestSession(e)
			for _, role := range roles {
				if session.Role == role {
					return e.Next()
				}
			}
			return apis.NewForbiddenError("Insufficient role", nil)
		},
	}
}
