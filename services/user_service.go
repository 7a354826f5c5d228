package services

import (
	"context"
	"fmt"

	"helpdesk-system/models"

	"github.com/pocketbase/pocketbase/core"
)

type UserService struct {
	app core.App
}

func NewUserService(app core.App) *UserService {
	return &UserService{app: app}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	records := []*core.Record{}
	if err := s.app.RecordQuery("users").OrderBy("created DESC").All(&records); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(records))
	for _, r := range records {
		users = append(users, UserFromRecord(r))
	}
	return users, nil
}

func (s *UserService) UpdateRole(ctx context.Context, userID string, role models.Role) error {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}

	record.Set("role", string(role))
	return s.app.Save(record)
}

// SelectRole sets the caller's own role once, from the role-selection flow.
// A role that is already set is not overwritten here; changing it afterwards
// is an admin action.
func (s *UserService) SelectRole(ctx context.Context, userID string, role models.Role) error {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}

	if record.GetString("role") != "" {
		return fmt.Errorf("role already selected")
	}

	record.Set("role", string(role))
	return s.app.Save(record)
}

// SetActive toggles the account status. Deactivation also rotates the auth
// token key, which invalidates every outstanding session for the user.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}

	if active {
		record.Set("status", models.UserActive)
	} else {
		record.Set("status", models.UserInactive)
		record.RefreshTokenKey()
	}

	return s.app.Save(record)
}

func UserFromRecord(r *core.Record) models.User {
	return models.User{
		ID:         r.Id,
		Name:       r.GetString("name"),
		Email:      r.Email(),
		Role:       models.Role(r.GetString("role")),
		Status:     r.GetString("status"),
		Department: r.GetString("department"),
	}
}
