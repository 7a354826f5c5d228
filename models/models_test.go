package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusResolved, false},
		{StatusOpen, StatusClosed, false},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusOpen, false},
		{StatusInProgress, StatusClosed, false},
		{StatusResolved, StatusClosed, true},
		{StatusResolved, StatusOpen, true},
		{StatusResolved, StatusInProgress, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusInProgress, false},
		{StatusClosed, StatusResolved, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestTicketStatus_ClosedIsTerminal(t *testing.T) {
	assert.Empty(t, StatusClosed.NextStatuses())
}

func TestParseTicketStatus(t *testing.T) {
	status, err := ParseTicketStatus("In Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseTicketStatus("Pending")
	assert.Error(t, err)

	_, err = ParseTicketStatus("")
	assert.Error(t, err)
}

func TestValidCategoryAndPriority(t *testing.T) {
	assert.True(t, ValidCategory("Hardware"))
	assert.True(t, ValidCategory("Other"))
	assert.False(t, ValidCategory("hardware"))
	assert.False(t, ValidCategory(""))

	assert.True(t, ValidPriority("High"))
	assert.False(t, ValidPriority("Urgent"))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("technician")
	require.NoError(t, err)
	assert.Equal(t, RoleTechnician, role)

	_, err = ParseRole("superadmin")
	assert.Error(t, err)
}

func TestRole_LandingPath(t *testing.T) {
	assert.Equal(t, "/user-home", RoleUser.LandingPath())
	assert.Equal(t, "/technician-home", RoleTechnician.LandingPath())
	assert.Equal(t, "/admin-home", RoleAdmin.LandingPath())
	assert.Equal(t, "/role-selection", Role("").LandingPath())
}

func TestSession_Active(t *testing.T) {
	assert.True(t, Session{UserID: "u1", Status: UserActive}.Active())
	assert.False(t, Session{UserID: "u1", Status: UserInactive}.Active())
}
