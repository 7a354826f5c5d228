package services

import (
	"testing"

	"helpdesk-system/internal/status"
	"helpdesk-system/models"

	"github.com/stretchr/testify/assert"
)

func TestVisibleTo(t *testing.T) {
	own := models.Ticket{ID: "t1", CreatedBy: "user-1"}
	assigned := models.Ticket{ID: "t2", CreatedBy: "user-1", AssignedTo: "tech-1"}
	unassigned := models.Ticket{ID: "t3", CreatedBy: "user-2"}

	// Admins see everything.
	assert.True(t, visibleTo(own, "admin-1", models.RoleAdmin))
	assert.True(t, visibleTo(assigned, "admin-1", models.RoleAdmin))
	assert.True(t, visibleTo(unassigned, "admin-1", models.RoleAdmin))

	// Technicians see their own assignments plus the unassigned pool, not
	// tickets owned by another technician.
	assert.True(t, visibleTo(assigned, "tech-1", models.RoleTechnician))
	assert.True(t, visibleTo(unassigned, "tech-1", models.RoleTechnician))
	assert.False(t, visibleTo(assigned, "tech-2", models.RoleTechnician))

	// Users see only what they created. This gate also fronts the comment,
	// feedback and history reads, so a stray ticket id leaks nothing.
	assert.True(t, visibleTo(own, "user-1", models.RoleUser))
	assert.False(t, visibleTo(unassigned, "user-1", models.RoleUser))
	assert.False(t, visibleTo(assigned, "user-2", models.RoleUser))
}

func TestCanAssign(t *testing.T) {
	assert.NoError(t, canAssign(models.Ticket{Status: models.StatusOpen}))

	err := canAssign(models.Ticket{Status: models.StatusOpen, AssignedTo: "tech-1"})
	assert.ErrorIs(t, err, status.ErrAlreadyAssigned)

	// A ticket that ran its full lifecycle must stay closed: assignment is
	// not a way to revive it.
	err = canAssign(models.Ticket{Status: models.StatusClosed})
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	err = canAssign(models.Ticket{Status: models.StatusResolved})
	assert.ErrorIs(t, err, status.ErrInvalidTransition)

	err = canAssign(models.Ticket{Status: models.StatusInProgress})
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}
