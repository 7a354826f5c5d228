package status

import "errors"

var (
	ErrTicketNotFound       = errors.New("ticket: ticket not found")
	ErrInvalidTransition    = errors.New("ticket: status transition not allowed")
	ErrAlreadyAssigned      = errors.New("ticket: ticket already assigned")
	ErrNotTechnician        = errors.New("ticket: assignee is not a technician")
	ErrInactiveUser         = errors.New("user: account is inactive")
	ErrNotificationNotFound = errors.New("notification: notification not found")
)
