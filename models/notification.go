package models

import "time"

// BroadcastTechnicians is the sentinel recipient for notifications addressed
// to every technician rather than an individual user.
const BroadcastTechnicians = "technicians"

const (
	NotificationNewTicket = "new_ticket"
	NotificationStatus    = "ticket_status"
	NotificationComment   = "ticket_comment"
	NotificationAssigned  = "ticket_assigned"
	NotificationFeedback  = "ticket_feedback"
)

// Alert classes tell the client which treatment to apply: "extended" plays
// the long technician alert, "standard" the brief tone.
const (
	AlertExtended = "extended"
	AlertStandard = "standard"
)

type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Type      string    `json:"type,omitempty"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Broadcast bool      `json:"broadcast"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketEvent is the domain event published by ticket mutations. The
// notification subscriber turns events into notification records and realtime
// pushes; the ticket write itself never touches the notifications collection.
type TicketEvent struct {
	Type       string
	TicketID   string
	TicketNo   string
	Title      string
	Department string
	Floor      string
	ActorID    string
	CreatorID  string
	AssigneeID string
	Status     TicketStatus
	Rating     int
	OccurredAt time.Time
}
