package models

import (
	"fmt"
	"time"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
	StatusClosed     TicketStatus = "Closed"
)

// statusTransitions is the ticket lifecycle table. Resolved tickets may be
// reopened; closed tickets are terminal.
var statusTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {StatusClosed, StatusOpen},
	StatusClosed:     {},
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s TicketStatus) NextStatuses() []TicketStatus {
	return statusTransitions[s]
}

func ParseTicketStatus(value string) (TicketStatus, error) {
	switch TicketStatus(value) {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return TicketStatus(value), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", value)
}

var Categories = []string{"Hardware", "Software", "Network", "Other"}

var Priorities = []string{"Low", "Medium", "High"}

func ValidCategory(value string) bool {
	for _, c := range Categories {
		if c == value {
			return true
		}
	}
	return false
}

func ValidPriority(value string) bool {
	for _, p := range Priorities {
		if p == value {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID           string       `json:"id"`
	TicketNo     string       `json:"ticket_no"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Priority     string       `json:"priority"`
	Status       TicketStatus `json:"status"`
	CreatedBy    string       `json:"created_by"`
	AssignedTo   string       `json:"assigned_to,omitempty"`
	Department   string       `json:"department"`
	Floor        string       `json:"floor"`
	OfficeNumber string       `json:"office_number"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	TicketID    string    `json:"ticket_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type HistoryEntry struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}
