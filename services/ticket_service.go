package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"helpdesk-system/internal/status"
	"helpdesk-system/models"
	"helpdesk-system/monitoring"
	"helpdesk-system/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type TicketService struct {
	app     core.App
	bus     *EventBus
	monitor *monitoring.Monitor
}

func NewTicketService(app core.App, bus *EventBus, monitor *monitoring.Monitor) *TicketService {
	return &TicketService{
		app:     app,
		bus:     bus,
		monitor: monitor,
	}
}

type CreateTicketInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	Department   string `json:"department"`
	Floor        string `json:"floor"`
	OfficeNumber string `json:"office_number"`
}

func (in *CreateTicketInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if !models.ValidCategory(in.Category) {
		return fmt.Errorf("invalid category %q", in.Category)
	}
	if !models.ValidPriority(in.Priority) {
		return fmt.Errorf("invalid priority %q", in.Priority)
	}
	if in.Department == "" {
		in.Department = "General"
	}
	if in.Floor == "" {
		in.Floor = "1"
	}
	return nil
}

// Create stores a new ticket with status Open and no assignee, appends the
// history entry and publishes the new_ticket event for the technician
// broadcast.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput, creatorID string) (models.Ticket, error) {
	if err := in.Validate(); err != nil {
		return models.Ticket{}, err
	}

	ticketNo, err := utils.GenerateTicketNo()
	if err != nil {
		return models.Ticket{}, err
	}

	collection, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return models.Ticket{}, err
	}

	record := core.NewRecord(collection)
	record.Set("ticket_no", ticketNo)
	record.Set("title", in.Title)
	record.Set("description", in.Description)
	record.Set("category", in.Category)
	record.Set("priority", in.Priority)
	record.Set("status", string(models.StatusOpen))
	record.Set("created_by", creatorID)
	record.Set("assigned_to", "")
	record.Set("department", in.Department)
	record.Set("floor", in.Floor)
	record.Set("office_number", in.OfficeNumber)

	if err := s.app.Save(record); err != nil {
		s.monitor.TrackTicketOperation("create", "error")
		return models.Ticket{}, err
	}

	s.monitor.TrackTicketOperation("create", "success")
	s.monitor.TrackTicketCreated(in.Category, in.Priority)
	s.appendHistory(record.Id, "created", "Ticket created", creatorID)

	ticket := TicketFromRecord(record)
	s.bus.Publish(models.TicketEvent{
		Type:       models.NotificationNewTicket,
		TicketID:   ticket.ID,
		TicketNo:   ticket.TicketNo,
		Title:      ticket.Title,
		Department: ticket.Department,
		Floor:      ticket.Floor,
		ActorID:    creatorID,
		CreatorID:  creatorID,
		OccurredAt: time.Now(),
	})

	return ticket, nil
}

// ListForRole returns the tickets visible to the caller, newest first.
// Admins see everything, technicians their own assignments plus the
// unassigned pool, users only what they created.
func (s *TicketService) ListForRole(ctx context.Context, userID string, role models.Role) ([]models.Ticket, error) {
	query := s.app.RecordQuery("tickets")

	switch role {
	case models.RoleAdmin:
		// no filter
	case models.RoleTechnician:
		query = query.AndWhere(dbx.Or(
			dbx.HashExp{"assigned_to": userID},
			dbx.HashExp{"assigned_to": ""},
		))
	default:
		query = query.AndWhere(dbx.HashExp{"created_by": userID})
	}

	records := []*core.Record{}
	start := time.Now()
	if err := query.OrderBy("created DESC").All(&records); err != nil {
		return nil, err
	}
	s.monitor.TrackStoreFetch("tickets", time.Since(start))

	tickets := make([]models.Ticket, 0, len(records))
	for _, r := range records {
		tickets = append(tickets, TicketFromRecord(r))
	}
	return tickets, nil
}

// GetForRole fetches a single ticket, applying the same visibility rules as
// ListForRole.
func (s *TicketService) GetForRole(ctx context.Context, ticketID, userID string, role models.Role) (models.Ticket, error) {
	record, err := s.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return models.Ticket{}, status.ErrTicketNotFound
	}

	ticket := TicketFromRecord(record)
	if !visibleTo(ticket, userID, role) {
		return models.Ticket{}, status.ErrTicketNotFound
	}
	return ticket, nil
}

func visibleTo(t models.Ticket, userID string, role models.Role) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleTechnician:
		return t.AssignedTo == userID || t.AssignedTo == ""
	default:
		return t.CreatedBy == userID
	}
}

// UpdateStatus moves a ticket through the lifecycle table. The check and the
// write run in one transaction so two concurrent updates cannot both pass the
// transition check against the same stale status.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID, newStatus string, session models.Session) (models.Ticket, error) {
	next, err := models.ParseTicketStatus(newStatus)
	if err != nil {
		return models.Ticket{}, err
	}

	var record *core.Record
	var current models.TicketStatus

	txErr := s.app.RunInTransaction(func(tx core.App) error {
		var err error
		record, err = tx.FindRecordById("tickets", ticketID)
		if err != nil {
			return status.ErrTicketNotFound
		}

		ticket := TicketFromRecord(record)
		if !visibleTo(ticket, session.UserID, session.Role) {
			return status.ErrTicketNotFound
		}

		current = ticket.Status
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", status.ErrInvalidTransition, current, next)
		}

		record.Set("status", string(next))
		return tx.Save(record)
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, status.ErrInvalidTransition):
			s.monitor.TrackTicketOperation("update_status", "rejected")
		case !errors.Is(txErr, status.ErrTicketNotFound):
			s.monitor.TrackTicketOperation("update_status", "error")
		}
		return models.Ticket{}, txErr
	}

	s.monitor.TrackTicketOperation("update_status", "success")
	s.monitor.TrackTransition(string(current), string(next))
	s.appendHistory(ticketID, "status_changed",
		fmt.Sprintf("Status changed from %s to %s", current, next), session.UserID)

	updated := TicketFromRecord(record)
	s.bus.Publish(models.TicketEvent{
		Type:       models.NotificationStatus,
		TicketID:   updated.ID,
		TicketNo:   updated.TicketNo,
		Title:      updated.Title,
		ActorID:    session.UserID,
		CreatorID:  updated.CreatedBy,
		AssigneeID: updated.AssignedTo,
		Status:     next,
		OccurredAt: time.Now(),
	})

	return updated, nil
}

// canAssign rejects assignment of tickets that already have an owner or that
// are past the point in the lifecycle where work can start: assignment is a
// forced move to In Progress, so the ticket must be in a status the lifecycle
// table allows to move there. A Closed ticket stays closed.
func canAssign(t models.Ticket) error {
	if t.AssignedTo != "" {
		return status.ErrAlreadyAssigned
	}
	if !t.Status.CanTransitionTo(models.StatusInProgress) {
		return fmt.Errorf("%w: cannot assign a %s ticket", status.ErrInvalidTransition, t.Status)
	}
	return nil
}

// Assign sets the assignee and forces the ticket into In Progress. The
// conflict check and the write run in one transaction, so of two concurrent
// assigns exactly one wins and the loser gets ErrAlreadyAssigned; the
// assignee must hold the technician role.
func (s *TicketService) Assign(ctx context.Context, ticketID, technicianID, actorID string) (models.Ticket, error) {
	technician, err := s.app.FindRecordById("users", technicianID)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("assignee lookup: %w", err)
	}
	if technician.GetString("role") != string(models.RoleTechnician) {
		return models.Ticket{}, status.ErrNotTechnician
	}

	var record *core.Record
	var prev models.TicketStatus

	txErr := s.app.RunInTransaction(func(tx core.App) error {
		var err error
		record, err = tx.FindRecordById("tickets", ticketID)
		if err != nil {
			return status.ErrTicketNotFound
		}

		ticket := TicketFromRecord(record)
		if err := canAssign(ticket); err != nil {
			return err
		}

		prev = ticket.Status
		record.Set("assigned_to", technicianID)
		record.Set("status", string(models.StatusInProgress))
		return tx.Save(record)
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, status.ErrAlreadyAssigned), errors.Is(txErr, status.ErrInvalidTransition):
			s.monitor.TrackTicketOperation("assign", "conflict")
		case !errors.Is(txErr, status.ErrTicketNotFound):
			s.monitor.TrackTicketOperation("assign", "error")
		}
		return models.Ticket{}, txErr
	}

	s.monitor.TrackTicketOperation("assign", "success")
	s.monitor.TrackTransition(string(prev), string(models.StatusInProgress))
	s.appendHistory(ticketID, "assigned",
		fmt.Sprintf("Assigned to technician %s", technicianID), actorID)

	ticket := TicketFromRecord(record)
	s.bus.Publish(models.TicketEvent{
		Type:       models.NotificationAssigned,
		TicketID:   ticket.ID,
		TicketNo:   ticket.TicketNo,
		Title:      ticket.Title,
		ActorID:    actorID,
		CreatorID:  ticket.CreatedBy,
		AssigneeID: technicianID,
		OccurredAt: time.Now(),
	})

	return ticket, nil
}

// BulkAssign assigns each ticket in turn. Partial success is allowed; the
// returned count covers the tickets that were actually assigned.
func (s *TicketService) BulkAssign(ctx context.Context, ticketIDs []string, technicianID, actorID string) (int, error) {
	assigned := 0
	for _, id := range ticketIDs {
		if _, err := s.Assign(ctx, id, technicianID, actorID); err != nil {
			slog.Warn("bulk assign skipped ticket", "ticket", id, "error", err)
			continue
		}
		assigned++
	}
	return assigned, nil
}

// AddComment appends a comment and notifies the other participants.
func (s *TicketService) AddComment(ctx context.Context, ticketID, authorID, message string) (models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return models.Comment{}, fmt.Errorf("message is required")
	}

	ticketRecord, err := s.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return models.Comment{}, status.ErrTicketNotFound
	}

	collection, err := s.app.FindCollectionByNameOrId("ticket_comments")
	if err != nil {
		return models.Comment{}, err
	}

	record := core.NewRecord(collection)
	record.Set("ticket", ticketID)
	record.Set("author", authorID)
	record.Set("message", message)

	if err := s.app.Save(record); err != nil {
		s.monitor.TrackTicketOperation("comment", "error")
		return models.Comment{}, err
	}

	s.monitor.TrackTicketOperation("comment", "success")

	ticket := TicketFromRecord(ticketRecord)
	s.bus.Publish(models.TicketEvent{
		Type:       models.NotificationComment,
		TicketID:   ticket.ID,
		TicketNo:   ticket.TicketNo,
		Title:      ticket.Title,
		ActorID:    authorID,
		CreatorID:  ticket.CreatedBy,
		AssigneeID: ticket.AssignedTo,
		OccurredAt: time.Now(),
	})

	return commentFromRecord(record), nil
}

// ListComments applies the caller's ticket visibility before returning the
// thread: comments on a ticket the caller cannot see do not exist for them.
func (s *TicketService) ListComments(ctx context.Context, ticketID, userID string, role models.Role) ([]models.Comment, error) {
	if _, err := s.GetForRole(ctx, ticketID, userID, role); err != nil {
		return nil, err
	}

	records := []*core.Record{}
	err := s.app.RecordQuery("ticket_comments").
		AndWhere(dbx.HashExp{"ticket": ticketID}).
		OrderBy("created ASC").
		All(&records)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(records))
	for _, r := range records {
		comments = append(comments, commentFromRecord(r))
	}
	return comments, nil
}

// SetFeedback stores the singleton feedback record for a ticket. A second
// submission overwrites the first.
func (s *TicketService) SetFeedback(ctx context.Context, ticketID, userID string, rating int, comment string) (models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return models.Feedback{}, fmt.Errorf("rating must be between 1 and 5")
	}

	ticketRecord, err := s.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return models.Feedback{}, status.ErrTicketNotFound
	}

	record, err := s.app.FindFirstRecordByFilter(
		"ticket_feedback",
		"ticket = {:ticket}",
		dbx.Params{"ticket": ticketID},
	)
	if err != nil {
		collection, err := s.app.FindCollectionByNameOrId("ticket_feedback")
		if err != nil {
			return models.Feedback{}, err
		}
		record = core.NewRecord(collection)
		record.Set("ticket", ticketID)
	}

	record.Set("rating", rating)
	record.Set("comment", comment)
	record.Set("submitted_by", userID)

	if err := s.app.Save(record); err != nil {
		return models.Feedback{}, err
	}

	ticket := TicketFromRecord(ticketRecord)
	s.bus.Publish(models.TicketEvent{
		Type:       models.NotificationFeedback,
		TicketID:   ticket.ID,
		TicketNo:   ticket.TicketNo,
		Title:      ticket.Title,
		ActorID:    userID,
		CreatorID:  ticket.CreatedBy,
		AssigneeID: ticket.AssignedTo,
		Rating:     rating,
		OccurredAt: time.Now(),
	})

	return feedbackFromRecord(record), nil
}

func (s *TicketService) GetFeedback(ctx context.Context, ticketID, userID string, role models.Role) (models.Feedback, error) {
	if _, err := s.GetForRole(ctx, ticketID, userID, role); err != nil {
		return models.Feedback{}, err
	}

	record, err := s.app.FindFirstRecordByFilter(
		"ticket_feedback",
		"ticket = {:ticket}",
		dbx.Params{"ticket": ticketID},
	)
	if err != nil {
		return models.Feedback{}, err
	}
	return feedbackFromRecord(record), nil
}

func (s *TicketService) ListHistory(ctx context.Context, ticketID, userID string, role models.Role) ([]models.HistoryEntry, error) {
	if _, err := s.GetForRole(ctx, ticketID, userID, role); err != nil {
		return nil, err
	}

	records := []*core.Record{}
	err := s.app.RecordQuery("ticket_history").
		AndWhere(dbx.HashExp{"ticket": ticketID}).
		OrderBy("created DESC").
		All(&records)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, models.HistoryEntry{
			ID:        r.Id,
			TicketID:  r.GetString("ticket"),
			Action:    r.GetString("action"),
			Details:   r.GetString("details"),
			ActorID:   r.GetString("actor"),
			CreatedAt: r.GetDateTime("created").Time(),
		})
	}
	return entries, nil
}

// appendHistory is best effort: a failed history write never fails the
// mutation that triggered it.
func (s *TicketService) appendHistory(ticketID, action, details, actorID string) {
	collection, err := s.app.FindCollectionByNameOrId("ticket_history")
	if err != nil {
		slog.Error("ticket_history collection lookup failed", "error", err)
		return
	}

	record := core.NewRecord(collection)
	record.Set("ticket", ticketID)
	record.Set("action", action)
	record.Set("details", details)
	record.Set("actor", actorID)

	if err := s.app.Save(record); err != nil {
		slog.Error("failed to append ticket history", "ticket", ticketID, "action", action, "error", err)
	}
}

func TicketFromRecord(r *core.Record) models.Ticket {
	return models.Ticket{
		ID:           r.Id,
		TicketNo:     r.GetString("ticket_no"),
		Title:        r.GetString("title"),
		Description:  r.GetString("description"),
		Category:     r.GetString("category"),
		Priority:     r.GetString("priority"),
		Status:       models.TicketStatus(r.GetString("status")),
		CreatedBy:    r.GetString("created_by"),
		AssignedTo:   r.GetString("assigned_to"),
		Department:   r.GetString("department"),
		Floor:        r.GetString("floor"),
		OfficeNumber: r.GetString("office_number"),
		CreatedAt:    r.GetDateTime("created").Time(),
		UpdatedAt:    r.GetDateTime("updated").Time(),
	}
}

func commentFromRecord(r *core.Record) models.Comment {
	return models.Comment{
		ID:        r.Id,
		TicketID:  r.GetString("ticket"),
		AuthorID:  r.GetString("author"),
		Message:   r.GetString("message"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}

func feedbackFromRecord(r *core.Record) models.Feedback {
	return models.Feedback{
		TicketID:    r.GetString("ticket"),
		Rating:      r.GetInt("rating"),
		Comment:     r.GetString("comment"),
		SubmittedBy: r.GetString("submitted_by"),
		SubmittedAt: r.GetDateTime("created").Time(),
	}
}
