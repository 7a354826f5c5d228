package handlers

import (
	"errors"
	"net/http"

	"helpdesk-system/internal/status"
	"helpdesk-system/models"
	"helpdesk-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) Create(e *core.RequestEvent) error {
	session := RequestSession(e)

	var req services.CreateTicketInput
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.tickets.Create(e.Request.Context(), req, session.UserID)
	if err != nil {
		return apis.NewBadRequestError("Failed to create ticket", err)
	}

	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) List(e *core.RequestEvent) error {
	session := RequestSession(e)

	tickets, err := h.tickets.ListForRole(e.Request.Context(), session.UserID, session.Role)
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch tickets", err)
	}

	return e.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Get(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.tickets.GetForRole(e.Request.Context(), ticketID, session.UserID, session.Role)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", err)
	}

	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) UpdateStatus(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.tickets.UpdateStatus(e.Request.Context(), ticketID, req.Status, session)
	switch {
	case errors.Is(err, status.ErrTicketNotFound):
		return apis.NewNotFoundError("Ticket not found", err)
	case errors.Is(err, status.ErrInvalidTransition):
		return apis.NewApiError(http.StatusConflict, "Status transition not allowed", err)
	case err != nil:
		return apis.NewBadRequestError("Failed to update status", err)
	}

	return e.JSON(http.StatusOK, ticket)
}

// Assign handles both the admin flow (explicit technician_id) and the
// technician "assign to me" flow (empty body).
func (h *TicketHandler) Assign(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		TechnicianID string `json:"technician_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	technicianID := req.TechnicianID
	if technicianID == "" {
		if session.Role != models.RoleTechnician {
			return apis.NewBadRequestError("technician_id is required", nil)
		}
		technicianID = session.UserID
	} else if session.Role != models.RoleAdmin && technicianID != session.UserID {
		return apis.NewForbiddenError("Only admins may assign other technicians", nil)
	}

	ticket, err := h.tickets.Assign(e.Request.Context(), ticketID, technicianID, session.UserID)
	switch {
	case errors.Is(err, status.ErrTicketNotFound):
		return apis.NewNotFoundError("Ticket not found", err)
	case errors.Is(err, status.ErrAlreadyAssigned):
		return apis.NewApiError(http.StatusConflict, "Ticket already assigned", err)
	case errors.Is(err, status.ErrInvalidTransition):
		return apis.NewApiError(http.StatusConflict, "Ticket cannot be assigned in its current status", err)
	case errors.Is(err, status.ErrNotTechnician):
		return apis.NewBadRequestError("Assignee is not a technician", err)
	case err != nil:
		return apis.NewBadRequestError("Failed to assign ticket", err)
	}

	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) BulkAssign(e *core.RequestEvent) error {
	session := RequestSession(e)

	var req struct {
		TicketIDs    []string `json:"ticket_ids"`
		TechnicianID string   `json:"technician_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if len(req.TicketIDs) == 0 || req.TechnicianID == "" {
		return apis.NewBadRequestError("ticket_ids and technician_id are required", nil)
	}

	assigned, err := h.tickets.BulkAssign(e.Request.Context(), req.TicketIDs, req.TechnicianID, session.UserID)
	if err != nil {
		return apis.NewBadRequestError("Failed to assign tickets", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"assigned": assigned,
		"total":    len(req.TicketIDs),
	})
}

func (h *TicketHandler) AddComment(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		Message string `json:"message"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	comment, err := h.tickets.AddComment(e.Request.Context(), ticketID, session.UserID, req.Message)
	if errors.Is(err, status.ErrTicketNotFound) {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Failed to add comment", err)
	}

	return e.JSON(http.StatusOK, comment)
}

func (h *TicketHandler) ListComments(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	comments, err := h.tickets.ListComments(e.Request.Context(), ticketID, session.UserID, session.Role)
	if errors.Is(err, status.ErrTicketNotFound) {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch comments", err)
	}

	return e.JSON(http.StatusOK, comments)
}

func (h *TicketHandler) SetFeedback(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	feedback, err := h.tickets.SetFeedback(e.Request.Context(), ticketID, session.UserID, req.Rating, req.Comment)
	if errors.Is(err, status.ErrTicketNotFound) {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Failed to store feedback", err)
	}

	return e.JSON(http.StatusOK, feedback)
}

func (h *TicketHandler) GetFeedback(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	feedback, err := h.tickets.GetFeedback(e.Request.Context(), ticketID, session.UserID, session.Role)
	if errors.Is(err, status.ErrTicketNotFound) {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	if err != nil {
		return apis.NewNotFoundError("No feedback for ticket", err)
	}

	return e.JSON(http.StatusOK, feedback)
}

func (h *TicketHandler) History(e *core.RequestEvent) error {
	session := RequestSession(e)
	ticketID := e.Request.PathValue("ticketId")

	history, err := h.tickets.ListHistory(e.Request.Context(), ticketID, session.UserID, session.Role)
	if errors.Is(err, status.ErrTicketNotFound) {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch history", err)
	}

	return e.JSON(http.StatusOK, history)
}
