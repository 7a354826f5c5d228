package handlers

import (
	"net/http"

	"helpdesk-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// KnowledgeBaseHandler serves the public self-help articles.
type KnowledgeBaseHandler struct {
	kb *services.KnowledgeBaseService
}

func NewKnowledgeBaseHandler(kb *services.KnowledgeBaseService) *KnowledgeBaseHandler {
	return &KnowledgeBaseHandler{kb: kb}
}

func (h *KnowledgeBaseHandler) List(e *core.RequestEvent) error {
	articles, err := h.kb.List(e.Request.Context(), e.Request.URL.Query().Get("category"))
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch articles", err)
	}

	return e.JSON(http.StatusOK, articles)
}

func (h *KnowledgeBaseHandler) Get(e *core.RequestEvent) error {
	article, err := h.kb.BySlug(e.Request.Context(), e.Request.PathValue("slug"))
	if err != nil {
		return apis.NewNotFoundError("Article not found", err)
	}

	return e.JSON(http.StatusOK, article)
}
