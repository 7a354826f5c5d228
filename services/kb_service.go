package services

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Body      string    `json:"body,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeBaseService serves the static self-help content. Articles are
// maintained through the store's admin UI; this is read-only.
type KnowledgeBaseService struct {
	app core.App
}

func NewKnowledgeBaseService(app core.App) *KnowledgeBaseService {
	return &KnowledgeBaseService{app: app}
}

// List returns article summaries (no body), optionally filtered by category.
func (s *KnowledgeBaseService) List(ctx context.Context, category string) ([]Article, error) {
	query := s.app.RecordQuery("kb_articles")
	if category != "" {
		query = query.AndWhere(dbx.HashExp{"category": category})
	}

	records := []*core.Record{}
	if err := query.OrderBy("title ASC").All(&records); err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(records))
	for _, r := range records {
		articles = append(articles, Article{
			ID:        r.Id,
			Title:     r.GetString("title"),
			Slug:      r.GetString("slug"),
			Category:  r.GetString("category"),
			UpdatedAt: r.GetDateTime("updated").Time(),
		})
	}
	return articles, nil
}

func (s *KnowledgeBaseService) BySlug(ctx context.Context, slug string) (Article, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"kb_articles",
		"slug = {:slug}",
		dbx.Params{"slug": slug},
	)
	if err != nil {
		return Article{}, err
	}

	return Article{
		ID:        record.Id,
		Title:     record.GetString("title"),
		Slug:      record.GetString("slug"),
		Category:  record.GetString("category"),
		Body:      record.GetString("body"),
		UpdatedAt: record.GetDateTime("updated").Time(),
	}, nil
}
