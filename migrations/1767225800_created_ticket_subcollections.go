package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Comments, feedback and history hang off a ticket. Feedback carries a
// unique index on the ticket relation: one feedback record per ticket,
// later submissions overwrite.
func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		tickets, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		comments := core.NewBaseCollection("ticket_comments")
		comments.Fields.Add(
			&core.RelationField{
				Name:          "ticket",
				Required:      true,
				CollectionId:  tickets.Id,
				MaxSelect:     1,
				CascadeDelete: true,
			},
			&core.RelationField{
				Name:         "author",
				Required:     true,
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.TextField{
				Name:     "message",
				Required: true,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)
		comments.Indexes = types.JSONArray[string]{
			"CREATE INDEX idx_ticket_comments_ticket ON ticket_comments (ticket)",
		}
		if err := app.Save(comments); err != nil {
			return err
		}

		feedback := core.NewBaseCollection("ticket_feedback")
		feedback.Fields.Add(
			&core.RelationField{
				Name:          "ticket",
				Required:      true,
				CollectionId:  tickets.Id,
				MaxSelect:     1,
				CascadeDelete: true,
			},
			&core.NumberField{
				Name:     "rating",
				Required: true,
				OnlyInt:  true,
				Min:      types.Pointer(1.0),
				Max:      types.Pointer(5.0),
			},
			&core.TextField{
				Name: "comment",
			},
			&core.RelationField{
				Name:         "submitted_by",
				Required:     true,
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)
		feedback.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_ticket_feedback_ticket ON ticket_feedback (ticket)",
		}
		if err := app.Save(feedback); err != nil {
			return err
		}

		history := core.NewBaseCollection("ticket_history")
		history.Fields.Add(
			&core.RelationField{
				Name:          "ticket",
				Required:      true,
				CollectionId:  tickets.Id,
				MaxSelect:     1,
				CascadeDelete: true,
			},
			&core.TextField{
				Name:     "action",
				Required: true,
			},
			&core.TextField{
				Name: "details",
			},
			&core.RelationField{
				Name:         "actor",
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)
		history.Indexes = types.JSONArray[string]{
			"CREATE INDEX idx_ticket_history_ticket ON ticket_history (ticket)",
		}
		return app.Save(history)
	}, func(app core.App) error {
		for _, name := range []string{"ticket_history", "ticket_feedback", "ticket_comments"} {
			collection, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				return err
			}
			if err := app.Delete(collection); err != nil {
				return err
			}
		}
		return nil
	})
}
