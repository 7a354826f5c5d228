package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

// The recipient column holds either a user id or the "technicians"
// broadcast sentinel, so it is plain text rather than a relation.
func init() {
	m.Register(func(app core.App) error {
		tickets, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("notifications")
		collection.Fields.Add(
			&core.TextField{
				Name:     "recipient",
				Required: true,
			},
			&core.SelectField{
				Name:      "type",
				Required:  true,
				Values:    []string{"new_ticket", "ticket_status", "ticket_comment", "ticket_assigned", "ticket_feedback"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name:     "message",
				Required: true,
			},
			&core.RelationField{
				Name:          "ticket",
				CollectionId:  tickets.Id,
				MaxSelect:     1,
				CascadeDelete: true,
			},
			&core.BoolField{
				Name: "read",
			},
			&core.BoolField{
				Name: "broadcast",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		collection.Indexes = types.JSONArray[string]{
			"CREATE INDEX idx_notifications_recipient_read ON notifications (recipient, read)",
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("notifications")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
