package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("tickets")
		collection.Fields.Add(
			&core.TextField{
				Name:     "ticket_no",
				Required: true,
			},
			&core.TextField{
				Name:     "title",
				Required: true,
			},
			&core.TextField{
				Name:     "description",
				Required: true,
			},
			&core.SelectField{
				Name:      "category",
				Required:  true,
				Values:    []string{"Hardware", "Software", "Network", "Other"},
				MaxSelect: 1,
			},
			&core.SelectField{
				Name:      "priority",
				Required:  true,
				Values:    []string{"Low", "Medium", "High"},
				MaxSelect: 1,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"Open", "In Progress", "Resolved", "Closed"},
				MaxSelect: 1,
			},
			&core.RelationField{
				Name:         "created_by",
				Required:     true,
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.RelationField{
				Name:         "assigned_to",
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.TextField{
				Name: "department",
			},
			&core.TextField{
				Name: "floor",
			},
			&core.TextField{
				Name: "office_number",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		collection.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_tickets_ticket_no ON tickets (ticket_no)",
			"CREATE INDEX idx_tickets_created_by ON tickets (created_by)",
			"CREATE INDEX idx_tickets_assigned_to ON tickets (assigned_to)",
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
