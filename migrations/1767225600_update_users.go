package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.Add(
			&core.SelectField{
				Name:      "role",
				Values:    []string{"user", "technician", "admin"},
				MaxSelect: 1,
			},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"Active", "Inactive"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name: "department",
			},
		)

		return app.Save(users)
	}, func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		users.Fields.RemoveByName("role")
		users.Fields.RemoveByName("status")
		users.Fields.RemoveByName("department")

		return app.Save(users)
	})
}
