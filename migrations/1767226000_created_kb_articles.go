package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("kb_articles")
		collection.Fields.Add(
			&core.TextField{
				Name:     "title",
				Required: true,
			},
			&core.TextField{
				Name:     "slug",
				Required: true,
			},
			&core.SelectField{
				Name:      "category",
				Required:  true,
				Values:    []string{"Hardware", "Software", "Network", "Other"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name:     "body",
				Required: true,
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
			"CREATE UNIQUE INDEX idx_kb_articles_slug ON kb_articles (slug)",
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("kb_articles")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
